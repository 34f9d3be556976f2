// @title        GCCN Chatbot Session API
// @version      1.0
// @description  Authenticated conversational session service: accounts, chat, per-user history.
// @BasePath     /
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/gccn-chatbot/session-service/internal/api"
	"github.com/gccn-chatbot/session-service/internal/api/handler"
	"github.com/gccn-chatbot/session-service/internal/core/ports"
	"github.com/gccn-chatbot/session-service/internal/core/service"
	"github.com/gccn-chatbot/session-service/internal/infrastructure/config"
	"github.com/gccn-chatbot/session-service/internal/infrastructure/db/memory"
	mongostore "github.com/gccn-chatbot/session-service/internal/infrastructure/db/mongo"
	redisstore "github.com/gccn-chatbot/session-service/internal/infrastructure/db/redis"
	"github.com/gccn-chatbot/session-service/internal/infrastructure/generation"
	"github.com/gccn-chatbot/session-service/internal/infrastructure/queue"
	"github.com/gccn-chatbot/session-service/internal/pkg/validate"
	"github.com/gccn-chatbot/session-service/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// .env is optional; real environment variables win.
	envErr := godotenv.Load()

	cfg, err := config.Load(ctx)
	if err != nil {
		// Logger is not configured yet; fall back to a bare JSON logger.
		l := zerolog.New(os.Stderr).With().Timestamp().Logger()
		l.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "gccn-chatbot",
	})
	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		log.Warn().Err(envErr).Msg("failed to read .env file")
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	checks := map[string]handler.DependencyCheck{}

	// --- Storage ---
	var (
		users   ports.UserRepository
		history ports.HistoryRepository
	)
	switch cfg.StorageDriver {
	case config.StorageMemory:
		log.Warn().Msg("using in-memory storage, data is lost on restart")
		users = memory.NewUserRepository()
		history = memory.NewHistoryRepository()
	default:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return err
		}
		defer func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(dctx)
		}()
		stores, err := mongostore.NewStores(ctx, db)
		if err != nil {
			return err
		}
		users, history = stores.Users, stores.History
		checks["mongodb"] = handler.MongoCheck(db)
		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")
	}

	// --- Throttle gate ---
	var gate ports.RateGate
	switch cfg.ThrottleBackend {
	case config.ThrottleRedis:
		rdb, err := redisstore.Connect(ctx, redisstore.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer rdb.Close()
		gate = redisstore.NewGate(rdb, cfg.Chat.ThrottleInterval)
		checks["redis"] = handler.RedisCheck(rdb)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("throttle gate backed by redis")
	default:
		gate = service.NewIntervalGate(cfg.Chat.ThrottleInterval, time.Now)
	}

	// --- Generation collaborator ---
	chatModel, err := generation.NewArkChatModel(ctx, generation.ArkConfig{
		APIKey:  cfg.Ark.APIKey,
		Model:   cfg.Ark.Model,
		BaseURL: cfg.Ark.BaseURL,
		Region:  cfg.Ark.Region,
	})
	if err != nil {
		return err
	}

	// --- Services ---
	tokens, err := service.NewJWTService(cfg.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}
	accounts := service.NewAccountService(users, tokens, cfg.Auth.BcryptCost, log)

	// Outlives the signal context so in-flight appends finish during shutdown.
	writerCtx, stopWriter := context.WithCancel(context.Background())
	defer stopWriter()
	writer := queue.NewHistoryWriter(cfg.Chat.HistoryWorkers, history, log)
	writer.Start(writerCtx)

	chat := service.NewChatService(
		gate,
		validate.New(),
		service.NewPromptBuilder(cfg.Chat.Preamble, cfg.Chat.ContextTurns),
		generation.NewModelGenerator(chatModel),
		history,
		writer,
		service.ChatConfig{
			Source:            service.HistorySource(cfg.Chat.HistorySource),
			GenerationTimeout: cfg.Chat.GenerationTimeout,
		},
		log,
	)

	router := api.NewRouter(api.Deps{
		Accounts: accounts,
		Chat:     chat,
		Tokens:   tokens,
		Checks:   checks,
		Log:      logger.Component("http"),
		Swagger:  !cfg.IsProduction(),
		Metrics:  true,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("chat session service listening")
	return runServer(ctx, srv)
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
