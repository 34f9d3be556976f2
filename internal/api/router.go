package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/gccn-chatbot/session-service/docs"
	"github.com/gccn-chatbot/session-service/internal/api/handler"
	"github.com/gccn-chatbot/session-service/internal/api/middleware"
	"github.com/gccn-chatbot/session-service/internal/core/ports"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Accounts ports.AccountService
	Chat     ports.ChatService
	Tokens   ports.TokenService
	Checks   map[string]handler.DependencyCheck
	Log      zerolog.Logger
	// Swagger mounts /swagger/* (disabled in production).
	Swagger bool
	// Metrics mounts /metrics and the request metrics middleware.
	Metrics bool
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echomiddleware.CORS())
	if d.Metrics {
		e.Use(echoprometheus.NewMiddleware("chatbot"))
		e.GET("/metrics", echoprometheus.NewHandler())
	}

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(d.Accounts)
	auth := e.Group("/api/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// --- Chat routes (bearer token required) ---
	chatHandler := handler.NewChatHandler(d.Chat)
	chat := e.Group("/api/chat", middleware.Auth(d.Tokens, d.Log))
	chat.POST("", chatHandler.Chat)
	chat.GET("/history", chatHandler.History)
	chat.DELETE("/history", chatHandler.ClearHistory)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(d.Checks)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?

	if d.Swagger {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	return e
}

// requestLogger writes one structured line per request through zerolog.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Status >= 500 {
				evt = log.Error().Err(v.Error)
			}
			evt.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
