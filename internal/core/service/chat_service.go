package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/gccn-chatbot/session-service/internal/pkg/metrics"
	"github.com/gccn-chatbot/session-service/internal/core/domain"
	"github.com/gccn-chatbot/session-service/internal/core/ports"
)

// FallbackReply is returned when the model answers with no text.
const FallbackReply = "No response was received from the model."

// HistorySource selects where the context window comes from.
type HistorySource string

const (
	// HistoryFromClient trusts the recent turns sent with the request.
	HistoryFromClient HistorySource = "client"
	// HistoryFromServer reads the recent turns from the history store.
	HistoryFromServer HistorySource = "server"
)

// ChatConfig tunes the gateway pipeline.
type ChatConfig struct {
	Source            HistorySource
	GenerationTimeout time.Duration // 0 = no timeout
}

// InputValidator checks struct tags on the chat input.
type InputValidator interface {
	Validate(i any) error
}

// HistoryAppender persists an exchange. queue.HistoryWriter satisfies it, and
// so does any ports.HistoryRepository.
type HistoryAppender interface {
	Append(ctx context.Context, userID string, turns ...domain.Turn) error
}

// ChatService is the session gateway: throttle, validate, assemble context,
// generate, persist. Authentication happens before it, in the HTTP middleware.
type ChatService struct {
	gate      ports.RateGate
	validator InputValidator
	prompts   *PromptBuilder
	generator ports.Generator
	history   ports.HistoryRepository
	appender  HistoryAppender
	cfg       ChatConfig
	now       func() time.Time
	log       zerolog.Logger
}

func NewChatService(
	gate ports.RateGate,
	validator InputValidator,
	prompts *PromptBuilder,
	generator ports.Generator,
	history ports.HistoryRepository,
	appender HistoryAppender,
	cfg ChatConfig,
	log zerolog.Logger,
) *ChatService {
	if appender == nil {
		appender = history
	}
	if cfg.Source == "" {
		cfg.Source = HistoryFromClient
	}
	return &ChatService{
		gate:      gate,
		validator: validator,
		prompts:   prompts,
		generator: generator,
		history:   history,
		appender:  appender,
		cfg:       cfg,
		now:       time.Now,
		log:       log.With().Str("component", "chat").Logger(),
	}
}

// Chat runs one request through the pipeline and returns the assistant reply.
func (s *ChatService) Chat(ctx context.Context, in ports.ChatInput) (string, error) {
	log := s.log.With().Str("user_id", in.UserID).Logger()

	// 1. Global rate gate. Backend errors fail open.
	allowed, err := s.gate.Allow(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("rate gate unavailable, allowing request")
		allowed = true
	}
	if !allowed {
		metrics.ThrottleRejectionsTotal.WithLabelValues("local").Inc()
		metrics.ChatRequestsTotal.WithLabelValues("throttled").Inc()
		return "", domain.ErrThrottled
	}

	// 2. Input validation.
	if err := s.validator.Validate(&in); err != nil {
		metrics.ChatRequestsTotal.WithLabelValues("invalid_input").Inc()
		return "", fmt.Errorf("%w: %s", domain.ErrInvalidInput, err.Error())
	}

	// 3. Context window. Nothing below follows client cancellation.
	ctx = context.WithoutCancel(ctx)
	prompt := s.prompts.Build(s.contextTurns(ctx, in), in.Message)

	// 4. Generation.
	asked := s.now()
	gen := s.generate(ctx, prompt)
	if gen.Err != nil {
		if errors.Is(gen.Err, domain.ErrUpstreamThrottled) {
			metrics.ThrottleRejectionsTotal.WithLabelValues("upstream").Inc()
			metrics.ChatRequestsTotal.WithLabelValues("upstream_throttled").Inc()
		} else {
			metrics.ChatRequestsTotal.WithLabelValues("generation_failed").Inc()
		}
		log.Error().Err(gen.Err).Msg("generation failed")
		return resolveOutcome(gen, PersistenceResult{})
	}

	// 5. Best-effort persistence.
	persist := PersistenceResult{
		Err: s.appender.Append(ctx, in.UserID, domain.NewExchange(in.Message, gen.Reply, asked, s.now())...),
	}
	if persist.Err != nil {
		metrics.HistoryPersistFailuresTotal.Inc()
		log.Error().Err(persist.Err).Msg("failed to persist exchange, returning reply anyway")
	}

	metrics.ChatRequestsTotal.WithLabelValues("ok").Inc()
	return resolveOutcome(gen, persist)
}

func (s *ChatService) generate(ctx context.Context, prompt string) GenerationResult {
	if s.cfg.GenerationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.GenerationTimeout)
		defer cancel()
	}

	start := time.Now()
	reply, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		metrics.GenerationDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		if errors.Is(err, domain.ErrUpstreamThrottled) {
			return GenerationResult{Err: err}
		}
		return GenerationResult{Err: fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)}
	}
	metrics.GenerationDuration.WithLabelValues("ok").Observe(time.Since(start).Seconds())

	if reply == "" {
		reply = FallbackReply
	}
	return GenerationResult{Reply: reply}
}

// contextTurns picks the turns the prompt is built from. A store read
// failure degrades to an empty window.
func (s *ChatService) contextTurns(ctx context.Context, in ports.ChatInput) []domain.Turn {
	if s.cfg.Source == HistoryFromServer {
		turns, err := s.history.Get(ctx, in.UserID)
		if err != nil {
			s.log.Warn().Err(err).Str("user_id", in.UserID).Msg("history read failed, using empty context")
			return nil
		}
		return s.prompts.Window(turns)
	}

	turns := make([]domain.Turn, 0, len(in.History))
	for _, h := range s.windowEntries(in.History) {
		turns = append(turns, domain.Turn{Role: domain.Role(h.Role), Text: h.Text})
	}
	return turns
}

func (s *ChatService) windowEntries(entries []ports.HistoryEntry) []ports.HistoryEntry {
	if len(entries) <= s.prompts.maxTurns {
		return entries
	}
	return entries[len(entries)-s.prompts.maxTurns:]
}

// History returns the stored conversation. Storage failures degrade to an
// empty conversation.
func (s *ChatService) History(ctx context.Context, userID string) ([]domain.Turn, error) {
	turns, err := s.history.Get(ctx, userID)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("history read failed, returning empty history")
		return []domain.Turn{}, nil
	}
	if turns == nil {
		turns = []domain.Turn{}
	}
	return turns, nil
}

// ClearHistory deletes the stored conversation. Idempotent.
func (s *ChatService) ClearHistory(ctx context.Context, userID string) error {
	if err := s.history.Clear(ctx, userID); err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("history clear failed")
		if errors.Is(err, domain.ErrStorageUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
	}
	s.log.Info().Str("user_id", userID).Msg("history cleared")
	return nil
}
