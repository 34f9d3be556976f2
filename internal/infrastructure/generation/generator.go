// Package generation adapts an eino chat model to the gateway's opaque
// generate(prompt) collaborator.
package generation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/gccn-chatbot/session-service/internal/core/domain"
)

// ModelGenerator sends the assembled prompt as a single user message.
type ModelGenerator struct {
	chatModel model.BaseChatModel
}

func NewModelGenerator(chatModel model.BaseChatModel) *ModelGenerator {
	return &ModelGenerator{chatModel: chatModel}
}

// Generate returns the model's text. Provider rate-limit and quota failures
// come back wrapping domain.ErrUpstreamThrottled.
func (g *ModelGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	msg, err := g.chatModel.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		if isThrottle(err) {
			return "", fmt.Errorf("%w: %w", domain.ErrUpstreamThrottled, err)
		}
		return "", fmt.Errorf("generate: %w", err)
	}
	if msg == nil {
		return "", nil
	}
	return strings.TrimSpace(msg.Content), nil
}

// statusCoder matches provider errors that expose the HTTP status.
type statusCoder interface {
	StatusCode() int
}

var throttleMarkers = []string{
	"toomanyrequests",
	"too many requests",
	"ratelimit",
	"rate limit",
	"quotaexceeded",
	"quota exceeded",
	"resource_exhausted",
}

// isThrottle recognises upstream throttling. Providers wrap their API errors
// differently, so the message is checked as well as a status code.
func isThrottle(err error) bool {
	var sc statusCoder
	if errors.As(err, &sc) && sc.StatusCode() == http.StatusTooManyRequests {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, m := range throttleMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
