package ports

import "context"

// Generator is the remote text-generation collaborator. Implementations
// return an error wrapping domain.ErrUpstreamThrottled when the provider
// rejects the call for quota or rate reasons.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
