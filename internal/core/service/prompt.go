package service

import (
	"strings"

	"github.com/gccn-chatbot/session-service/internal/core/domain"
)

// DefaultContextTurns bounds how many prior turns reach the model.
const DefaultContextTurns = 10

// DefaultPreamble scopes the assistant to the course chapter it tutors.
const DefaultPreamble = `You are a teaching assistant for Chapter 2 of Scientific Socialism: the historical mission of the working class. Answer concisely, in a clear structure, and stay accurate on:

1. The concept and characteristics of the working class.
2. The content of its historical mission: economic, political-social, cultural-ideological.
3. The conditions that determine the mission: economic position, political-social traits, the role of the Communist Party, class alliances.
4. The working class today: knowledge-intensive and highly skilled labour, participation in ownership of the means of production, a more diverse structure, a stronger role in management.
5. The mission of the Vietnamese working class today: industrialisation and modernisation, the socialist orientation, leadership through the Party in building and defending the country.

Answering rules:
- Use bullet points and a clear structure.
- If the question is outside this scope, say "This question is outside the scope of Chapter 2" and suggest how to rephrase it.
- Be brief but complete.`

// PromptBuilder renders the flat transcript sent to the generation collaborator.
type PromptBuilder struct {
	preamble string
	maxTurns int
}

func NewPromptBuilder(preamble string, maxTurns int) *PromptBuilder {
	if strings.TrimSpace(preamble) == "" {
		preamble = DefaultPreamble
	}
	if maxTurns <= 0 {
		maxTurns = DefaultContextTurns
	}
	return &PromptBuilder{preamble: preamble, maxTurns: maxTurns}
}

// Window returns the most recent turns, at most maxTurns, in their original order.
func (b *PromptBuilder) Window(turns []domain.Turn) []domain.Turn {
	if len(turns) <= b.maxTurns {
		return turns
	}
	return turns[len(turns)-b.maxTurns:]
}

// Build renders preamble, windowed transcript (oldest first) and the new message.
func (b *PromptBuilder) Build(history []domain.Turn, message string) string {
	var sb strings.Builder
	sb.WriteString(b.preamble)
	sb.WriteString("\n\nPrevious conversation:\n")
	for _, t := range b.Window(history) {
		if t.Role == domain.RoleUser {
			sb.WriteString("User: ")
		} else {
			sb.WriteString("Assistant: ")
		}
		sb.WriteString(t.Text)
		sb.WriteString("\n")
	}
	sb.WriteString("\nQuestion:\n")
	sb.WriteString(message)
	sb.WriteString("\n\nAnswer (use bullet points where appropriate):\n")
	return sb.String()
}
