package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/launchpilot/campaignchat/internal/models"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
)

const (
	RoleAssistant = "assistant"
	RoleUser      = "user"
)

// Turn is one entry of the exchange sent to the classifier.
type Turn struct {
	Role string
	Text string
}

// Classifier turns an exchange of role-tagged turns into a structured verdict
// for the newest user turn. Implementations must be side-effect free so a
// failed call can be retried.
type Classifier interface {
	Classify(ctx context.Context, exchange []Turn) (*models.Verdict, error)
}

// GatewayError wraps any failure of the remote classifier call, including a
// verdict that does not match the required schema. The conversation state is
// never mutated when one of these is returned.
type GatewayError struct {
	err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("classifier gateway: %v", e.err)
}

func (e *GatewayError) Unwrap() error { return e.err }

func NewGatewayError(err error) *GatewayError {
	return &GatewayError{err: err}
}

// Gateway is the langchaingo-backed Classifier.
type Gateway struct {
	llm llms.Model
}

func New(baseURL, token, model string) (*Gateway, error) {
	llm, err := openai.New(
		openai.WithToken(token),
		openai.WithBaseURL(baseURL),
		openai.WithModel(model),
	)
	if err != nil {
		return nil, err
	}
	return &Gateway{llm: llm}, nil
}

// NewWithModel wires an existing model, used by tests and the demo binary.
func NewWithModel(model llms.Model) *Gateway {
	return &Gateway{llm: model}
}

func (g *Gateway) Classify(ctx context.Context, exchange []Turn) (*models.Verdict, error) {
	messages := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, classifierSystemPrompt),
		llms.TextParts(schema.ChatMessageTypeSystem, verdictSchema),
	}
	for _, turn := range exchange {
		role := schema.ChatMessageTypeAI
		if turn.Role == RoleUser {
			role = schema.ChatMessageTypeHuman
		}
		messages = append(messages, llms.TextParts(role, turn.Text))
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	resp, err := g.llm.GenerateContent(ctx, messages, llms.WithJSONMode())
	if err != nil {
		return nil, &GatewayError{err: fmt.Errorf("failed to generate verdict: %w", err)}
	}
	if len(resp.Choices) == 0 {
		return nil, &GatewayError{err: fmt.Errorf("empty completion")}
	}

	verdict, err := parseVerdict(resp.Choices[0].Content)
	if err != nil {
		return nil, &GatewayError{err: err}
	}
	return verdict, nil
}

// parseVerdict decodes the model output and requires every schema key to be
// present. A missing key is a gateway failure, never an invalid answer.
func parseVerdict(completion string) (*models.Verdict, error) {
	raw := struct {
		Parameter    *string `json:"parameter"`
		Value        *string `json:"value"`
		Valid        *bool   `json:"valid"`
		Message      *string `json:"message"`
		NextQuestion *string `json:"next_question"`
		Finished     *bool   `json:"finished"`
	}{}

	if err := json.Unmarshal([]byte(stripCodeFence(completion)), &raw); err != nil {
		return nil, fmt.Errorf("malformed verdict %q: %w", completion, err)
	}
	if raw.Parameter == nil || raw.Value == nil || raw.Valid == nil ||
		raw.Message == nil || raw.NextQuestion == nil || raw.Finished == nil {
		return nil, fmt.Errorf("verdict is missing required fields: %q", completion)
	}

	return &models.Verdict{
		Parameter:    *raw.Parameter,
		Value:        *raw.Value,
		Valid:        *raw.Valid,
		Message:      *raw.Message,
		NextQuestion: *raw.NextQuestion,
		Finished:     *raw.Finished,
	}, nil
}

// stripCodeFence removes a markdown fence some models wrap JSON output in.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
