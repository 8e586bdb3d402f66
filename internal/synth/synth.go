package synth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/USSTM/swagger-analyzer/internal/llm"
	"github.com/USSTM/swagger-analyzer/internal/logging"
	"github.com/USSTM/swagger-analyzer/internal/metrics"
	"github.com/USSTM/swagger-analyzer/internal/schemadoc"
)

const (
	Filename = "swagger_generated.yaml"
	MIMEType = "text/yaml"
)

// ChatClient is the subset of llm.Client used here.
type ChatClient interface {
	ChatCompletion(ctx context.Context, request llm.ChatRequest) (*llm.ChatResponse, error)
}

// Result is the synthesized document as returned by the model, untouched.
type Result struct {
	Document    string
	Model       string
	Usage       llm.Usage
	GeneratedAt time.Time
}

type Synthesizer struct {
	client  ChatClient
	model   string
	metrics metrics.SynthesisMetrics
}

func New(client ChatClient, model string, m metrics.SynthesisMetrics) *Synthesizer {
	if m == nil {
		m = metrics.Noop{}
	}
	return &Synthesizer{
		client:  client,
		model:   model,
		metrics: m,
	}
}

func (s *Synthesizer) Model() string {
	return s.model
}

// Synthesize sends exactly one chat-completion request and returns the first
// choice's content verbatim. Failures produce no partial result.
func (s *Synthesizer) Synthesize(ctx context.Context, doc *schemadoc.Document, sample string) (*Result, error) {
	prompt, err := BuildPrompt(doc, sample)
	if err != nil {
		s.metrics.IncSynthesis("prompt_error")
		return nil, fmt.Errorf("failed to build prompt: %w", err)
	}

	resp, err := s.client.ChatCompletion(ctx, llm.ChatRequest{
		Model: s.model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: SystemRole},
			{Role: llm.RoleUser, Content: prompt},
		},
	})
	if err != nil {
		s.metrics.IncSynthesis(outcome(err))
		logging.Warn("Document synthesis failed", "model", s.model, "error", err)
		return nil, err
	}

	model := resp.Model
	if model == "" {
		model = s.model
	}

	s.metrics.IncSynthesis("success")
	logging.Info("Document synthesized",
		"model", model,
		"response_id", resp.ID,
		"total_tokens", resp.Usage.TotalTokens)

	return &Result{
		Document:    resp.Choices[0].Message.Content,
		Model:       model,
		Usage:       resp.Usage,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

func outcome(err error) string {
	var se *llm.StatusError
	switch {
	case errors.As(err, &se):
		return "upstream_error"
	case errors.Is(err, llm.ErrNoChoices):
		return "empty_response"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "transport_error"
	}
}
