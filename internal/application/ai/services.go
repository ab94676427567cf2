package ai

import (
	"context"
	"strings"

	"github.com/bryanwahyu/rxscan/internal/domain/ai"
	"github.com/bryanwahyu/rxscan/internal/domain/reports"
	"github.com/bryanwahyu/rxscan/internal/infra/ai/prompt"
)

// Service wraps the LLM client with the two prompts the analysis needs.
// A nil client is allowed and reports ai.ErrNotConfigured.
type Service struct {
	client ai.Client
}

func NewService(client ai.Client) *Service {
	return &Service{client: client}
}

// Enabled reports whether a provider is configured.
func (s *Service) Enabled() bool {
	return s != nil && s.client != nil
}

// ExtractSubstances asks the model which medication names appear in text.
func (s *Service) ExtractSubstances(ctx context.Context, text string) ([]string, error) {
	if !s.Enabled() {
		return nil, ai.ErrNotConfigured
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	answer, err := s.client.Complete(ctx, prompt.ExtractSubstances(text))
	if err != nil {
		return nil, err
	}
	return prompt.ParseNameList(answer), nil
}

// Summarize writes the plain-language pregnancy risk summary.
func (s *Service) Summarize(ctx context.Context, known []reports.KnownSubstance) (string, error) {
	if !s.Enabled() {
		return "", ai.ErrNotConfigured
	}
	return s.client.Complete(ctx, prompt.RiskSummary(known))
}
