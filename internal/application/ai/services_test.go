package ai

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	domai "github.com/bryanwahyu/rxscan/internal/domain/ai"
	"github.com/bryanwahyu/rxscan/internal/domain/reports"
)

type scriptedClient struct {
	answer  string
	err     error
	prompts []string
}

func (c *scriptedClient) Complete(_ context.Context, p string) (string, error) {
	c.prompts = append(c.prompts, p)
	return c.answer, c.err
}

func TestExtractSubstances(t *testing.T) {
	c := &scriptedClient{answer: "Ibuprofeno, Warfarina"}
	got, err := NewService(c).ExtractSubstances(context.Background(), "receta: ibuprofeno y warfarina")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []string{"Ibuprofeno", "Warfarina"}) {
		t.Fatalf("got %v", got)
	}
	if len(c.prompts) != 1 || !strings.Contains(c.prompts[0], "receta: ibuprofeno y warfarina") {
		t.Fatalf("prompt not sent: %v", c.prompts)
	}
}

func TestExtractSubstancesSkipsBlankText(t *testing.T) {
	c := &scriptedClient{answer: "X"}
	got, err := NewService(c).ExtractSubstances(context.Background(), " \n ")
	if err != nil || got != nil || len(c.prompts) != 0 {
		t.Fatalf("blank text should not reach the model: %v %v %v", got, err, c.prompts)
	}
}

func TestServiceWithoutClient(t *testing.T) {
	s := NewService(nil)
	if s.Enabled() {
		t.Fatal("nil client must not be enabled")
	}
	if _, err := s.ExtractSubstances(context.Background(), "x"); !errors.Is(err, domai.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if _, err := s.Summarize(context.Background(), nil); !errors.Is(err, domai.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestSummarizePassesError(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewService(&scriptedClient{err: boom}).Summarize(context.Background(), []reports.KnownSubstance{{Name: "A", Category: "X"}})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}
