package ai

import "context"

// Client sends a single prompt and returns the model's text answer.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
