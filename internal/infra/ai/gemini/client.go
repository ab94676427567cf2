package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	domai "github.com/bryanwahyu/rxscan/internal/domain/ai"
)

const defaultModel = "gemini-1.5-flash-latest"

const defaultTemperature = 0.4

// Client talks to the Gemini API through google.golang.org/genai.
type Client struct {
	client *genai.Client
	Model  string
}

func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	if model == "" {
		model = defaultModel
	}
	return &Client{client: cli, Model: model}, nil
}

func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.Model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](defaultTemperature),
	})
	if err != nil {
		return "", mapError(err)
	}
	text := resp.Text()
	if text == "" {
		return "", domai.ErrEmptyResponse
	}
	return text, nil
}

// mapError turns a 429 from the API into ErrQuotaExceeded.
func mapError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %s", domai.ErrQuotaExceeded, apiErr.Message)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr.Code == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %s", domai.ErrQuotaExceeded, apiErrPtr.Message)
	}
	return fmt.Errorf("gemini generate: %w", err)
}
