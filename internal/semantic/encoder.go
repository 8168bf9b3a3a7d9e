package semantic

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"
)

// GeminiEncoder encodes queries through the Gemini embedding API. The model
// name is supplied per call by the Fallback so it always matches the one the
// index was built with.
type GeminiEncoder struct {
	client  *genai.Client
	timeout time.Duration
}

// NewGeminiEncoder builds the encoder from a Gemini API key. The timeout
// bounds every Encode call so an unreachable API degrades the fallback
// instead of stalling the request.
func NewGeminiEncoder(ctx context.Context, apiKey string, timeout time.Duration) (*GeminiEncoder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is not set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &GeminiEncoder{client: client, timeout: timeout}, nil
}

// Encode returns the embedding vector for text under the given model.
func (e *GeminiEncoder) Encode(ctx context.Context, model, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	resp, err := e.client.Models.EmbedContent(ctx, model, genai.Text(text), &genai.EmbedContentConfig{
		TaskType: "RETRIEVAL_QUERY",
	})
	if err != nil {
		return nil, fmt.Errorf("embed content: %w", err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("embed content: empty embedding in response")
	}
	return resp.Embeddings[0].Values, nil
}
