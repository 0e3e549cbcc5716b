package llm

import (
	"context"
	"errors"
	"time"

	"google.golang.org/genai"

	"github.com/user/seo-audit-service/internal/suggest"
)

const geminiAPIVersion = "v1beta"

// GeminiClient calls the Gemini generateContent API.
type GeminiClient struct {
	client *genai.Client
}

// NewGeminiClient builds a Gemini API client. With an empty apiKey the client
// is created but every call fails with suggest.ErrNoCredentials.
func NewGeminiClient(ctx context.Context, apiKey, baseURL string, timeout time.Duration) (*GeminiClient, error) {
	if apiKey == "" {
		return &GeminiClient{}, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: newHTTPClient(timeout),
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    baseURL,
			APIVersion: geminiAPIVersion,
		},
	})
	if err != nil {
		return nil, err
	}
	return &GeminiClient{client: client}, nil
}

func (c *GeminiClient) Complete(ctx context.Context, req suggest.ChatRequest) (string, error) {
	if c.client == nil {
		return "", suggest.ErrNoCredentials
	}

	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(req.MaxTokens),
		Temperature:     genai.Ptr(float32(req.Temperature)),
	}
	if req.System != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.System}}}
	}

	resp, err := c.client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 {
		return "", errors.New("gemini response has no candidates")
	}
	return resp.Text(), nil
}
