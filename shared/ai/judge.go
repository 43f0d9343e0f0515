package ai

import (
	"context"
	"fmt"

	"github.com/tkramer22/bjj-os-sub000/shared/config"

	"google.golang.org/genai"
)

// Judge is the judgment service every pipeline stage calls: prompt in,
// free-form text out. Tests substitute a canned-response fake.
type Judge interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Client is the Gemini-backed Judge used in production.
type Client struct {
	client *genai.Client
	model  string
}

func NewClient(cfg *config.AIConfig) (*Client, error) {
	ctx := context.Background()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.GeminiAPIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{
		client: client,
		model:  cfg.Model,
	}, nil
}

func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{genai.NewPartFromText(prompt)}, genai.RoleUser),
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("judgment call failed: %w", err)
	}

	responseText := result.Text()
	if responseText == "" {
		return "", fmt.Errorf("empty response from judgment model %s", c.model)
	}

	return responseText, nil
}
