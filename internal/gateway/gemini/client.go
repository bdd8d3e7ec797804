// Package gemini implements the two AI gateways of the app over the
// Google Gen AI SDK: spending insights from the transaction list, and
// transaction extraction from uploaded statement files.
//
// Both gateways absorb malformed model output at this boundary (insights
// degrade to the documented fallback analysis, extraction to an empty
// record list). Transport errors are returned to the caller, which logs
// and maps them to the same safe defaults. No retries.
package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// DefaultModel is the generation model used unless configured otherwise.
const DefaultModel = "gemini-3-flash-preview"

type Client struct {
	genai *genai.Client
	model string
}

func New(ctx context.Context, apiKey, model string) (*Client, error) {
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &Client{genai: client, model: model}, nil
}
