// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package assistant

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/samber/oops"
	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-1.5-flash"

// GeminiConfig configures the Gemini backend.
type GeminiConfig struct {
	APIKey string
	Model  string

	// BaseURL overrides the API endpoint. Empty uses the SDK default.
	BaseURL string
}

// GeminiClient generates text with the Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  string
}

func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultGeminiModel
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, oops.Code("GEMINI_CLIENT_FAILED").Wrap(err)
	}

	return &GeminiClient{client: client, model: cfg.Model}, nil
}

func (g *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	if err := checkPrompt(prompt); err != nil {
		return "", err
	}

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", oops.Code("GEMINI_REQUEST_FAILED").With("model", g.model).Wrap(err)
	}

	text := resp.Text()
	if text == "" {
		return "", oops.Code("GEMINI_EMPTY_RESPONSE").With("model", g.model).Wrap(ErrEmptyAnswer)
	}

	slog.Debug("gemini completion", "model", g.model, "duration", time.Since(start), "length", len(text))
	return text, nil
}
