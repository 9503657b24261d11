// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"strings"

	"github.com/thinkshare/thinkshare/apperr"
	"github.com/thinkshare/thinkshare/assistant"
	"github.com/thinkshare/thinkshare/metrics"
	"github.com/thinkshare/thinkshare/middleware"
	"github.com/thinkshare/thinkshare/models"
)

// AssistantHandler serves the writing assistant endpoints. A nil generator
// means the provider is not configured.
type AssistantHandler struct {
	gemini  assistant.Generator
	openai  assistant.Generator
	metrics *metrics.Metrics
}

func NewAssistantHandler(gemini, openai assistant.Generator, m *metrics.Metrics) *AssistantHandler {
	return &AssistantHandler{gemini: gemini, openai: openai, metrics: m}
}

// AskGemini handles POST /gemini/ask. The generated text is the data field.
func (h *AssistantHandler) AskGemini(w http.ResponseWriter, r *http.Request) {
	text, ok := h.ask(w, r, "gemini", h.gemini, "Failed to fetch response from Gemini")
	if !ok {
		return
	}
	middleware.Respond(w, http.StatusOK, text, "Success")
}

// AskOpenAI handles POST /ai/ask
func (h *AssistantHandler) AskOpenAI(w http.ResponseWriter, r *http.Request) {
	text, ok := h.ask(w, r, "openai", h.openai, "Failed to get AI response")
	if !ok {
		return
	}
	middleware.Respond(w, http.StatusOK, models.AnswerResponse{Answer: text}, "Success")
}

func (h *AssistantHandler) ask(w http.ResponseWriter, r *http.Request, provider string, gen assistant.Generator, failMsg string) (string, bool) {
	var req models.PromptRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.WriteError(w, r, err)
		return "", false
	}
	if strings.TrimSpace(req.Prompt) == "" {
		middleware.WriteError(w, r, apperr.New(apperr.InvalidInput, "Prompt is required"))
		return "", false
	}
	if gen == nil {
		middleware.WriteError(w, r, apperr.New(apperr.Unavailable, "Assistant provider "+provider+" is not configured"))
		return "", false
	}

	text, err := gen.Generate(r.Context(), req.Prompt)
	h.metrics.Assistant(provider, err)
	if err != nil {
		middleware.WriteError(w, r, apperr.Wrap(apperr.UpstreamFailure, failMsg, err))
		return "", false
	}
	return text, true
}
