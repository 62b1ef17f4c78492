// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// OllamaConfig configures the local Ollama backend.
type OllamaConfig struct {
	// BaseURL is the Ollama server, default http://localhost:11434.
	BaseURL string

	// Model names the local model, e.g. "llama3.1:8b".
	Model string

	// Timeout bounds one generation request. Default 60s.
	Timeout time.Duration
}

// OllamaClient implements Client against a local Ollama server, for
// fully offline operation.
type OllamaClient struct {
	baseURL string
	model   string
	http    *http.Client
	log     *slog.Logger
}

// NewOllamaClient creates a client for the configured local server.
func NewOllamaClient(config OllamaConfig, log *slog.Logger) *OllamaClient {
	if log == nil {
		log = slog.Default()
	}
	baseURL := strings.TrimRight(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &OllamaClient{
		baseURL: baseURL,
		model:   config.Model,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

type ollamaGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	System string `json:"system,omitempty"`
	Stream bool   `json:"stream"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

// Correct implements Client.
func (c *OllamaClient) Correct(ctx context.Context, text string) (string, error) {
	return c.generate(ctx, correctionSystemPrompt, text)
}

// Rewrite implements Client. Ollama's generate endpoint yields one
// completion per request, so a rewrite returns a single suggestion.
func (c *OllamaClient) Rewrite(ctx context.Context, text, instruction string) ([]string, error) {
	prompt := fmt.Sprintf("Instruction: %s\n\nText:\n%s", instruction, text)
	out, err := c.generate(ctx, rewriteSystemPrompt, prompt)
	if err != nil {
		return nil, err
	}
	return []string{out}, nil
}

func (c *OllamaClient) generate(ctx context.Context, system, prompt string) (string, error) {
	body, err := json.Marshal(ollamaGenerateRequest{
		Model:  c.model,
		Prompt: prompt,
		System: system,
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("encoding generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("ollama returned %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	var decoded ollamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decoding generate response: %w", err)
	}
	if decoded.Error != "" {
		return "", fmt.Errorf("ollama error: %s", decoded.Error)
	}
	return strings.TrimSpace(decoded.Response), nil
}
