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
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

// rewriteVariants is how many alternative phrasings Rewrite requests.
const rewriteVariants = 3

// OpenAIConfig configures the OpenAI-backed client.
type OpenAIConfig struct {
	// APIKey authenticates requests. Falls back to OPENAI_API_KEY
	// when empty.
	APIKey string

	// Model names the chat model, e.g. "gpt-4o-mini".
	Model string

	// RequestsPerMinute throttles outbound requests; the revision
	// sweep can otherwise fire one per block in rapid succession.
	// Zero disables throttling.
	RequestsPerMinute int
}

// OpenAIClient implements Client against the OpenAI chat API.
type OpenAIClient struct {
	client  *openai.Client
	model   string
	limiter *rate.Limiter
	log     *slog.Logger
}

// NewOpenAIClient creates a client, reading OPENAI_API_KEY when the
// config carries no key.
func NewOpenAIClient(config OpenAIConfig, log *slog.Logger) (*OpenAIClient, error) {
	if log == nil {
		log = slog.Default()
	}
	apiKey := config.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("no OpenAI API key configured and OPENAI_API_KEY not set")
	}
	model := config.Model
	if model == "" {
		model = openai.GPT4oMini
		log.Warn("no model configured, defaulting", "model", model)
	}

	var limiter *rate.Limiter
	if config.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(config.RequestsPerMinute)/60.0), 1)
	}

	log.Info("initializing OpenAI client", "model", model)
	return &OpenAIClient{
		client:  openai.NewClient(apiKey),
		model:   model,
		limiter: limiter,
		log:     log,
	}, nil
}

// Correct implements Client.
func (o *OpenAIClient) Correct(ctx context.Context, text string) (string, error) {
	if err := o.wait(ctx); err != nil {
		return "", err
	}
	o.log.Debug("requesting correction", "chars", len(text))

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: correctionSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
	})
	if err != nil {
		return "", fmt.Errorf("correction request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("correction response had no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Rewrite implements Client, requesting rewriteVariants choices.
func (o *OpenAIClient) Rewrite(ctx context.Context, text, instruction string) ([]string, error) {
	if err := o.wait(ctx); err != nil {
		return nil, err
	}
	o.log.Debug("requesting rewrite", "chars", len(text), "instruction", instruction)

	prompt := fmt.Sprintf("Instruction: %s\n\nText:\n%s", instruction, text)
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		N:     rewriteVariants,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: rewriteSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("rewrite request failed: %w", err)
	}

	out := make([]string, 0, len(resp.Choices))
	for _, choice := range resp.Choices {
		if s := strings.TrimSpace(choice.Message.Content); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

func (o *OpenAIClient) wait(ctx context.Context) error {
	if o.limiter == nil {
		return nil
	}
	return o.limiter.Wait(ctx)
}
