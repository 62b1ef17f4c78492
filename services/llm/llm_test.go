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
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// stubClient scripts Client responses for wrapper tests.
type stubClient struct {
	correctOut string
	correctErr error
	rewriteOut []string
	rewriteErr error
}

func (s *stubClient) Correct(_ context.Context, _ string) (string, error) {
	return s.correctOut, s.correctErr
}

func (s *stubClient) Rewrite(_ context.Context, _, _ string) ([]string, error) {
	return s.rewriteOut, s.rewriteErr
}

// =============================================================================
// Resilient wrapper
// =============================================================================

func TestResilient_CorrectFallsBackToOriginal(t *testing.T) {
	tests := []struct {
		name string
		stub *stubClient
		want string
	}{
		{"backend error", &stubClient{correctErr: errors.New("boom")}, "original"},
		{"empty response", &stubClient{correctOut: ""}, "original"},
		{"success passes through", &stubClient{correctOut: "corrected"}, "corrected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResilient(tt.stub, nil)

			got, err := r.Correct(context.Background(), "original")
			if err != nil {
				t.Fatalf("Correct() error = %v, want nil always", err)
			}
			if got != tt.want {
				t.Errorf("Correct() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResilient_RewriteFallsBackToEmpty(t *testing.T) {
	r := NewResilient(&stubClient{rewriteErr: errors.New("offline")}, nil)

	got, err := r.Rewrite(context.Background(), "text", "make it shorter")
	if err != nil {
		t.Fatalf("Rewrite() error = %v, want nil always", err)
	}
	if len(got) != 0 {
		t.Errorf("Rewrite() = %v, want empty", got)
	}
}

func TestResilient_RewritePassesThrough(t *testing.T) {
	want := []string{"one", "two"}
	r := NewResilient(&stubClient{rewriteOut: want}, nil)

	got, err := r.Rewrite(context.Background(), "text", "vary it")
	if err != nil {
		t.Fatalf("Rewrite() error = %v", err)
	}
	if len(got) != 2 || got[0] != "one" || got[1] != "two" {
		t.Errorf("Rewrite() = %v, want %v", got, want)
	}
}

// =============================================================================
// Ollama backend
// =============================================================================

func TestOllamaClient_Correct(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("path = %q, want /api/generate", r.URL.Path)
		}
		var req ollamaGenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req.Stream {
			t.Error("stream = true, want false")
		}
		if req.Model != "test-model" {
			t.Errorf("model = %q, want test-model", req.Model)
		}
		json.NewEncoder(w).Encode(ollamaGenerateResponse{Response: "  the corrected text \n"})
	}))
	defer server.Close()

	c := NewOllamaClient(OllamaConfig{BaseURL: server.URL, Model: "test-model"}, nil)

	got, err := c.Correct(context.Background(), "teh corrected text")
	if err != nil {
		t.Fatalf("Correct() error = %v", err)
	}
	if got != "the corrected text" {
		t.Errorf("Correct() = %q, want trimmed response", got)
	}
}

func TestOllamaClient_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	c := NewOllamaClient(OllamaConfig{BaseURL: server.URL, Model: "missing"}, nil)

	if _, err := c.Correct(context.Background(), "text"); err == nil {
		t.Error("Correct() error = nil, want error on HTTP 404")
	}
}

func TestOllamaClient_ErrorPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(ollamaGenerateResponse{Error: "out of memory"})
	}))
	defer server.Close()

	c := NewOllamaClient(OllamaConfig{BaseURL: server.URL, Model: "big"}, nil)

	if _, err := c.Correct(context.Background(), "text"); err == nil {
		t.Error("Correct() error = nil, want error from payload")
	}
}

func TestOllamaClient_Rewrite(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaGenerateRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.System != rewriteSystemPrompt {
			t.Errorf("system prompt = %q, want rewrite prompt", req.System)
		}
		json.NewEncoder(w).Encode(ollamaGenerateResponse{Response: "shorter version"})
	}))
	defer server.Close()

	c := NewOllamaClient(OllamaConfig{BaseURL: server.URL, Model: "m"}, nil)

	got, err := c.Rewrite(context.Background(), "a long sentence", "make it shorter")
	if err != nil {
		t.Fatalf("Rewrite() error = %v", err)
	}
	if len(got) != 1 || got[0] != "shorter version" {
		t.Errorf("Rewrite() = %v", got)
	}
}

func TestNewOpenAIClient_RequiresKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	if _, err := NewOpenAIClient(OpenAIConfig{}, nil); err == nil {
		t.Error("NewOpenAIClient() error = nil, want error without key")
	}
}
