// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads the scribe configuration from
// ~/.scribe/scribe.yaml, creating a default file on first run.
package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ScribeConfig is the full on-disk configuration.
type ScribeConfig struct {
	// Backend selects the rewriting collaborator: "openai" or "ollama".
	Backend string `yaml:"backend" validate:"required,oneof=openai ollama"`

	OpenAI struct {
		// Model is the chat model used for corrections and rewrites.
		Model string `yaml:"model"`

		// RequestsPerMinute throttles outbound requests. 0 disables.
		RequestsPerMinute int `yaml:"requests_per_minute" validate:"gte=0"`
	} `yaml:"openai"`

	Ollama struct {
		BaseURL string `yaml:"base_url" validate:"omitempty,url"`
		Model   string `yaml:"model"`
	} `yaml:"ollama"`

	Storage struct {
		// Dir is the BadgerDB directory. Supports ~ expansion.
		Dir string `yaml:"dir" validate:"required"`

		// AutosaveMillis is the debounce window for autosave.
		AutosaveMillis int `yaml:"autosave_millis" validate:"gte=0"`
	} `yaml:"storage"`

	Collections struct {
		// Directories of markdown files searched alongside the
		// manuscript. Missing directories are tolerated.
		NotesDir      string `yaml:"notes_dir"`
		CharactersDir string `yaml:"characters_dir"`
		ResearchDir   string `yaml:"research_dir"`
	} `yaml:"collections"`

	Logging struct {
		// Level is one of debug, info, warn, error.
		Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`

		// Dir enables file logging when set.
		Dir string `yaml:"dir"`
	} `yaml:"logging"`
}

// DefaultConfig returns the configuration written on first run.
func DefaultConfig() ScribeConfig {
	var c ScribeConfig
	c.Backend = "ollama"
	c.OpenAI.Model = "gpt-4o-mini"
	c.OpenAI.RequestsPerMinute = 30
	c.Ollama.BaseURL = "http://localhost:11434"
	c.Ollama.Model = "llama3.1:8b"
	c.Storage.Dir = "~/.scribe/data"
	c.Storage.AutosaveMillis = 500
	c.Collections.NotesDir = "~/.scribe/notes"
	c.Collections.CharactersDir = "~/.scribe/characters"
	c.Collections.ResearchDir = "~/.scribe/research"
	c.Logging.Level = "info"
	return c
}

// Validate checks the struct tags and returns a readable error.
func (c *ScribeConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
