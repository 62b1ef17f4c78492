// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/AleutianAI/AleutianScribe/cmd/scribe/config"
	"github.com/AleutianAI/AleutianScribe/pkg/logging"
	"github.com/AleutianAI/AleutianScribe/services/collections"
	"github.com/AleutianAI/AleutianScribe/services/llm"
	"github.com/AleutianAI/AleutianScribe/services/manuscript"
	"github.com/AleutianAI/AleutianScribe/services/storage"
)

// manuscriptScope is the storage key of the working draft.
const manuscriptScope = "draft"

// session wires every service a command needs: config, logging,
// persistence, the manuscript engine, collections, and the backend.
type session struct {
	cfg     *config.ScribeConfig
	logger  *logging.Logger
	db      *storage.Store
	saver   *storage.DebouncedSaver
	store   *manuscript.Store
	review  *manuscript.Review
	runner  *manuscript.Runner
	library *collections.Library
	client  llm.Client
}

// openSession loads the config and stands the stack up. quiet routes
// stderr logging away, which the TUI needs to keep its screen clean.
func openSession(quiet bool) (*session, error) {
	if err := config.Load(); err != nil {
		return nil, err
	}
	cfg := &config.Global

	logger := logging.New(logging.Config{
		Level:   logging.ParseLevel(cfg.Logging.Level),
		LogDir:  cfg.Logging.Dir,
		Service: "scribe",
		Quiet:   quiet,
	})
	log := logger.Slog()

	db, err := storage.Open(storage.DefaultConfig(config.ExpandPath(cfg.Storage.Dir)), log)
	if err != nil {
		logger.Close()
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	store := manuscript.NewStore(log)
	doc, err := db.Load(manuscriptScope)
	switch {
	case err == nil:
		store.Load(doc)
	case errors.Is(err, storage.ErrNotFound):
		// First run, start from the empty manuscript.
	default:
		db.Close()
		logger.Close()
		return nil, fmt.Errorf("failed to load the manuscript: %w", err)
	}

	review := manuscript.NewReview(store)
	client := buildClient(cfg, log)
	runner := manuscript.NewRunner(store, review, client, manuscript.DefaultRunnerConfig(), log)

	window := time.Duration(cfg.Storage.AutosaveMillis) * time.Millisecond
	saver := storage.NewDebouncedSaver(db, manuscriptScope, store.Blocks, window, log)
	store.SetOnMutate(saver.Mark)

	library := collections.NewLibrary(log,
		collections.NewDirSource(config.ExpandPath(cfg.Collections.NotesDir), manuscript.SourceNote),
		collections.NewDirSource(config.ExpandPath(cfg.Collections.CharactersDir), manuscript.SourceCharacter),
		collections.NewDirSource(config.ExpandPath(cfg.Collections.ResearchDir), manuscript.SourceResearch),
	)
	if err := library.Reload(context.Background()); err != nil {
		log.Warn("collection load failed, search covers the manuscript only", "error", err)
	}

	return &session{
		cfg:     cfg,
		logger:  logger,
		db:      db,
		saver:   saver,
		store:   store,
		review:  review,
		runner:  runner,
		library: library,
		client:  client,
	}, nil
}

// close flushes pending saves and releases everything, last writer
// first.
func (s *session) close() {
	s.saver.Flush()
	if err := s.db.Close(); err != nil {
		s.logger.Error("storage close failed", "error", err)
	}
	s.logger.Close()
}

// buildClient picks the configured backend and wraps it so transient
// backend failures degrade to no-ops instead of surfacing mid-edit.
func buildClient(cfg *config.ScribeConfig, log *slog.Logger) llm.Client {
	var inner llm.Client
	switch cfg.Backend {
	case "openai":
		c, err := llm.NewOpenAIClient(llm.OpenAIConfig{
			Model:             cfg.OpenAI.Model,
			RequestsPerMinute: cfg.OpenAI.RequestsPerMinute,
		}, log)
		if err != nil {
			log.Warn("openai backend unavailable, falling back to ollama", "error", err)
			inner = llm.NewOllamaClient(llm.OllamaConfig{
				BaseURL: cfg.Ollama.BaseURL,
				Model:   cfg.Ollama.Model,
			}, log)
		} else {
			inner = c
		}
	default:
		inner = llm.NewOllamaClient(llm.OllamaConfig{
			BaseURL: cfg.Ollama.BaseURL,
			Model:   cfg.Ollama.Model,
		}, log)
	}
	return llm.NewResilient(inner, log)
}

// renderDocument is the inverse of the import segmenter: headings get
// their marker back, rules render as a divider, and blocks are joined
// by blank lines.
func renderDocument(doc manuscript.Document) string {
	parts := make([]string, 0, len(doc))
	for _, b := range doc {
		switch b.Kind {
		case manuscript.Heading:
			parts = append(parts, "# "+b.Text)
		case manuscript.Rule:
			parts = append(parts, "---")
		default:
			parts = append(parts, b.Text)
		}
	}
	return strings.Join(parts, "\n\n") + "\n"
}
