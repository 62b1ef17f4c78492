// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package storage persists manuscripts in a local BadgerDB instance.
//
// BadgerDB gives low-latency embedded storage with no external
// process; the manuscript engine treats persistence as an
// eventually-consistent, fire-and-forget collaborator, so writes are
// coalesced by DebouncedSaver rather than issued per keystroke.
//
// License: BadgerDB is Apache 2.0 licensed (github.com/dgraph-io/badger).
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/AleutianAI/AleutianScribe/services/manuscript"
)

// manuscriptPrefix namespaces manuscript keys within the database.
const manuscriptPrefix = "manuscript/"

// ErrNotFound is returned by Load when no manuscript exists under the
// given scope.
var ErrNotFound = errors.New("manuscript not found")

// Config holds configuration for a Store.
type Config struct {
	// Path is the directory for BadgerDB files. Ignored when
	// InMemory is true.
	Path string

	// InMemory enables in-memory mode (no disk persistence).
	// Useful for testing.
	InMemory bool

	// SyncWrites enables synchronous writes for durability.
	SyncWrites bool
}

// DefaultConfig returns production defaults for the given directory.
func DefaultConfig(path string) Config {
	return Config{Path: path, SyncWrites: true}
}

// InMemoryConfig returns configuration for tests.
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

// Store reads and writes manuscripts keyed by scope id.
type Store struct {
	db  *badger.DB
	log *slog.Logger
}

// Open opens (or creates) the database described by config.
func Open(config Config, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}

	var opts badger.Options
	if config.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(config.Path).WithSyncWrites(config.SyncWrites)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening manuscript database: %w", err)
	}
	log.Info("manuscript database opened", "path", config.Path, "in_memory", config.InMemory)
	return &Store{db: db, log: log}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Load returns the manuscript stored under scope, or ErrNotFound.
func (s *Store) Load(scope string) (manuscript.Document, error) {
	var doc manuscript.Document
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(scope))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &doc)
		})
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("loading manuscript %q: %w", scope, err)
	}
	return doc, nil
}

// Save writes the manuscript under scope, replacing any previous
// version.
func (s *Store) Save(scope string, doc manuscript.Document) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding manuscript %q: %w", scope, err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(scope), payload)
	})
	if err != nil {
		return fmt.Errorf("saving manuscript %q: %w", scope, err)
	}
	s.log.Debug("manuscript saved", "scope", scope, "blocks", len(doc))
	return nil
}

// Delete removes the manuscript under scope. Deleting a missing scope
// is not an error.
func (s *Store) Delete(scope string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key(scope))
	})
	if err != nil {
		return fmt.Errorf("deleting manuscript %q: %w", scope, err)
	}
	return nil
}

// Scopes lists every stored manuscript scope.
func (s *Store) Scopes() ([]string, error) {
	var out []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(manuscriptPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			out = append(out, string(it.Item().Key())[len(manuscriptPrefix):])
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing manuscripts: %w", err)
	}
	return out, nil
}

func key(scope string) []byte {
	return []byte(manuscriptPrefix + scope)
}
