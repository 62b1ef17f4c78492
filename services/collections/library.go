// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package collections

import (
	"context"
	"log/slog"
	"sync"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/AleutianScribe/services/manuscript"
)

// =============================================================================
// Library
// =============================================================================

// Library aggregates every registered collection into one item list
// for cross-source search, kept fresh by a file-system watcher.
//
// # Thread Safety
//
// Items is safe to call concurrently with a running watcher; the
// cached list is guarded by a read-write mutex.
type Library struct {
	sources []Source
	log     *slog.Logger

	mu    sync.RWMutex
	cache [][]manuscript.SearchableItem
}

// NewLibrary creates a library over the given sources. Source order is
// significant: aggregated items are returned grouped by source in
// registration order.
func NewLibrary(log *slog.Logger, sources ...Source) *Library {
	if log == nil {
		log = slog.Default()
	}
	return &Library{
		sources: sources,
		log:     log,
		cache:   make([][]manuscript.SearchableItem, len(sources)),
	}
}

// Reload loads all sources in parallel and replaces the cache. A
// failing source keeps its previous items.
func (l *Library) Reload(ctx context.Context) error {
	loaded := make([][]manuscript.SearchableItem, len(l.sources))

	g, _ := errgroup.WithContext(ctx)
	for i, src := range l.sources {
		g.Go(func() error {
			items, err := src.Items()
			if err != nil {
				l.log.Warn("collection load failed", "kind", src.Kind(), "error", err)
				return nil
			}
			loaded[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	l.mu.Lock()
	for i := range loaded {
		if loaded[i] != nil {
			l.cache[i] = loaded[i]
		}
	}
	l.mu.Unlock()
	return nil
}

// Items returns the aggregated item list, grouped by source in
// registration order.
func (l *Library) Items() []manuscript.SearchableItem {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []manuscript.SearchableItem
	for _, group := range l.cache {
		out = append(out, group...)
	}
	return out
}

// Watch reloads collections whenever any DirSource's directory
// changes, until ctx is cancelled. Blocking; run on its own goroutine.
func (l *Library) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	for _, src := range l.sources {
		dirSrc, ok := src.(*DirSource)
		if !ok {
			continue
		}
		if err := watcher.Add(dirSrc.Dir()); err != nil {
			// Missing directories are tolerated, same as Items.
			l.log.Debug("not watching collection dir", "dir", dirSrc.Dir(), "error", err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			l.log.Debug("collection changed, reloading", "file", event.Name)
			if err := l.Reload(ctx); err != nil {
				l.log.Warn("collection reload failed", "error", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			l.log.Warn("collection watcher error", "error", err)
		}
	}
}
