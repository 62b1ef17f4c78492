// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package storage

import (
	"log/slog"
	"sync"
	"time"

	"github.com/AleutianAI/AleutianScribe/services/manuscript"
)

// defaultDebounce is how long after the last mutation the save fires.
const defaultDebounce = 500 * time.Millisecond

// DebouncedSaver coalesces rapid manuscript mutations into one save.
//
// # Description
//
// Mark schedules a save and returns immediately; the actual write
// happens on a timer goroutine after the debounce window passes with
// no further Mark calls. Save failures are logged, never propagated —
// persistence is fire-and-forget from the mutator's point of view.
//
// # Thread Safety
//
// Safe for concurrent use. Flush blocks until any pending save has
// run; call it before shutdown.
type DebouncedSaver struct {
	store  *Store
	scope  string
	source func() manuscript.Document
	window time.Duration
	log    *slog.Logger

	mu     sync.Mutex
	timer  *time.Timer
	closed bool
	wg     sync.WaitGroup
}

// NewDebouncedSaver wires a saver to the store. The source func is
// called at save time to snapshot the current document; window <= 0
// uses the default.
func NewDebouncedSaver(store *Store, scope string, source func() manuscript.Document, window time.Duration, log *slog.Logger) *DebouncedSaver {
	if window <= 0 {
		window = defaultDebounce
	}
	if log == nil {
		log = slog.Default()
	}
	return &DebouncedSaver{
		store:  store,
		scope:  scope,
		source: source,
		window: window,
		log:    log,
	}
}

// Mark notes that the manuscript changed and (re)starts the debounce
// window. Never blocks.
func (d *DebouncedSaver) Mark() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	if d.timer != nil && d.timer.Stop() {
		// The previous fire was still pending and is now cancelled.
		d.wg.Done()
	}
	d.wg.Add(1)
	d.timer = time.AfterFunc(d.window, func() {
		d.save()
		d.wg.Done()
	})
}

// Flush runs any pending save immediately and waits for it. Further
// Mark calls are ignored afterwards.
func (d *DebouncedSaver) Flush() {
	d.mu.Lock()
	d.closed = true
	if d.timer != nil && d.timer.Stop() {
		// Timer was pending; run the save ourselves.
		go func() {
			d.save()
			d.wg.Done()
		}()
	}
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *DebouncedSaver) save() {
	doc := d.source()
	if err := d.store.Save(d.scope, doc); err != nil {
		d.log.Warn("autosave failed", "scope", d.scope, "error", err)
	}
}
