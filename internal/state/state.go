// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

// Package state holds client-side containers for vendors, assessments and
// UI preferences. Containers call a backend, keep the latest snapshot in
// memory and notify subscribers after every change.
package state

import (
	"sync"
)

// Listener is called after a container changed.
type Listener func()

// base carries what every container shares: a loading flag, the last
// error message and the subscriber list.
type base struct {
	mu        sync.RWMutex
	loading   bool
	lastError string

	subMu     sync.Mutex
	nextSubID int
	listeners map[int]Listener
}

// Subscribe registers fn and returns a function that removes it.
func (b *base) Subscribe(fn Listener) (unsubscribe func()) {
	b.subMu.Lock()
	defer b.subMu.Unlock()
	if b.listeners == nil {
		b.listeners = make(map[int]Listener)
	}
	id := b.nextSubID
	b.nextSubID++
	b.listeners[id] = fn
	return func() {
		b.subMu.Lock()
		defer b.subMu.Unlock()
		delete(b.listeners, id)
	}
}

func (b *base) notify() {
	b.subMu.Lock()
	fns := make([]Listener, 0, len(b.listeners))
	for _, fn := range b.listeners {
		fns = append(fns, fn)
	}
	b.subMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Loading reports whether an action is in flight.
func (b *base) Loading() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.loading
}

// Err returns the message of the last failed action, or "".
func (b *base) Err() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastError
}

// ClearError resets the last error message.
func (b *base) ClearError() {
	b.mu.Lock()
	b.lastError = ""
	b.mu.Unlock()
	b.notify()
}

// begin marks an action as started.
func (b *base) begin() {
	b.mu.Lock()
	b.loading = true
	b.lastError = ""
	b.mu.Unlock()
	b.notify()
}

// finish records the outcome of an action. apply runs under the write
// lock when err is nil.
func (b *base) finish(err error, apply func()) error {
	b.mu.Lock()
	b.loading = false
	if err != nil {
		b.lastError = err.Error()
	} else if apply != nil {
		apply()
	}
	b.mu.Unlock()
	b.notify()
	return err
}
