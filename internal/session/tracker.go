// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/jeranaias/chatbox/internal/model"
)

// ErrAlreadyPending is returned by Begin when the thread already awaits a reply.
var ErrAlreadyPending = errors.New("thread already awaiting a reply")

// Token identifies one in-flight request.
type Token uint64

// =============================================================================
// TRACKER
// =============================================================================

type inflight struct {
	token   Token
	cancel  context.CancelFunc
	started time.Time
}

// Tracker records the in-flight request of each thread. Safe for concurrent use.
type Tracker struct {
	mu      sync.Mutex
	next    Token
	pending map[model.ThreadID]inflight
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{pending: make(map[model.ThreadID]inflight)}
}

// Begin marks id as awaiting a reply and returns a context, derived from
// parent, that is canceled by Cancel, CancelAll or Finish.
func (t *Tracker) Begin(parent context.Context, id model.ThreadID) (context.Context, Token, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, busy := t.pending[id]; busy {
		return nil, 0, ErrAlreadyPending
	}

	ctx, cancel := context.WithCancel(parent)
	t.next++
	t.pending[id] = inflight{token: t.next, cancel: cancel, started: time.Now()}
	return ctx, t.next, nil
}

// Finish clears id's pending state if token is still its current request.
// It reports false for a request that was canceled or superseded.
func (t *Tracker) Finish(id model.ThreadID, token Token) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	cur, ok := t.pending[id]
	if !ok || cur.token != token {
		return false
	}
	cur.cancel()
	delete(t.pending, id)
	return true
}

// Cancel aborts id's in-flight request, if any.
func (t *Tracker) Cancel(id model.ThreadID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	cur, ok := t.pending[id]
	if !ok {
		return false
	}
	cur.cancel()
	delete(t.pending, id)
	return true
}

// CancelAll aborts every in-flight request and returns how many there were.
func (t *Tracker) CancelAll() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := len(t.pending)
	for id, cur := range t.pending {
		cur.cancel()
		delete(t.pending, id)
	}
	return n
}

// Pending reports whether id awaits a reply.
func (t *Tracker) Pending(id model.ThreadID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.pending[id]
	return ok
}

// Elapsed returns how long id has been waiting.
func (t *Tracker) Elapsed(id model.ThreadID) (time.Duration, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	cur, ok := t.pending[id]
	if !ok {
		return 0, false
	}
	return time.Since(cur.started), true
}

// Threads returns the ids currently awaiting a reply, sorted.
func (t *Tracker) Threads() []model.ThreadID {
	t.mu.Lock()
	defer t.mu.Unlock()

	ids := make([]model.ThreadID, 0, len(t.pending))
	for id := range t.pending {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
