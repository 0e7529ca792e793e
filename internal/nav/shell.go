// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package nav

import (
	"fmt"

	"github.com/jeranaias/chatbox/internal/logger"
	"github.com/jeranaias/chatbox/internal/model"
	"github.com/jeranaias/chatbox/internal/storage"
)

// ErrUnknownThread is returned when selecting an id that is not indexed.
var ErrUnknownThread = &storage.StoreError{Message: "unknown thread"}

// Canceler aborts a thread's in-flight request. *exchange.Service
// implements it.
type Canceler interface {
	Cancel(id model.ThreadID) bool
}

// Shell tracks the current route over the thread store.
type Shell struct {
	store    *storage.ThreadStore
	canceler Canceler
	route    Route
}

// NewShell creates a shell on the landing route. canceler may be nil.
func NewShell(store *storage.ThreadStore, canceler Canceler) *Shell {
	return &Shell{store: store, canceler: canceler}
}

// Route returns the current route.
func (s *Shell) Route() Route {
	return s.route
}

// Active returns the open thread, if any.
func (s *Shell) Active() (model.ThreadID, bool) {
	return s.route.Thread, !s.route.IsLanding()
}

// Threads returns the thread index.
func (s *Shell) Threads() ([]model.ThreadID, error) {
	return s.store.ListThreads()
}

// Start resolves the initial route. The landing route opens the most
// recently created thread when one exists; a thread route whose id is not
// indexed is treated like the landing route.
func (s *Shell) Start(r Route) (Route, error) {
	if !r.IsLanding() {
		known, err := s.store.Contains(r.Thread)
		if err != nil {
			return s.route, err
		}
		if known {
			s.route = r
			return s.route, nil
		}
		logger.Component("nav").Info("unknown thread route, opening landing", "route", r.Path())
	}
	return s.toMostRecent()
}

// NewThread creates a thread and opens it.
func (s *Shell) NewThread() (Route, error) {
	id, err := s.store.CreateThread()
	if err != nil {
		return s.route, err
	}
	s.route = ThreadRoute(id)
	return s.route, nil
}

// Select opens an existing thread.
func (s *Shell) Select(id model.ThreadID) (Route, error) {
	known, err := s.store.Contains(id)
	if err != nil {
		return s.route, err
	}
	if !known {
		return s.route, fmt.Errorf("%w: %s", ErrUnknownThread, id)
	}
	s.route = ThreadRoute(id)
	return s.route, nil
}

// Delete removes a thread and cancels its in-flight request. Deleting the
// open thread moves to the most recent remaining thread, or the landing
// route when none remain. Deleting another thread keeps the route.
func (s *Shell) Delete(id model.ThreadID) (Route, error) {
	if s.canceler != nil {
		s.canceler.Cancel(id)
	}
	if err := s.store.DeleteThread(id); err != nil {
		return s.route, err
	}

	if s.route.Thread == id {
		return s.toMostRecent()
	}

	ids, err := s.store.ListThreads()
	if err != nil {
		return s.route, err
	}
	if len(ids) == 0 {
		s.route = Landing
	}
	return s.route, nil
}

// Refresh re-validates the current route after external changes, falling
// back like Delete when the open thread disappeared.
func (s *Shell) Refresh() (Route, error) {
	if s.route.IsLanding() {
		return s.route, nil
	}
	known, err := s.store.Contains(s.route.Thread)
	if err != nil {
		return s.route, err
	}
	if known {
		return s.route, nil
	}
	return s.toMostRecent()
}

func (s *Shell) toMostRecent() (Route, error) {
	id, ok, err := s.store.MostRecent()
	if err != nil {
		return s.route, err
	}
	if !ok {
		s.route = Landing
	} else {
		s.route = ThreadRoute(id)
	}
	return s.route, nil
}
