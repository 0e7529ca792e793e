// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package nav holds chatbox's navigation state: which thread is open, and
// what happens to that choice when threads are created or deleted.
//
// Routes mirror URL paths: "/" is the landing view and "/chat/{id}" opens a
// thread.
package nav

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jeranaias/chatbox/internal/model"
)

// ErrBadRoute is returned by Parse for paths that are not routes.
var ErrBadRoute = errors.New("invalid route")

const chatPrefix = "/chat/"

// Route is either the landing view or one thread.
type Route struct {
	Thread model.ThreadID // empty for the landing view
}

// Landing is the route with no open thread.
var Landing = Route{}

// ThreadRoute returns the route that opens id.
func ThreadRoute(id model.ThreadID) Route {
	return Route{Thread: id}
}

// IsLanding reports whether r shows no thread.
func (r Route) IsLanding() bool {
	return r.Thread == ""
}

// Path renders r as "/" or "/chat/{id}".
func (r Route) Path() string {
	if r.IsLanding() {
		return "/"
	}
	return chatPrefix + string(r.Thread)
}

func (r Route) String() string {
	return r.Path()
}

// Parse reads "/" (or "") and "/chat/{id}" paths. A trailing slash is
// accepted.
func Parse(path string) (Route, error) {
	p := strings.TrimSpace(path)
	if p == "" || p == "/" {
		return Landing, nil
	}
	p = strings.TrimSuffix(p, "/")
	if !strings.HasPrefix(p, chatPrefix) {
		return Landing, fmt.Errorf("%w: %q", ErrBadRoute, path)
	}
	id := strings.TrimPrefix(p, chatPrefix)
	if id == "" || strings.Contains(id, "/") {
		return Landing, fmt.Errorf("%w: %q", ErrBadRoute, path)
	}
	return ThreadRoute(model.ThreadID(id)), nil
}
