// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package nav

import (
	"errors"
	"testing"

	"github.com/jeranaias/chatbox/internal/kv"
	"github.com/jeranaias/chatbox/internal/model"
	"github.com/jeranaias/chatbox/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingCanceler struct {
	canceled []model.ThreadID
}

func (r *recordingCanceler) Cancel(id model.ThreadID) bool {
	r.canceled = append(r.canceled, id)
	return true
}

func newShell(t *testing.T) (*Shell, *storage.ThreadStore, *recordingCanceler) {
	t.Helper()
	store := storage.NewThreadStore(kv.NewMemoryStore(), 100)
	c := &recordingCanceler{}
	return NewShell(store, c), store, c
}

// =============================================================================
// ROUTE TESTS
// =============================================================================

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Route
		ok   bool
	}{
		{"/", Landing, true},
		{"", Landing, true},
		{"/chat/abc", ThreadRoute("abc"), true},
		{"/chat/abc/", ThreadRoute("abc"), true},
		{"/chat/", Landing, false},
		{"/chat/a/b", Landing, false},
		{"/settings", Landing, false},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Parse(tc.in)
			if !tc.ok {
				assert.True(t, errors.Is(err, ErrBadRoute))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRoute_Path(t *testing.T) {
	assert.Equal(t, "/", Landing.Path())
	assert.Equal(t, "/chat/xyz", ThreadRoute("xyz").Path())

	r, err := Parse(ThreadRoute("xyz").Path())
	require.NoError(t, err)
	assert.Equal(t, ThreadRoute("xyz"), r)
}

// =============================================================================
// SHELL TESTS
// =============================================================================

func TestStart_EmptyStoreIsLanding(t *testing.T) {
	shell, _, _ := newShell(t)

	r, err := shell.Start(Landing)
	require.NoError(t, err)
	assert.True(t, r.IsLanding())

	_, ok := shell.Active()
	assert.False(t, ok)
}

func TestStart_LandingOpensMostRecent(t *testing.T) {
	shell, store, _ := newShell(t)
	_, _ = store.CreateThread()
	last, _ := store.CreateThread()

	r, err := shell.Start(Landing)
	require.NoError(t, err)
	assert.Equal(t, ThreadRoute(last), r)
}

func TestStart_ThreadRoute(t *testing.T) {
	shell, store, _ := newShell(t)
	first, _ := store.CreateThread()
	_, _ = store.CreateThread()

	r, err := shell.Start(ThreadRoute(first))
	require.NoError(t, err)
	assert.Equal(t, ThreadRoute(first), r)
}

func TestStart_UnknownThreadActsLikeLanding(t *testing.T) {
	shell, store, _ := newShell(t)

	r, err := shell.Start(ThreadRoute("ghost"))
	require.NoError(t, err)
	assert.True(t, r.IsLanding())

	only, _ := store.CreateThread()
	r, err = shell.Start(ThreadRoute("ghost"))
	require.NoError(t, err)
	assert.Equal(t, ThreadRoute(only), r)
}

func TestNewThreadAndSelect(t *testing.T) {
	shell, _, _ := newShell(t)

	r1, err := shell.NewThread()
	require.NoError(t, err)
	r2, err := shell.NewThread()
	require.NoError(t, err)
	assert.Equal(t, r2, shell.Route())

	r, err := shell.Select(r1.Thread)
	require.NoError(t, err)
	assert.Equal(t, r1, r)

	_, err = shell.Select("nope")
	assert.True(t, errors.Is(err, ErrUnknownThread))
	assert.Equal(t, r1, shell.Route(), "failed select keeps route")
}

func TestDelete_OnlyThreadGoesToLanding(t *testing.T) {
	shell, store, canceler := newShell(t)
	r, err := shell.NewThread()
	require.NoError(t, err)

	after, err := shell.Delete(r.Thread)
	require.NoError(t, err)
	assert.True(t, after.IsLanding())

	ids, err := store.ListThreads()
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.Equal(t, []model.ThreadID{r.Thread}, canceler.canceled)
}

func TestDelete_ActiveGoesToMostRecentRemaining(t *testing.T) {
	shell, _, _ := newShell(t)
	a, _ := shell.NewThread()
	b, _ := shell.NewThread()
	c, _ := shell.NewThread()

	_, err := shell.Select(b.Thread)
	require.NoError(t, err)

	after, err := shell.Delete(b.Thread)
	require.NoError(t, err)
	assert.Equal(t, c, after, "most recently created remaining thread")

	after, err = shell.Delete(c.Thread)
	require.NoError(t, err)
	assert.Equal(t, a, after)
}

func TestDelete_InactiveKeepsRoute(t *testing.T) {
	shell, _, _ := newShell(t)
	a, _ := shell.NewThread()
	b, _ := shell.NewThread()

	after, err := shell.Delete(a.Thread)
	require.NoError(t, err)
	assert.Equal(t, b, after)
}

func TestDelete_InactiveOnLandingWithEmptyIndex(t *testing.T) {
	shell, store, _ := newShell(t)
	id, _ := store.CreateThread()

	// still on landing because Start was never called
	after, err := shell.Delete(id)
	require.NoError(t, err)
	assert.True(t, after.IsLanding())
}

func TestRefresh_ExternalDelete(t *testing.T) {
	shell, store, _ := newShell(t)
	a, _ := shell.NewThread()
	b, _ := shell.NewThread()

	// another instance removes the open thread
	require.NoError(t, store.DeleteThread(b.Thread))

	r, err := shell.Refresh()
	require.NoError(t, err)
	assert.Equal(t, a, r)
}
