// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeCompleter struct {
	content string
	err     error
}

func (f fakeCompleter) Complete(ctx context.Context, text string) (string, error) {
	return f.content, f.err
}

func TestGateway_Send(t *testing.T) {
	boom := errors.New("connection refused")

	tests := []struct {
		name      string
		completer fakeCompleter
		wantText  string
		wantErr   bool
	}{
		{"success", fakeCompleter{content: "hi there"}, "hi there", false},
		{"empty content", fakeCompleter{content: ""}, EmptyReplyText, false},
		{"failure", fakeCompleter{err: boom}, FailureReplyText, true},
		{"no choices", fakeCompleter{err: ErrNoChoices}, FailureReplyText, true},
		{"not configured", fakeCompleter{err: ErrNotConfigured}, FailureReplyText, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			reply := NewGateway(tc.completer).Send(context.Background(), "t1", "hello")
			assert.Equal(t, "t1", string(reply.ThreadID))
			assert.Equal(t, tc.wantText, reply.Text)
			assert.Equal(t, tc.wantErr, reply.Err != nil)
			assert.False(t, reply.Canceled)
		})
	}
}

func TestGateway_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reply := NewGateway(fakeCompleter{err: context.Canceled}).Send(ctx, "t1", "hello")
	assert.True(t, reply.Canceled)
	assert.Empty(t, reply.Text)
}

func TestGateway_OverHTTP(t *testing.T) {
	server := newTestServer(t, http.StatusBadGateway, `upstream down`, nil, nil)

	reply := NewGateway(NewClient(testKey).WithBaseURL(server.URL)).Send(context.Background(), "t9", "hello")
	assert.Equal(t, FailureReplyText, reply.Text)

	var apiErr *APIError
	assert.True(t, errors.As(reply.Err, &apiErr))
}
