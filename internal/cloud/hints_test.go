// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHintFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCategory
	}{
		{"nil", nil, ""},
		{"not configured", ErrNotConfigured, CategoryConfig},
		{"auth wrapped", fmt.Errorf("%w: invalid key", ErrAuthFailed), CategoryPermission},
		{"model", ErrModelNotFound, CategoryModel},
		{"rate limited", handleErrorResponse(http.StatusTooManyRequests, nil), CategoryRateLimit},
		{"no choices", ErrNoChoices, CategoryService},
		{"server error", handleErrorResponse(http.StatusBadGateway, []byte("bad gateway")), CategoryService},
		{"unknown", errors.New("something odd"), CategoryUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HintFor(tt.err).Category)
		})
	}
}

func TestHintFor_Network(t *testing.T) {
	c := NewClient("key").WithBaseURL("http://127.0.0.1:1")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := c.Complete(ctx, "hello")
	if !assert.Error(t, err) {
		return
	}
	h := HintFor(err)
	assert.Equal(t, CategoryNetwork, h.Category)
	assert.Contains(t, h.String(), "cloud.base_url")
}

func TestHint_String(t *testing.T) {
	assert.Equal(t, "Model: check cloud.model", HintFor(ErrModelNotFound).String())
	assert.Equal(t, "Error", Hint{Category: CategoryUnknown}.String())
}
