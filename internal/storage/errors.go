// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

// =============================================================================
// ERROR TYPES
// =============================================================================

// ErrThreadNotFound is returned when a thread id is not in the index.
// Use errors.Is(err, ErrThreadNotFound) to check for this error.
var ErrThreadNotFound = &StoreError{Message: "thread not found"}

// ErrInvalidRole is returned when appending a message whose sender is not
// "user" or "assistant".
var ErrInvalidRole = &StoreError{Message: "invalid message role"}

// ErrInvalidThreadID is returned for an id that cannot name a thread key.
var ErrInvalidThreadID = &StoreError{Message: "invalid thread id"}

// StoreError represents a thread store error.
// It implements the error interface and can be compared using errors.Is.
type StoreError struct {
	Message string
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return e.Message
}

// Is implements errors.Is support for comparing store errors.
func (e *StoreError) Is(target error) bool {
	t, ok := target.(*StoreError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}
