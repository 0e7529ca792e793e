// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"errors"
	"net"
	"net/http"
)

// =============================================================================
// ERROR HINTS
// =============================================================================

// ErrorCategory groups completion failures for display.
type ErrorCategory string

const (
	CategoryConfig     ErrorCategory = "Config"
	CategoryPermission ErrorCategory = "Permission"
	CategoryModel      ErrorCategory = "Model"
	CategoryRateLimit  ErrorCategory = "Rate limit"
	CategoryNetwork    ErrorCategory = "Network"
	CategoryService    ErrorCategory = "Service"
	CategoryUnknown    ErrorCategory = "Error"
)

// Hint is a short explanation of a failed completion with a suggested fix.
type Hint struct {
	Category   ErrorCategory
	Suggestion string
}

// String formats the hint for a single status line.
func (h Hint) String() string {
	if h.Suggestion == "" {
		return string(h.Category)
	}
	return string(h.Category) + ": " + h.Suggestion
}

// HintFor classifies err. Sentinel errors are checked first, then HTTP
// status, then transport errors. A nil error yields the zero Hint.
func HintFor(err error) Hint {
	if err == nil {
		return Hint{}
	}

	var apiErr *APIError
	var netErr net.Error
	switch {
	case errors.Is(err, ErrNotConfigured):
		return Hint{CategoryConfig, "set cloud.api_key or CHATBOX_API_KEY"}
	case errors.Is(err, ErrAuthFailed):
		return Hint{CategoryPermission, "the API key was rejected, check cloud.api_key"}
	case errors.Is(err, ErrModelNotFound):
		return Hint{CategoryModel, "check cloud.model"}
	case errors.Is(err, ErrRateLimited):
		return Hint{CategoryRateLimit, "wait a moment before sending again"}
	case errors.Is(err, ErrNoChoices):
		return Hint{CategoryService, "the service returned no reply"}
	case errors.As(err, &apiErr):
		if apiErr.Status >= http.StatusInternalServerError {
			return Hint{CategoryService, "the completion service is unavailable, try again later"}
		}
		return Hint{CategoryService, apiErr.Message}
	case errors.As(err, &netErr):
		if netErr.Timeout() {
			return Hint{CategoryNetwork, "the request timed out"}
		}
		return Hint{CategoryNetwork, "check your connection or cloud.base_url"}
	}
	return Hint{Category: CategoryUnknown}
}
