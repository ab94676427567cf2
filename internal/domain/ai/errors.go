package ai

import "errors"

// ErrQuotaExceeded indicates the AI provider returned a quota/limit error (HTTP 429 or similar).
var ErrQuotaExceeded = errors.New("ai quota exceeded")

// ErrNotConfigured means no provider key was supplied.
var ErrNotConfigured = errors.New("ai client not configured")

// ErrEmptyResponse means the provider answered without any text.
var ErrEmptyResponse = errors.New("ai returned an empty response")
