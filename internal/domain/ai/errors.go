package ai

import "errors"

// ErrModelUnavailable covers any failed model call: transport, timeout, non-2xx, empty choices.
var ErrModelUnavailable = errors.New("model unavailable")

// ErrQuotaExceeded indicates the AI provider returned a quota/limit error (HTTP 429 or similar).
var ErrQuotaExceeded = errors.New("ai quota exceeded")
