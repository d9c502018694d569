package oracle

import "errors"

// ErrTimeout indicates the oracle call timed out; retried with backoff, then
// degraded to a zero-confidence result.
var ErrTimeout = errors.New("oracle timeout")

// ErrMalformedResponse indicates the oracle returned output that could not be
// parsed into the expected shape.
var ErrMalformedResponse = errors.New("oracle returned malformed response")

// ErrQuotaExceeded indicates the provider returned a quota/limit error (HTTP 429 or similar).
var ErrQuotaExceeded = errors.New("oracle quota exceeded")
