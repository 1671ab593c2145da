package domain

import "errors"

// ErrNotFound is returned when the upstream API reports that the requested
// event or band does not exist.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails a rule
// before any network call is made (e.g. search term too short, from date
// after to date).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrUnauthorized is returned when the upstream API rejects our credentials.
// It is never retried automatically.
// Handlers should map this to HTTP 401.
var ErrUnauthorized = errors.New("unauthorized")

// ErrUpstream is returned when the upstream API fails or answers with an
// unexpected status.
// Handlers should map this to HTTP 502 Bad Gateway.
var ErrUpstream = errors.New("upstream error")
