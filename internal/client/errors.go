package client

import (
	"errors"
	"fmt"
)

// ErrCredentialsNotConfigured means the provider client id or secret is
// missing from the environment. Fatal for payment operations, callers
// surface it as service-unavailable.
var ErrCredentialsNotConfigured = errors.New("paxos credentials not configured")

// AuthError is a non-success response from the provider token endpoint.
type AuthError struct {
	StatusCode int
	Body       string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("paxos token endpoint returned %d: %s", e.StatusCode, e.Body)
}

// RequestError is a transport or HTTP failure calling the provider payment
// API. The caller may retry the whole operation with fresh inputs; payment
// creation must never be replayed with the same ref_id.
type RequestError struct {
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("paxos request failed with %d: %s", e.StatusCode, e.Body)
}
