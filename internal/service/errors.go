package service

import (
	"errors"
	"strings"
)

// ErrPaymentNotFound means the provider has no payment for the requested
// refId. A normal negative result, mapped to 404 by the handler.
var ErrPaymentNotFound = errors.New("payment not found")

// ValidationError collects one message per invalid field of a create-payment
// request. Caller input error, mapped to 400.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "invalid payment request: " + strings.Join(e.Messages, "; ")
}
