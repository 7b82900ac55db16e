package domain

import (
	"fmt"
	"net/http"
)

// RemoteError is a failure reported by the inventory or identity service.
// Message is the collaborator's text, or "HTTP <status>" when it sent none.
type RemoteError struct {
	Status  int
	Message string
	Err     error
}

func NewRemoteError(status int, body string) *RemoteError {
	if body == "" {
		body = fmt.Sprintf("HTTP %d", status)
	}
	return &RemoteError{Status: status, Message: body}
}

// NewTransportError reports a collaborator that could not be reached at
// all. The cause stays reachable through errors.Is.
func NewTransportError(err error) *RemoteError {
	return &RemoteError{Status: http.StatusBadGateway, Message: err.Error(), Err: err}
}

func (e *RemoteError) Error() string {
	return e.Message
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// NotFound reports whether the remote side answered 404.
func (e *RemoteError) NotFound() bool {
	return e.Status == http.StatusNotFound
}
