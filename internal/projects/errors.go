package projects

import "errors"

// ErrInvalidConfiguration indicates a project cannot be created from the given inputs.
var ErrInvalidConfiguration = errors.New("invalid project configuration")

// RemoteServiceError wraps a failed list or create call.
type RemoteServiceError struct {
	Op      string
	Project string
	Code    string
	Message string
	Err     error
}

func (e RemoteServiceError) Error() string {
	msg := e.Op + " project " + e.Project
	if e.Code != "" {
		msg += ": " + e.Code
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

func (e RemoteServiceError) Unwrap() error { return e.Err }
