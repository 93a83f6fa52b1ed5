package results

import (
	"errors"
	"strings"
)

// ErrNotFound indicates no persisted records matched.
var ErrNotFound = errors.New("not found")

// FieldNotFoundError indicates inference_result has no entry for Field.
type FieldNotFoundError struct {
	Field     string
	Available []string
}

func (e FieldNotFoundError) Error() string {
	msg := "field " + e.Field + " not found in inference_result"
	if len(e.Available) > 0 {
		msg += " (available: " + strings.Join(e.Available, ", ") + ")"
	}
	return msg
}

// MalformedManifestError indicates a document lacks the expected nested structure.
type MalformedManifestError struct {
	URI    string
	Reason string
	Err    error
}

func (e MalformedManifestError) Error() string {
	msg := "malformed manifest"
	if e.URI != "" {
		msg += " " + e.URI
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e MalformedManifestError) Unwrap() error { return e.Err }
