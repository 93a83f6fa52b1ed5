package blueprints

import "errors"

// ErrInvalidName indicates a blueprint name that cannot map to a schema file.
var ErrInvalidName = errors.New("invalid blueprint name")

// SchemaNotFoundError indicates no schema document exists for a blueprint name.
type SchemaNotFoundError struct {
	Name string
	Path string
}

func (e SchemaNotFoundError) Error() string {
	return "schema not found for blueprint " + e.Name + " (" + e.Path + ")"
}

// ProvisioningError carries the detail of a rejected registration or lookup.
type ProvisioningError struct {
	Name    string
	Op      string
	Code    string
	Message string
	Err     error
}

func (e ProvisioningError) Error() string {
	msg := e.Op + " blueprints"
	if e.Name != "" {
		msg = e.Op + " blueprint " + e.Name
	}
	if e.Code != "" {
		msg += ": " + e.Code
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

func (e ProvisioningError) Unwrap() error { return e.Err }
