// Package awserr pulls the remote error code and message out of AWS SDK failures.
package awserr

import (
	"errors"

	"github.com/aws/smithy-go"
)

// Detail returns the service error code and message carried by err, if any.
// Errors that did not come from a service response report an empty code and err.Error() as message.
func Detail(err error) (code, message string) {
	if err == nil {
		return "", ""
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode(), apiErr.ErrorMessage()
	}
	return "", err.Error()
}

// IsCode reports whether err is a service error with one of the given codes.
func IsCode(err error, codes ...string) bool {
	code, _ := Detail(err)
	if code == "" {
		return false
	}
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}
