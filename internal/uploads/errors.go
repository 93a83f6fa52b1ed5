package uploads

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedType = errors.New("unsupported document type")
	ErrListUnsupported = errors.New("object store cannot list")
)

// PageLimitError reports a PDF with more pages than the service accepts.
type PageLimitError struct {
	Name  string
	Pages int
	Limit int
}

func (e PageLimitError) Error() string {
	return fmt.Sprintf("%s has %d pages, limit is %d", e.Name, e.Pages, e.Limit)
}

// InvalidPDFError reports a PDF that could not be parsed.
type InvalidPDFError struct {
	Name string
	Err  error
}

func (e InvalidPDFError) Error() string {
	return fmt.Sprintf("invalid pdf %s: %v", e.Name, e.Err)
}

func (e InvalidPDFError) Unwrap() error { return e.Err }
