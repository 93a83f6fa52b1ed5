package results

import "context"

// Repo persists extracted tables.
type Repo interface {
	// Save upserts records keyed by invocation, segment and field.
	Save(ctx context.Context, records []Record) error
	// ListByInput returns records for an input document, newest job first, then by segment and field.
	ListByInput(ctx context.Context, inputURI string) ([]Record, error)
}
