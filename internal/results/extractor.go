package results

import (
	"context"
	"errors"

	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/shared/storage/object"
	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/shared/telemetry"
)

const maxDocumentBytes = 64 << 20

// Segment is one parsed custom output document.
type Segment struct {
	Index   int     `json:"index"`
	URI     string  `json:"uri"`
	Summary Summary `json:"summary"`
	Tables  []Table `json:"tables"`
}

// Extractor reads output documents from object storage.
type Extractor struct {
	store object.Store
}

// NewExtractor builds an Extractor over store.
func NewExtractor(store object.Store) *Extractor {
	return &Extractor{store: store}
}

// Extract reads the document at uri and returns inference_result.<field> as a table.
func (e *Extractor) Extract(ctx context.Context, uri, field string) (Table, error) {
	doc, err := object.ReadAll(ctx, e.store, uri, maxDocumentBytes)
	if err != nil {
		return Table{}, err
	}
	table, err := ExtractField(doc, field)
	return table, withURI(err, uri)
}

// SegmentPaths reads a job metadata document and returns its custom output paths.
func (e *Extractor) SegmentPaths(ctx context.Context, metadataURI string) ([]string, error) {
	doc, err := object.ReadAll(ctx, e.store, metadataURI, maxDocumentBytes)
	if err != nil {
		return nil, err
	}
	paths, err := SegmentOutputPaths(doc)
	return paths, withURI(err, metadataURI)
}

// ReadSegment summarizes one custom output and extracts fields from it. With no fields
// every tabular field is extracted; configured fields absent from this segment are skipped.
func (e *Extractor) ReadSegment(ctx context.Context, index int, uri string, fields []string) (Segment, error) {
	doc, err := object.ReadAll(ctx, e.store, uri, maxDocumentBytes)
	if err != nil {
		return Segment{}, err
	}
	summary, err := Summarize(doc)
	if err != nil {
		return Segment{}, withURI(err, uri)
	}
	if len(fields) == 0 {
		fields, err = TabularFields(doc)
		if err != nil {
			return Segment{}, withURI(err, uri)
		}
	}

	seg := Segment{Index: index, URI: uri, Summary: summary, Tables: []Table{}}
	for _, field := range fields {
		table, err := ExtractField(doc, field)
		var missing FieldNotFoundError
		if errors.As(err, &missing) {
			telemetry.Debug("results.segment.field_missing", map[string]any{
				"uri":   uri,
				"field": field,
			})
			continue
		}
		if err != nil {
			return Segment{}, withURI(err, uri)
		}
		seg.Tables = append(seg.Tables, table)
	}
	return seg, nil
}

func withURI(err error, uri string) error {
	var malformed MalformedManifestError
	if errors.As(err, &malformed) && malformed.URI == "" {
		malformed.URI = uri
		return malformed
	}
	return err
}
