package results

import (
	"time"

	"github.com/google/uuid"
)

// Record is one extracted table persisted for later retrieval.
type Record struct {
	ID            string    `json:"id"`
	InvocationArn string    `json:"invocationArn"`
	InputURI      string    `json:"inputUri"`
	SegmentIndex  int       `json:"segmentIndex"`
	Field         string    `json:"field"`
	Blueprint     string    `json:"blueprint,omitempty"`
	Confidence    *float64  `json:"confidence,omitempty"`
	Columns       []string  `json:"columns"`
	Rows          [][]any   `json:"rows"`
	CreatedAt     time.Time `json:"createdAt"`
}

// RecordsFromSegment turns each table of seg into a Record.
func RecordsFromSegment(invocationArn, inputURI string, seg Segment, now time.Time) []Record {
	records := make([]Record, 0, len(seg.Tables))
	for _, table := range seg.Tables {
		records = append(records, Record{
			ID:            uuid.NewString(),
			InvocationArn: invocationArn,
			InputURI:      inputURI,
			SegmentIndex:  seg.Index,
			Field:         table.Field,
			Blueprint:     seg.Summary.MatchedBlueprintName,
			Confidence:    seg.Summary.Confidence,
			Columns:       table.Columns,
			Rows:          table.Rows,
			CreatedAt:     now.UTC(),
		})
	}
	return records
}

// Table returns the record's data as a Table.
func (r Record) Table() Table {
	return Table{Field: r.Field, Columns: r.Columns, Rows: r.Rows}
}
