package results

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func sampleRecords(now time.Time) []Record {
	confidence := 0.91
	return RecordsFromSegment("arn:job", "s3://docs/reports/a.pdf", Segment{
		Index:   0,
		Summary: Summary{MatchedBlueprintName: "well-report", Confidence: &confidence},
		Tables: []Table{
			{Field: "casing", Columns: []string{"size", "depth"}, Rows: [][]any{{"7", json.Number("8400")}}},
		},
	}, now)
}

func TestMemoryRepoUpsertsByKey(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	now := time.Now().UTC()

	first := sampleRecords(now)
	if err := repo.Save(ctx, first); err != nil {
		t.Fatalf("Save: %v", err)
	}
	second := sampleRecords(now)
	second[0].Rows = [][]any{{"9 5/8", json.Number("2150")}}
	if err := repo.Save(ctx, second); err != nil {
		t.Fatalf("Save again: %v", err)
	}

	got, err := repo.ListByInput(ctx, "s3://docs/reports/a.pdf")
	if err != nil {
		t.Fatalf("ListByInput: %v", err)
	}
	if len(got) != 1 || got[0].ID != first[0].ID || got[0].Rows[0][0] != "9 5/8" {
		t.Fatalf("unexpected records: %+v", got)
	}
	if _, err := repo.ListByInput(ctx, "s3://docs/reports/other.pdf"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoSaveUpserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	records := sampleRecords(time.Now().UTC())
	rec := records[0]

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO extraction_tables").
		WithArgs(
			rec.ID,
			rec.InvocationArn,
			rec.InputURI,
			rec.SegmentIndex,
			rec.Field,
			rec.Blueprint,
			0.91,
			[]byte(`["size","depth"]`),
			[]byte(`[["7",8400]]`),
			rec.CreatedAt,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	if err := repo.Save(context.Background(), records); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoSaveRollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO extraction_tables").WillReturnError(errors.New("connection lost"))
	mock.ExpectRollback()

	if err := (&PGRepo{DB: db}).Save(context.Background(), sampleRecords(time.Now())); err == nil {
		t.Fatalf("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoListByInputDecodesNumbers(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "invocation_arn", "input_uri", "segment_index", "field", "blueprint", "confidence", "columns", "rows", "created_at"}).
		AddRow("rec-1", "arn:job", "s3://docs/reports/a.pdf", 0, "casing", "well-report", nil, []byte(`["size","depth"]`), []byte(`[["7",8400]]`), created)
	mock.ExpectQuery("SELECT id, invocation_arn").WithArgs("s3://docs/reports/a.pdf").WillReturnRows(rows)

	got, err := (&PGRepo{DB: db}).ListByInput(context.Background(), "s3://docs/reports/a.pdf")
	if err != nil {
		t.Fatalf("ListByInput: %v", err)
	}
	if len(got) != 1 || got[0].Confidence != nil || got[0].Rows[0][1] != json.Number("8400") {
		t.Fatalf("unexpected records: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoListByInputEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectQuery("SELECT id, invocation_arn").WillReturnRows(sqlmock.NewRows([]string{"id"}))
	if _, err := (&PGRepo{DB: db}).ListByInput(context.Background(), "s3://docs/x.pdf"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
