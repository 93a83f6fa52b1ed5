package local

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/shared/storage/object"
)

func TestPutThenOpen(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()

	if _, err := store.Put(ctx, "s3://docs/output/job/job_metadata.json", "application/json", strings.NewReader(`{"a":1}`)); err != nil {
		t.Fatalf("Put: %v", err)
	}

	data, err := object.ReadAll(ctx, store, "s3://docs/output/job/job_metadata.json", 1024)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(data) != `{"a":1}` {
		t.Fatalf("unexpected data %q", data)
	}
}

func TestReadAllEnforcesLimit(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()
	if _, err := store.Put(ctx, "s3://docs/big.json", "application/json", strings.NewReader(strings.Repeat("x", 64))); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := object.ReadAll(ctx, store, "s3://docs/big.json", 16); err == nil {
		t.Fatalf("expected size limit error")
	}
}

func TestRejectsTraversal(t *testing.T) {
	store := New(t.TempDir())
	if _, err := store.Open(context.Background(), "s3://docs/../../etc/passwd"); err == nil {
		t.Fatalf("expected traversal to be rejected")
	}
}

func TestOpenMissingObject(t *testing.T) {
	store := New(t.TempDir())
	body, err := store.Open(context.Background(), "s3://docs/missing.json")
	if err == nil {
		_, _ = io.ReadAll(body)
		body.Close()
		t.Fatalf("expected error for missing object")
	}
}

func TestListFiltersByPrefix(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()
	for _, uri := range []string{"s3://docs/reports/b.pdf", "s3://docs/reports/a.pdf", "s3://docs/output/x.json"} {
		if _, err := store.Put(ctx, uri, "application/octet-stream", strings.NewReader("x")); err != nil {
			t.Fatalf("Put %s: %v", uri, err)
		}
	}

	got, err := store.List(ctx, "s3://docs/reports/")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[0] != "s3://docs/reports/a.pdf" || got[1] != "s3://docs/reports/b.pdf" {
		t.Fatalf("unexpected listing %v", got)
	}

	empty, err := store.List(ctx, "s3://missing/")
	if err != nil || len(empty) != 0 {
		t.Fatalf("missing bucket should list nothing, got %v, %v", empty, err)
	}
}
