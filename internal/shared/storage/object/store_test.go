package object

import (
	"errors"
	"testing"
)

func TestParseURI(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		uri     string
		want    Location
		wantErr bool
	}{
		{name: "bucket and key", uri: "s3://docs/reports/a.pdf", want: Location{Bucket: "docs", Key: "reports/a.pdf"}},
		{name: "bucket only", uri: "s3://docs", want: Location{Bucket: "docs"}},
		{name: "trailing slash", uri: "s3://docs/output/", want: Location{Bucket: "docs", Key: "output/"}},
		{name: "spaces kept in key", uri: "s3://docs/reports/well report.pdf", want: Location{Bucket: "docs", Key: "reports/well report.pdf"}},
		{name: "wrong scheme", uri: "https://docs/a.pdf", wantErr: true},
		{name: "no bucket", uri: "s3:///a.pdf", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseURI(tt.uri)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidURI) {
					t.Fatalf("ParseURI(%q) err = %v, want ErrInvalidURI", tt.uri, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseURI(%q): %v", tt.uri, err)
			}
			if got != tt.want {
				t.Fatalf("ParseURI(%q) = %+v, want %+v", tt.uri, got, tt.want)
			}
		})
	}
}

func TestURIJoinsWithoutDoubleSlashes(t *testing.T) {
	t.Parallel()

	if got := URI("docs", "output/", "/job-1/", "job_metadata.json"); got != "s3://docs/output/job-1/job_metadata.json" {
		t.Fatalf("URI = %q", got)
	}
	if got := URI("docs"); got != "s3://docs" {
		t.Fatalf("URI bucket only = %q", got)
	}
	if got := JoinKey("", "reports", ""); got != "reports" {
		t.Fatalf("JoinKey = %q", got)
	}
}
