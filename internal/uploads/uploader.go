package uploads

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/shared/storage/object"
	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/shared/telemetry"
	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/shared/util"
)

// UploaderConfig places uploaded reports where the storage notification picks them up.
type UploaderConfig struct {
	Bucket      string
	Prefix      string
	Suffixes    []string
	MaxPDFPages int
}

// Skipped is a local file that was not uploaded.
type Skipped struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Summary lists what an upload run did.
type Summary struct {
	Uploaded []string  `json:"uploaded"`
	Skipped  []Skipped `json:"skipped,omitempty"`
}

// Uploader copies local report files into the input prefix of the document bucket.
type Uploader struct {
	store object.Store
	cfg   UploaderConfig
}

// NewUploader builds an Uploader writing through store.
func NewUploader(store object.Store, cfg UploaderConfig) *Uploader {
	return &Uploader{store: store, cfg: cfg}
}

// UploadDir uploads every regular file directly inside dir. Files with rejected
// suffixes or invalid PDFs are skipped; storage failures abort the run.
func (u *Uploader) UploadDir(ctx context.Context, dir string) (Summary, error) {
	if strings.TrimSpace(u.cfg.Bucket) == "" {
		return Summary{}, errors.New("upload: bucket is required")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Summary{}, fmt.Errorf("read dir=%s: %w", dir, err)
	}

	var summary Summary
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if !entry.Type().IsRegular() {
			continue
		}
		p := filepath.Join(dir, entry.Name())
		uri, err := u.UploadFile(ctx, p)
		if err != nil {
			if rejected(err) {
				summary.Skipped = append(summary.Skipped, Skipped{Path: p, Reason: err.Error()})
				telemetry.Warn("uploads.file.skipped", map[string]any{"path": p, "reason": err})
				continue
			}
			return summary, err
		}
		summary.Uploaded = append(summary.Uploaded, uri)
		telemetry.Info("uploads.file.uploaded", map[string]any{"path": p, "uri": uri})
	}
	return summary, nil
}

// UploadFile validates one local file and stores it under the input prefix.
func (u *Uploader) UploadFile(ctx context.Context, p string) (string, error) {
	name, err := util.SanitizeFileName(filepath.Base(p))
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, p)
	}
	if !acceptsSuffix(u.cfg.Suffixes, name) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, name)
	}

	data, err := os.ReadFile(p)
	if err != nil {
		return "", fmt.Errorf("read file=%s: %w", p, err)
	}
	contentType := ContentType(name, data)
	if contentType == mimePDF {
		if _, err := checkPDF(name, data, u.cfg.MaxPDFPages); err != nil {
			return "", err
		}
	}

	uri := object.URI(u.cfg.Bucket, u.cfg.Prefix, name)
	if _, err := u.store.Put(ctx, uri, contentType, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("upload file=%s: %w", p, err)
	}
	return uri, nil
}

// List returns the input documents already under the prefix that would start a job.
func (u *Uploader) List(ctx context.Context) ([]string, error) {
	lister, ok := u.store.(object.Lister)
	if !ok {
		return nil, ErrListUnsupported
	}
	all, err := lister.List(ctx, object.URI(u.cfg.Bucket, u.cfg.Prefix)+"/")
	if err != nil {
		return nil, err
	}
	var out []string
	for _, uri := range all {
		if acceptsSuffix(u.cfg.Suffixes, uri) {
			out = append(out, uri)
		}
	}
	sort.Strings(out)
	return out, nil
}

func acceptsSuffix(suffixes []string, name string) bool {
	if len(suffixes) == 0 {
		return true
	}
	ext := strings.ToLower(path.Ext(name))
	for _, s := range suffixes {
		if ext == strings.ToLower(s) {
			return true
		}
	}
	return false
}

func rejected(err error) bool {
	var limitErr PageLimitError
	var pdfErr InvalidPDFError
	return errors.Is(err, ErrUnsupportedType) || errors.As(err, &limitErr) || errors.As(err, &pdfErr)
}
