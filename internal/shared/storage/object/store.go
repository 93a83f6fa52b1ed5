package object

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Scheme is the only URI scheme the stores address.
const Scheme = "s3"

// ErrInvalidURI is returned for locations not in scheme://bucket/key form.
var ErrInvalidURI = errors.New("invalid object uri")

// Store reads and writes objects addressed by s3://bucket/key URIs.
type Store interface {
	Open(ctx context.Context, uri string) (io.ReadCloser, error)
	Put(ctx context.Context, uri string, contentType string, r io.Reader) (int64, error)
}

// Lister enumerates object URIs under a prefix URI in key order.
type Lister interface {
	List(ctx context.Context, prefixURI string) ([]string, error)
}

// Location is a parsed object address.
type Location struct {
	Bucket string
	Key    string
}

// ParseURI splits an s3://bucket/key URI. The key may be empty for prefix-only URIs.
func ParseURI(uri string) (Location, error) {
	raw := strings.TrimSpace(uri)
	rest, ok := strings.CutPrefix(raw, Scheme+"://")
	if !ok {
		return Location{}, fmt.Errorf("%w: %q", ErrInvalidURI, uri)
	}
	bucket, key, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return Location{}, fmt.Errorf("%w: %q has no bucket", ErrInvalidURI, uri)
	}
	return Location{Bucket: bucket, Key: key}, nil
}

// URI renders the location back to s3://bucket/key form.
func (l Location) URI() string {
	if l.Key == "" {
		return Scheme + "://" + l.Bucket
	}
	return Scheme + "://" + l.Bucket + "/" + l.Key
}

// URI joins a bucket and key parts into an s3 URI without doubled slashes.
func URI(bucket string, parts ...string) string {
	return Location{Bucket: bucket, Key: JoinKey(parts...)}.URI()
}

// JoinKey joins key segments with single slashes, dropping empty segments.
func JoinKey(parts ...string) string {
	var out []string
	for _, p := range parts {
		if trimmed := strings.Trim(p, "/"); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return strings.Join(out, "/")
}

// ReadAll opens uri and reads at most limit bytes, failing when the object is larger.
func ReadAll(ctx context.Context, store Store, uri string, limit int64) ([]byte, error) {
	body, err := store.Open(ctx, uri)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read object uri=%s: %w", uri, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("object too large uri=%s: more than %d bytes", uri, limit)
	}
	return data, nil
}
