package orchestrator

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-lambda-go/events"
)

const (
	eventSourceS3      = "aws:s3"
	objectCreatedEvent = "ObjectCreated:"
)

// ErrEmptyEvent indicates a notification with no records.
var ErrEmptyEvent = errors.New("event has no records")

// ErrUnsupportedEvent indicates a record that is not an object-created notification from S3.
var ErrUnsupportedEvent = errors.New("not an object-created notification")

// Record is one decoded object-created notification.
type Record struct {
	Bucket string
	Key    string
	// Revision is the object eTag, falling back to the event sequencer.
	Revision string
}

// DecodeEvent extracts every record of event with its key URL-decoded. Any record other
// than an S3 object-created notification fails the whole event.
func DecodeEvent(event events.S3Event) ([]Record, error) {
	if len(event.Records) == 0 {
		return nil, ErrEmptyEvent
	}
	out := make([]Record, 0, len(event.Records))
	for i, rec := range event.Records {
		if rec.EventSource != eventSourceS3 || !strings.HasPrefix(rec.EventName, objectCreatedEvent) {
			return nil, fmt.Errorf("record %d source=%q name=%q: %w", i, rec.EventSource, rec.EventName, ErrUnsupportedEvent)
		}
		bucket := strings.TrimSpace(rec.S3.Bucket.Name)
		if bucket == "" {
			return nil, fmt.Errorf("record %d: missing bucket name", i)
		}
		key, err := DecodeKey(rec.S3.Object.Key)
		if err != nil {
			return nil, fmt.Errorf("record %d bucket=%s: %w", i, bucket, err)
		}
		revision := strings.Trim(rec.S3.Object.ETag, `"`)
		if revision == "" {
			revision = rec.S3.Object.Sequencer
		}
		out = append(out, Record{Bucket: bucket, Key: key, Revision: revision})
	}
	return out, nil
}

// DecodeKey reverses the form encoding applied to keys in storage notifications.
func DecodeKey(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", errors.New("missing object key")
	}
	key, err := url.QueryUnescape(raw)
	if err != nil {
		return "", fmt.Errorf("decode key=%s: %w", raw, err)
	}
	return key, nil
}

// Filter mirrors the notification filter: keys must sit under Prefix and end in one of Suffixes.
type Filter struct {
	Prefix   string
	Suffixes []string
}

// Match reports whether key should start a job.
func (f Filter) Match(key string) bool {
	if f.Prefix != "" && !strings.HasPrefix(key, f.Prefix) {
		return false
	}
	if strings.HasSuffix(key, "/") {
		return false
	}
	if len(f.Suffixes) == 0 {
		return true
	}
	ext := strings.ToLower(path.Ext(key))
	for _, s := range f.Suffixes {
		if ext == strings.ToLower(s) {
			return true
		}
	}
	return false
}
