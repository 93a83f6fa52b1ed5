package tracker

import (
	"bytes"
	"context"
	"errors"
	"path"
	"strings"
	"time"

	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/jobs"
	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/queue"
	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/results"
	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/shared/metrics"
	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/shared/storage/object"
	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/shared/telemetry"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Waiter blocks until a job is terminal or its bound is reached.
type Waiter interface {
	Wait(ctx context.Context, h jobs.Handle) (jobs.Outcome, error)
}

// SegmentReader reads job output documents.
type SegmentReader interface {
	SegmentPaths(ctx context.Context, metadataURI string) ([]string, error)
	ReadSegment(ctx context.Context, index int, uri string, fields []string) (results.Segment, error)
}

// Config controls what a Tracker extracts and where it writes workbooks.
type Config struct {
	// Fields to extract; empty extracts every tabular field.
	Fields []string
	// ResultsPrefix is the key prefix for XLSX workbooks; empty disables them.
	ResultsPrefix string
}

// Report summarizes one tracked job.
type Report struct {
	InvocationArn string
	ManifestURI   string
	Segments      []results.Segment
	Records       int
	WorkbookURI   string
}

// Tracker follows a submitted job to completion and persists its tables.
type Tracker struct {
	waiter Waiter
	reader SegmentReader
	repo   results.Repo
	store  object.Store
	cfg    Config
	now    func() time.Time
}

// New builds a Tracker. store may be nil when cfg.ResultsPrefix is empty.
func New(waiter Waiter, reader SegmentReader, repo results.Repo, store object.Store, cfg Config) *Tracker {
	return &Tracker{
		waiter: waiter,
		reader: reader,
		repo:   repo,
		store:  store,
		cfg:    cfg,
		now:    time.Now,
	}
}

// Track waits for msg's job, then extracts, persists and optionally exports its tables.
func (t *Tracker) Track(ctx context.Context, msg queue.TrackMessage) (Report, error) {
	report := Report{InvocationArn: msg.InvocationArn}
	outcome, err := t.waiter.Wait(ctx, jobs.Handle{
		InvocationArn: msg.InvocationArn,
		InputURI:      msg.InputURI,
		OutputURI:     msg.OutputURI,
		ProjectArn:    msg.ProjectArn,
		Status:        jobs.StatusSubmitted,
	})
	if err != nil {
		return report, err
	}
	report.ManifestURI = outcome.ManifestURI
	if outcome.ManifestURI == "" {
		return report, results.MalformedManifestError{Reason: "succeeded job reported no output location"}
	}

	paths, err := t.reader.SegmentPaths(ctx, outcome.ManifestURI)
	if err != nil {
		return report, err
	}

	now := t.now()
	var records []results.Record
	var tables []results.Table
	for i, uri := range paths {
		seg, err := t.reader.ReadSegment(ctx, i, uri, t.cfg.Fields)
		if err != nil {
			return report, err
		}
		report.Segments = append(report.Segments, seg)
		records = append(records, results.RecordsFromSegment(msg.InvocationArn, msg.InputURI, seg, now)...)
		tables = append(tables, seg.Tables...)
		telemetry.Info("tracker.segment.read", map[string]any{
			"invocation_arn": msg.InvocationArn,
			"segment":        i,
			"blueprint":      seg.Summary.MatchedBlueprintName,
			"document_class": seg.Summary.DocumentClassType,
			"tables":         len(seg.Tables),
		})
	}

	if t.repo != nil && len(records) > 0 {
		if err := t.repo.Save(ctx, records); err != nil {
			return report, err
		}
		metrics.AddTablesPersisted(len(records))
	}
	report.Records = len(records)

	if t.cfg.ResultsPrefix != "" && t.store != nil && len(tables) > 0 {
		uri, err := t.writeWorkbook(ctx, msg.InputURI, tables)
		if err != nil {
			return report, err
		}
		report.WorkbookURI = uri
	}
	return report, nil
}

// HandleMessage parses a queue body and tracks it.
func (t *Tracker) HandleMessage(ctx context.Context, body string) error {
	if t == nil {
		return errors.New("tracker not configured")
	}
	msg, _, err := ParseMessage(body)
	if err != nil {
		return err
	}
	metrics.IncTrackingReceived()
	report, err := t.Track(ctx, msg)
	if err != nil {
		return ErrTrack{InvocationArn: msg.InvocationArn, RequestID: msg.RequestID, Err: err}
	}
	telemetry.Info("tracker.job.completed", map[string]any{
		"invocation_arn": msg.InvocationArn,
		"request_id":     msg.RequestID,
		"segments":       len(report.Segments),
		"records":        report.Records,
		"workbook_uri":   report.WorkbookURI,
	})
	return nil
}

func (t *Tracker) writeWorkbook(ctx context.Context, inputURI string, tables []results.Table) (string, error) {
	loc, err := object.ParseURI(inputURI)
	if err != nil {
		return "", err
	}
	data, err := results.WriteXLSX(tables)
	if err != nil {
		return "", err
	}
	base := strings.TrimSuffix(path.Base(loc.Key), path.Ext(loc.Key))
	uri := object.URI(loc.Bucket, t.cfg.ResultsPrefix, base+".xlsx")
	if _, err := t.store.Put(ctx, uri, xlsxContentType, bytes.NewReader(data)); err != nil {
		return "", err
	}
	return uri, nil
}

// Retryable reports whether a failed message should be redelivered. Jobs that failed
// remotely and messages or manifests that cannot be parsed never succeed on retry.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	var (
		empty     ErrEmptyBody
		decode    ErrDecode
		missing   ErrMissingInvocation
		failed    jobs.JobFailedError
		malformed results.MalformedManifestError
	)
	switch {
	case errors.As(err, &empty), errors.As(err, &decode), errors.As(err, &missing):
		return false
	case errors.As(err, &failed), errors.As(err, &malformed):
		return false
	default:
		return true
	}
}
