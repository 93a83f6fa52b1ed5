package orchestrator

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/jobs"
	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/projects"
	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/queue"
	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/shared/metrics"
	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/shared/storage/object"
	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/shared/telemetry"
)

// ProjectFinder looks up an existing project without creating one.
type ProjectFinder interface {
	Find(ctx context.Context, name, stage string) (projects.Ref, bool, error)
}

// JobSubmitter starts one job per call.
type JobSubmitter interface {
	Submit(ctx context.Context, req jobs.SubmitRequest) (jobs.Handle, error)
}

// Waiter blocks until a job is terminal; used only in synchronous mode.
type Waiter interface {
	Wait(ctx context.Context, h jobs.Handle) (jobs.Outcome, error)
}

// Config is the orchestrator's explicit configuration.
type Config struct {
	ProjectName  string
	Stage        string
	OutputPrefix string
	Filter       Filter
	// WaitForCompletion polls each job inline instead of returning after acceptance.
	WaitForCompletion bool
}

// Orchestrator turns storage notifications into extraction jobs.
type Orchestrator struct {
	finder    ProjectFinder
	submitter JobSubmitter
	tracking  queue.Client
	waiter    Waiter
	cfg       Config
	now       func() time.Time
}

// New builds an Orchestrator. tracking and waiter may be nil.
func New(finder ProjectFinder, submitter JobSubmitter, tracking queue.Client, waiter Waiter, cfg Config) *Orchestrator {
	return &Orchestrator{
		finder:    finder,
		submitter: submitter,
		tracking:  tracking,
		waiter:    waiter,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Handle processes every record of event and aggregates the results.
func (o *Orchestrator) Handle(ctx context.Context, requestID string, event events.S3Event) Result {
	records, err := DecodeEvent(event)
	if err != nil {
		telemetry.Error("orchestrator.event.invalid", map[string]any{
			"request_id": requestID,
			"error":      err,
		})
		return Result{Status: StatusError, Detail: err.Error()}
	}
	return o.HandleRecords(ctx, requestID, records)
}

// HandleRecords processes already decoded records. The project is looked up once per call.
func (o *Orchestrator) HandleRecords(ctx context.Context, requestID string, records []Record) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			telemetry.Error("orchestrator.panic", map[string]any{
				"request_id": requestID,
				"panic":      fmt.Sprint(r),
				"stack":      string(debug.Stack()),
			})
			res = Result{Status: StatusError, Detail: fmt.Sprintf("internal error: %v", r)}
		}
	}()

	var (
		project  projects.Ref
		looked   bool
		found    bool
		findErr  error
		outcomes = make([]RecordResult, 0, len(records))
	)
	for _, rec := range records {
		metrics.IncEventsReceived()
		fields := map[string]any{"request_id": requestID, "bucket": rec.Bucket, "key": rec.Key}
		if !o.cfg.Filter.Match(rec.Key) {
			telemetry.Debug("orchestrator.record.ignored", fields)
			continue
		}
		if !looked {
			project, found, findErr = o.finder.Find(ctx, o.cfg.ProjectName, o.cfg.Stage)
			looked = true
		}
		outcomes = append(outcomes, o.processRecord(ctx, requestID, rec, project, found, findErr, fields))
	}
	return aggregate(outcomes)
}

func (o *Orchestrator) processRecord(ctx context.Context, requestID string, rec Record, project projects.Ref, found bool, findErr error, fields map[string]any) RecordResult {
	out := RecordResult{Bucket: rec.Bucket, Key: rec.Key}
	if findErr != nil {
		fields["error"] = findErr
		telemetry.Error("orchestrator.project.lookup_failed", fields)
		out.Status, out.Detail = StatusError, findErr.Error()
		return out
	}
	if !found {
		metrics.IncProjectNotFound()
		fields["project"] = o.cfg.ProjectName
		telemetry.Warn("orchestrator.project.not_found", fields)
		out.Status = StatusNotFound
		out.Detail = fmt.Sprintf("project %s not found in stage %s", o.cfg.ProjectName, o.cfg.Stage)
		return out
	}

	handle, err := o.submitter.Submit(ctx, jobs.SubmitRequest{
		Project:      project,
		InputURI:     object.URI(rec.Bucket, rec.Key),
		OutputPrefix: object.URI(rec.Bucket, o.cfg.OutputPrefix),
		Revision:     rec.Revision,
	})
	if err != nil {
		metrics.IncSubmissionFailed()
		fields["error"] = err
		telemetry.Error("orchestrator.record.submit_failed", fields)
		out.Status, out.Detail = StatusError, err.Error()
		return out
	}
	metrics.IncJobsSubmitted()
	out.InvocationArn = handle.InvocationArn
	fields["invocation_arn"] = handle.InvocationArn
	telemetry.Info("orchestrator.record.submitted", fields)

	if o.cfg.WaitForCompletion && o.waiter != nil {
		outcome, err := o.waiter.Wait(ctx, handle)
		if err != nil {
			fields["error"] = err
			telemetry.Error("orchestrator.record.wait_failed", fields)
			out.Status, out.Detail = StatusError, err.Error()
			return out
		}
		out.Status = StatusAccepted
		out.Detail = fmt.Sprintf("job %s %s manifest=%s", handle.InvocationArn, outcome.Status, outcome.ManifestURI)
		return out
	}

	o.enqueue(ctx, requestID, handle, fields)
	out.Status = StatusAccepted
	out.Detail = fmt.Sprintf("job %s started", handle.InvocationArn)
	return out
}

// enqueue hands the job to the tracker. Failure is logged only; the job already exists.
func (o *Orchestrator) enqueue(ctx context.Context, requestID string, handle jobs.Handle, fields map[string]any) {
	if o.tracking == nil {
		return
	}
	err := o.tracking.Send(ctx, queue.TrackMessage{
		InvocationArn: handle.InvocationArn,
		InputURI:      handle.InputURI,
		OutputURI:     handle.OutputURI,
		ProjectArn:    handle.ProjectArn,
		RequestID:     requestID,
		EnqueuedAt:    o.now().UTC().Format(time.RFC3339),
		Version:       queue.MessageVersion,
	})
	if err != nil {
		fields["error"] = err
		telemetry.Warn("orchestrator.tracking.enqueue_failed", fields)
	}
}
