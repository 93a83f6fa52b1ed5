package jobs

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockdataautomationruntime"

	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/shared/awserr"
	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/shared/metrics"
	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/shared/telemetry"
)

const (
	defaultPollInterval = 10 * time.Second
	defaultPollTimeout  = 4 * time.Minute
)

// StatusAPI is the runtime call that reports job status.
type StatusAPI interface {
	GetDataAutomationStatus(ctx context.Context, params *bedrockdataautomationruntime.GetDataAutomationStatusInput, optFns ...func(*bedrockdataautomationruntime.Options)) (*bedrockdataautomationruntime.GetDataAutomationStatusOutput, error)
}

// PollerConfig bounds a wait.
type PollerConfig struct {
	Interval time.Duration
	// Timeout caps the wall-clock wait. Zero with MaxAttempts zero falls back to the default.
	Timeout time.Duration
	// MaxAttempts caps the number of status queries; zero means no count bound.
	MaxAttempts int
	// QueryRetries is how many consecutive failed queries are tolerated.
	QueryRetries int
}

// Poller queries job status until a terminal state or its bound.
type Poller struct {
	client StatusAPI
	cfg    PollerConfig
	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewPoller builds a Poller.
func NewPoller(client StatusAPI, cfg PollerConfig) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultPollInterval
	}
	if cfg.Timeout <= 0 && cfg.MaxAttempts <= 0 {
		cfg.Timeout = defaultPollTimeout
	}
	if cfg.QueryRetries < 0 {
		cfg.QueryRetries = 0
	}
	return &Poller{
		client: client,
		cfg:    cfg,
		now:    time.Now,
		sleep:  sleepContext,
	}
}

// Status performs one status query.
func (p *Poller) Status(ctx context.Context, invocationArn string) (Outcome, error) {
	out, err := p.client.GetDataAutomationStatus(ctx, &bedrockdataautomationruntime.GetDataAutomationStatusInput{
		InvocationArn: aws.String(invocationArn),
	})
	if err != nil {
		return Outcome{}, err
	}
	outcome := Outcome{
		InvocationArn: invocationArn,
		Status:        mapStatus(out.Status),
		RemoteStatus:  string(out.Status),
		ErrorType:     aws.ToString(out.ErrorType),
		ErrorMessage:  aws.ToString(out.ErrorMessage),
	}
	if out.OutputConfiguration != nil {
		outcome.ManifestURI = aws.ToString(out.OutputConfiguration.S3Uri)
	}
	return outcome, nil
}

// Wait polls h until it succeeds, fails, or the bound is reached. The first query is
// immediate; later queries are spaced by the configured interval.
func (p *Poller) Wait(ctx context.Context, h Handle) (Outcome, error) {
	start := p.now()
	var deadline time.Time
	if p.cfg.Timeout > 0 {
		deadline = start.Add(p.cfg.Timeout)
	}

	var (
		queries  int
		failures int
		last     = h.Status
	)
	defer func() {
		metrics.ObservePollDurationMs(float64(p.now().Sub(start).Milliseconds()))
	}()

	for {
		queries++
		outcome, err := p.Status(ctx, h.InvocationArn)
		switch {
		case err != nil:
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Outcome{}, ctxErr
			}
			failures++
			telemetry.Warn("jobs.poll.query_failed", map[string]any{
				"invocation_arn": h.InvocationArn,
				"failures":       failures,
				"error":          err,
			})
			if failures > p.cfg.QueryRetries || permanentQueryError(err) {
				return Outcome{}, PollingError{InvocationArn: h.InvocationArn, Failures: failures, Err: err}
			}
		default:
			failures = 0
			outcome.InputURI = h.InputURI
			last = outcome.Status
			switch outcome.Status {
			case StatusSucceeded:
				metrics.IncJobsSucceeded()
				telemetry.Info("jobs.poll.succeeded", map[string]any{
					"invocation_arn": h.InvocationArn,
					"manifest_uri":   outcome.ManifestURI,
					"queries":        queries,
				})
				return outcome, nil
			case StatusFailed:
				metrics.IncJobsFailed()
				return outcome, JobFailedError{
					InvocationArn: h.InvocationArn,
					ErrorType:     outcome.ErrorType,
					Message:       outcome.ErrorMessage,
				}
			}
			telemetry.Debug("jobs.poll.pending", map[string]any{
				"invocation_arn": h.InvocationArn,
				"status":         outcome.RemoteStatus,
				"queries":        queries,
			})
		}

		if p.exhausted(queries, deadline) {
			metrics.IncJobsTimedOut()
			return Outcome{}, TimeoutError{
				InvocationArn: h.InvocationArn,
				Queries:       queries,
				Elapsed:       p.now().Sub(start),
				LastStatus:    last,
			}
		}
		if err := p.sleep(ctx, p.cfg.Interval); err != nil {
			return Outcome{}, err
		}
	}
}

func (p *Poller) exhausted(queries int, deadline time.Time) bool {
	if p.cfg.MaxAttempts > 0 && queries >= p.cfg.MaxAttempts {
		return true
	}
	// A query that would start past the deadline is not attempted.
	return !deadline.IsZero() && p.now().Add(p.cfg.Interval).After(deadline)
}

func permanentQueryError(err error) bool {
	return awserr.IsCode(err, "ValidationException", "ResourceNotFoundException", "AccessDeniedException")
}

func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
