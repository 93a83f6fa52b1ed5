package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/bootstrap"
	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/shared/config"
	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/shared/metrics"
	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/shared/telemetry"
	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/tracker"
)

const (
	defaultWorkerConcurrency  = 4
	defaultShutdownTimeoutSec = 30
	defaultReceiveBackoff     = 2 * time.Second
	// SQS caps visibility at 12 hours.
	maxVisibilitySeconds = 12 * 60 * 60
	minVisibilitySeconds = 300
)

type options struct {
	queueURL        string
	concurrency     int
	visibility      int32
	shutdownTimeout time.Duration
	receiveBackoff  time.Duration
}

// optionsFrom derives worker settings from cfg and BDA_* overrides. The default
// visibility timeout outlasts one full bounded poll so a message is not redelivered
// while its job is still being waited on.
func optionsFrom(cfg config.Config) (options, error) {
	queueURL := strings.TrimSpace(cfg.TrackingQueueURL)
	if queueURL == "" {
		return options{}, errors.New("BDA_TRACKING_QUEUE_URL is required")
	}
	visibility := int(cfg.PollTimeout/time.Second) + 120
	visibility = envInt("BDA_SQS_VISIBILITY_TIMEOUT_SECONDS", visibility)
	visibility = min(max(visibility, minVisibilitySeconds), maxVisibilitySeconds)

	return options{
		queueURL:        queueURL,
		concurrency:     max(1, envInt("BDA_WORKER_CONCURRENCY", defaultWorkerConcurrency)),
		visibility:      int32(visibility),
		shutdownTimeout: time.Duration(envInt("BDA_SHUTDOWN_TIMEOUT_SECONDS", defaultShutdownTimeoutSec)) * time.Second,
		receiveBackoff:  defaultReceiveBackoff,
	}, nil
}

func main() {
	cfg := config.Load()
	opts, err := optionsFrom(cfg)
	if err != nil {
		telemetry.Error("worker.config.invalid", map[string]any{"error": err})
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Build(ctx, cfg)
	if err != nil {
		telemetry.Error("worker.bootstrap.failed", map[string]any{"error": err})
		os.Exit(1)
	}
	defer app.Close()

	run(ctx, app.SQS, app.Tracker, opts)
}

// run receives tracking messages until ctx ends, handling up to opts.concurrency at once,
// then waits up to opts.shutdownTimeout for in-flight messages.
func run(ctx context.Context, client sqsAPI, h messageHandler, opts options) {
	sem := make(chan struct{}, max(1, opts.concurrency))
	backoff := opts.receiveBackoff
	if backoff <= 0 {
		backoff = defaultReceiveBackoff
	}
	var wg sync.WaitGroup

	telemetry.Info("worker.started", map[string]any{
		"queue_url":          opts.queueURL,
		"concurrency":        opts.concurrency,
		"visibility_seconds": opts.visibility,
	})

receive:
	for ctx.Err() == nil {
		resp, err := client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(opts.queueURL),
			MaxNumberOfMessages: 10,
			WaitTimeSeconds:     20,
			VisibilityTimeout:   opts.visibility,
			MessageSystemAttributeNames: []sqstypes.MessageSystemAttributeName{
				sqstypes.MessageSystemAttributeNameApproximateReceiveCount,
			},
		})
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			telemetry.Warn("worker.receive.failed", map[string]any{"error": err, "backoff_ms": backoff.Milliseconds()})
			select {
			case <-ctx.Done():
				break receive
			case <-time.After(backoff):
			}
			continue
		}

		for _, msg := range resp.Messages {
			select {
			case <-ctx.Done():
				break receive
			case sem <- struct{}{}:
			}
			wg.Add(1)
			go func(m sqstypes.Message) {
				defer wg.Done()
				defer func() { <-sem }()
				handleMessage(ctx, client, opts.queueURL, h, m)
			}(msg)
		}
	}

	telemetry.Info("worker.shutdown", map[string]any{"timeout": opts.shutdownTimeout.String()})
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(opts.shutdownTimeout):
		telemetry.Warn("worker.shutdown.timeout", map[string]any{"timeout": opts.shutdownTimeout.String()})
	}
}

type sqsAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

type messageHandler interface {
	HandleMessage(ctx context.Context, body string) error
}

// handleMessage deletes the message once it is tracked or can never succeed; retryable
// failures stay on the queue until the visibility timeout redelivers them.
func handleMessage(ctx context.Context, client sqsAPI, queueURL string, h messageHandler, msg sqstypes.Message) {
	body := aws.ToString(msg.Body)
	err := h.HandleMessage(ctx, body)
	if err == nil {
		if deleteMessage(ctx, client, queueURL, msg) {
			telemetry.Info("worker.tracking.completed", baseFields(msg))
		}
		return
	}

	fields := baseFields(msg)
	fields["error"] = err
	meta := tracker.ComputeMeta(body)
	fields["body_len"] = meta.BodyLen
	if meta.BodySHA != "" {
		fields["body_sha256"] = meta.BodySHA
	}
	var trackErr tracker.ErrTrack
	if errors.As(err, &trackErr) {
		fields["invocation_arn"] = trackErr.InvocationArn
		fields["request_id"] = trackErr.RequestID
	}

	if tracker.Retryable(err) {
		telemetry.Warn("worker.tracking.retry", fields)
		return
	}
	telemetry.Error("worker.tracking.dropped", fields)
	if deleteMessage(ctx, client, queueURL, msg) {
		metrics.IncTrackingDropped()
	}
}

func deleteMessage(ctx context.Context, client sqsAPI, queueURL string, msg sqstypes.Message) bool {
	receipt := aws.ToString(msg.ReceiptHandle)
	if receipt == "" {
		fields := baseFields(msg)
		fields["error"] = "missing receipt handle"
		telemetry.Error("worker.tracking.delete_failed", fields)
		return false
	}
	if _, err := client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(queueURL),
		ReceiptHandle: aws.String(receipt),
	}); err != nil {
		fields := baseFields(msg)
		fields["error"] = err
		telemetry.Error("worker.tracking.delete_failed", fields)
		return false
	}
	return true
}

func baseFields(msg sqstypes.Message) map[string]any {
	return map[string]any{
		"sqs_message_id": aws.ToString(msg.MessageId),
		"receive_count":  receiveCount(msg),
	}
}

func receiveCount(msg sqstypes.Message) int {
	if msg.Attributes == nil {
		return 0
	}
	raw := msg.Attributes[string(sqstypes.MessageSystemAttributeNameApproximateReceiveCount)]
	if raw == "" {
		return 0
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return parsed
}

func envInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return val
}
