package main

// Build the Lambda handler binary:
//   GOOS=linux GOARCH=arm64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-tracker

import (
	"context"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/bootstrap"
	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/shared/config"
	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/shared/metrics"
	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/shared/telemetry"
	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/tracker"
)

var (
	initOnce sync.Once
	initErr  error
	app      *bootstrap.App
)

func initApp() {
	cfg := config.Load()
	built, err := bootstrap.Build(context.Background(), cfg)
	if err != nil {
		initErr = err
		return
	}
	app = built
}

type messageHandler interface {
	HandleMessage(ctx context.Context, body string) error
}

func handler(ctx context.Context, event events.SQSEvent) (events.SQSEventResponse, error) {
	initOnce.Do(initApp)
	if initErr != nil {
		telemetry.Error("lambda.tracker.bootstrap_failed", map[string]any{"error": initErr})
		failures := make([]events.SQSBatchItemFailure, 0, len(event.Records))
		for _, record := range event.Records {
			failures = append(failures, events.SQSBatchItemFailure{ItemIdentifier: record.MessageId})
		}
		return events.SQSEventResponse{BatchItemFailures: failures}, initErr
	}
	return processBatch(ctx, app.Tracker, event), nil
}

// processBatch reports retryable failures back to SQS; terminal ones are logged and dropped.
func processBatch(ctx context.Context, h messageHandler, event events.SQSEvent) events.SQSEventResponse {
	failures := make([]events.SQSBatchItemFailure, 0)
	for _, record := range event.Records {
		err := h.HandleMessage(ctx, record.Body)
		if err == nil {
			continue
		}
		fields := map[string]any{"sqs_message_id": record.MessageId, "error": err}
		if tracker.Retryable(err) {
			telemetry.Warn("lambda.tracker.retry", fields)
			failures = append(failures, events.SQSBatchItemFailure{ItemIdentifier: record.MessageId})
			continue
		}
		telemetry.Error("lambda.tracker.dropped", fields)
		metrics.IncTrackingDropped()
	}
	return events.SQSEventResponse{BatchItemFailures: failures}
}

func main() {
	lambda.Start(handler)
}
