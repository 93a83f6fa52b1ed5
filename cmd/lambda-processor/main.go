package main

// Build the Lambda handler binary:
//   GOOS=linux GOARCH=arm64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-processor

import (
	"context"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"

	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/bootstrap"
	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/orchestrator"
	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/shared/config"
	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/shared/telemetry"
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

type eventHandler interface {
	Handle(ctx context.Context, requestID string, event events.S3Event) orchestrator.Result
}

func handler(ctx context.Context, event events.S3Event) (orchestrator.Result, error) {
	initOnce.Do(initApp)
	if initErr != nil {
		telemetry.Error("lambda.processor.bootstrap_failed", map[string]any{"error": initErr})
		return orchestrator.Result{Status: orchestrator.StatusError, Detail: "bootstrap failed"}, nil
	}
	return handle(ctx, app.Orchestrator, event), nil
}

func handle(ctx context.Context, h eventHandler, event events.S3Event) orchestrator.Result {
	requestID := ""
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		requestID = lc.AwsRequestID
	}
	res := h.Handle(ctx, requestID, event)
	telemetry.Info("lambda.processor.result", map[string]any{
		"request_id": requestID,
		"status":     res.Status,
		"records":    len(res.Records),
		"detail":     res.Detail,
	})
	return res
}

func main() {
	lambda.Start(handler)
}
