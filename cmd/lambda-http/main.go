package main

// Build the Lambda handler binary:
//   GOOS=linux GOARCH=arm64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"

	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/bootstrap"
	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/shared/config"
	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/shared/server/respond"
	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/shared/telemetry"
)

// proxy is satisfied by *ginadapter.GinLambdaV2.
type proxy interface {
	ProxyWithContext(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error)
}

var (
	initOnce sync.Once
	initErr  error
	api      proxy
)

func initApp() {
	app, err := bootstrap.Build(context.Background(), config.Load())
	if err != nil {
		initErr = err
		return
	}
	api = ginadapter.NewV2(app.Router)
}

func handler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	initOnce.Do(initApp)
	if initErr != nil {
		telemetry.Error("lambda.http.bootstrap_failed", map[string]any{"error": initErr})
		return errorResponse(http.StatusInternalServerError, "bootstrap_failed", "service is not configured"), nil
	}
	return serve(ctx, api, req)
}

// serve forwards req to the router, answering 503 while no router exists.
func serve(ctx context.Context, p proxy, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	if p == nil {
		return errorResponse(http.StatusServiceUnavailable, "not_ready", "router not initialized"), nil
	}
	if req.Headers == nil {
		req.Headers = map[string]string{}
	}
	if lc, ok := lambdacontext.FromContext(ctx); ok && req.Headers["x-request-id"] == "" {
		req.Headers["x-request-id"] = lc.AwsRequestID
	}
	return p.ProxyWithContext(ctx, req)
}

func errorResponse(status int, code, message string) events.APIGatewayV2HTTPResponse {
	body, _ := json.Marshal(respond.ErrorResponse{Error: respond.ErrorBody{Code: code, Message: message}})
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Body:       string(body),
		Headers:    map[string]string{"Content-Type": "application/json"},
	}
}

func main() {
	lambda.Start(handler)
}
