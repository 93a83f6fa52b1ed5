package main

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/jobs"
	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/shared/config"
	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/tracker"
)

type fakeSQS struct {
	mu         sync.Mutex
	batches    [][]sqstypes.Message
	visibility int32
	onDrained  func()
	deleted    []string
	failures   []error
	receives   int
}

func (f *fakeSQS) ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	_ = optFns
	f.mu.Lock()
	defer f.mu.Unlock()
	f.visibility = params.VisibilityTimeout
	f.receives++
	if len(f.failures) > 0 {
		err := f.failures[0]
		f.failures = f.failures[1:]
		return nil, err
	}
	if len(f.batches) == 0 {
		if f.onDrained != nil {
			f.onDrained()
		}
		return nil, ctx.Err()
	}
	batch := f.batches[0]
	f.batches = f.batches[1:]
	return &sqs.ReceiveMessageOutput{Messages: batch}, nil
}

func (f *fakeSQS) DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	_ = ctx
	_ = optFns
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, aws.ToString(params.ReceiptHandle))
	return &sqs.DeleteMessageOutput{}, nil
}

type fakeHandler struct {
	err error
}

func (f fakeHandler) HandleMessage(ctx context.Context, body string) error {
	_ = ctx
	_ = body
	return f.err
}

func TestWorkerDeleteDecisions(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantDelete bool
	}{
		{name: "tracked", wantDelete: true},
		{name: "timeout is retried", err: tracker.ErrTrack{InvocationArn: "arn:job", Err: jobs.TimeoutError{InvocationArn: "arn:job"}}},
		{name: "storage failure is retried", err: tracker.ErrTrack{InvocationArn: "arn:job", Err: errors.New("db down")}},
		{name: "failed job is dropped", err: tracker.ErrTrack{InvocationArn: "arn:job", Err: jobs.JobFailedError{InvocationArn: "arn:job"}}, wantDelete: true},
		{name: "invalid json is dropped", err: tracker.ErrDecode{Err: errors.New("unexpected EOF")}, wantDelete: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeSQS{}
			msg := sqstypes.Message{
				MessageId:     aws.String("m1"),
				ReceiptHandle: aws.String("r1"),
				Body:          aws.String(`{"invocationArn":"arn:job"}`),
				Attributes:    map[string]string{"ApproximateReceiveCount": "2"},
			}

			handleMessage(context.Background(), client, "queue", fakeHandler{err: tt.err}, msg)

			if got := len(client.deleted) == 1; got != tt.wantDelete {
				t.Fatalf("deleted = %v, want %v", client.deleted, tt.wantDelete)
			}
		})
	}
}

type bodyHandler struct {
	fail map[string]error
}

func (h bodyHandler) HandleMessage(_ context.Context, body string) error {
	return h.fail[body]
}

func TestRunHandlesBatchesUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	msg := func(id, body string) sqstypes.Message {
		return sqstypes.Message{MessageId: aws.String(id), ReceiptHandle: aws.String("r-" + id), Body: aws.String(body)}
	}
	client := &fakeSQS{
		batches: [][]sqstypes.Message{
			{msg("1", "ok"), msg("2", "retry")},
			{msg("3", "ok")},
		},
		onDrained: cancel,
	}
	h := bodyHandler{fail: map[string]error{
		"retry": tracker.ErrTrack{InvocationArn: "arn:job", Err: jobs.TimeoutError{InvocationArn: "arn:job"}},
	}}

	run(ctx, client, h, options{queueURL: "queue", concurrency: 2, visibility: 360, shutdownTimeout: time.Second})

	sort.Strings(client.deleted)
	if strings.Join(client.deleted, ",") != "r-1,r-3" {
		t.Fatalf("deleted = %v", client.deleted)
	}
	if client.visibility != 360 {
		t.Fatalf("visibility = %d", client.visibility)
	}
}

func TestRunBacksOffAfterReceiveFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := &fakeSQS{
		batches: [][]sqstypes.Message{
			{{MessageId: aws.String("1"), ReceiptHandle: aws.String("r-1"), Body: aws.String("ok")}},
		},
		onDrained: cancel,
	}
	client.failures = []error{errors.New("AccessDenied"), errors.New("AccessDenied")}

	start := time.Now()
	run(ctx, client, bodyHandler{}, options{queueURL: "queue", concurrency: 1, shutdownTimeout: time.Second, receiveBackoff: 20 * time.Millisecond})

	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Fatalf("run returned after %v, want a pause after each failed receive", elapsed)
	}
	if client.receives != 4 {
		t.Fatalf("receives = %d, want 4", client.receives)
	}
	if strings.Join(client.deleted, ",") != "r-1" {
		t.Fatalf("deleted = %v", client.deleted)
	}
}

func TestRunStopsBackingOffWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	client := &fakeSQS{failures: []error{errors.New("AccessDenied")}}

	time.AfterFunc(20*time.Millisecond, cancel)
	start := time.Now()
	run(ctx, client, bodyHandler{}, options{queueURL: "queue", concurrency: 1, shutdownTimeout: time.Second, receiveBackoff: time.Minute})

	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Fatalf("run kept sleeping %v after cancel", elapsed)
	}
	if client.receives != 1 {
		t.Fatalf("receives = %d, want 1", client.receives)
	}
}

func TestOptionsFrom(t *testing.T) {
	t.Setenv("BDA_SQS_VISIBILITY_TIMEOUT_SECONDS", "")
	t.Setenv("BDA_WORKER_CONCURRENCY", "0")

	if _, err := optionsFrom(config.Config{}); err == nil {
		t.Fatalf("expected missing queue url to fail")
	}

	opts, err := optionsFrom(config.Config{TrackingQueueURL: " https://sqs/q ", PollTimeout: 10 * time.Minute})
	if err != nil {
		t.Fatalf("optionsFrom: %v", err)
	}
	if opts.queueURL != "https://sqs/q" || opts.visibility != 720 || opts.concurrency != 1 || opts.receiveBackoff != defaultReceiveBackoff {
		t.Fatalf("opts = %+v", opts)
	}

	opts, _ = optionsFrom(config.Config{TrackingQueueURL: "q", PollTimeout: time.Minute})
	if opts.visibility != minVisibilitySeconds {
		t.Fatalf("visibility = %d, want floor %d", opts.visibility, minVisibilitySeconds)
	}

	t.Setenv("BDA_SQS_VISIBILITY_TIMEOUT_SECONDS", "99999")
	opts, _ = optionsFrom(config.Config{TrackingQueueURL: "q"})
	if opts.visibility != maxVisibilitySeconds {
		t.Fatalf("visibility = %d, want cap %d", opts.visibility, maxVisibilitySeconds)
	}
}

func TestReceiveCount(t *testing.T) {
	t.Parallel()

	if got := receiveCount(sqstypes.Message{Attributes: map[string]string{"ApproximateReceiveCount": "3"}}); got != 3 {
		t.Fatalf("receiveCount = %d", got)
	}
	if got := receiveCount(sqstypes.Message{}); got != 0 {
		t.Fatalf("receiveCount = %d", got)
	}
}
