package queue

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

func TestDecodeMessageAcceptsPayload(t *testing.T) {
	got, err := DecodeMessage([]byte(`{"invocationArn":"arn:job","inputUri":"s3://docs/reports/a.pdf","outputUri":"s3://docs/output","version":1,"extra":"ignored"}`))
	if err != nil {
		t.Fatalf("decode message: %v", err)
	}
	want := TrackMessage{InvocationArn: "arn:job", InputURI: "s3://docs/reports/a.pdf", OutputURI: "s3://docs/output", Version: 1}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v want %+v", got, want)
	}
}

type fakeSender struct {
	inputs []*sqs.SendMessageInput
	err    error
}

func (f *fakeSender) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	_ = ctx
	_ = optFns
	f.inputs = append(f.inputs, params)
	if f.err != nil {
		return nil, f.err
	}
	return &sqs.SendMessageOutput{MessageId: aws.String("m1")}, nil
}

func TestSQSClientSend(t *testing.T) {
	sender := &fakeSender{}
	client, err := NewSQSClient(sender, " https://sqs.us-east-1.amazonaws.com/123/track ", 5000)
	if err != nil {
		t.Fatalf("NewSQSClient: %v", err)
	}

	msg := TrackMessage{InvocationArn: "arn:job", Version: MessageVersion}
	if err := client.Send(context.Background(), msg); err != nil {
		t.Fatalf("Send: %v", err)
	}
	in := sender.inputs[0]
	if aws.ToString(in.QueueUrl) != "https://sqs.us-east-1.amazonaws.com/123/track" || in.DelaySeconds != maxDelaySeconds {
		t.Fatalf("unexpected input: %+v", in)
	}
	decoded, err := DecodeMessage([]byte(aws.ToString(in.MessageBody)))
	if err != nil || decoded.InvocationArn != "arn:job" {
		t.Fatalf("unexpected body %q: %v", aws.ToString(in.MessageBody), err)
	}
}

func TestSQSClientErrors(t *testing.T) {
	if _, err := NewSQSClient(&fakeSender{}, "", 0); err == nil {
		t.Fatalf("expected error for empty queue url")
	}
	client, _ := NewSQSClient(&fakeSender{err: errors.New("throttled")}, "q", 0)
	if err := client.Send(context.Background(), TrackMessage{}); err == nil {
		t.Fatalf("expected send error")
	}
}
