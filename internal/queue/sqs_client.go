package queue

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// maxDelaySeconds is the SQS limit for per-message delay.
const maxDelaySeconds = 900

// SendAPI is the subset of the SQS client used to enqueue.
type SendAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSClient sends tracking messages to AWS SQS.
type SQSClient struct {
	client       SendAPI
	queueURL     string
	delaySeconds int32
}

// NewSQSClient constructs an SQS-backed queue client. delaySeconds postpones delivery so
// trackers do not start polling a job the moment it is accepted.
func NewSQSClient(client SendAPI, queueURL string, delaySeconds int) (*SQSClient, error) {
	queueURL = strings.TrimSpace(queueURL)
	if queueURL == "" {
		return nil, errors.New("tracking queue url is required")
	}
	if delaySeconds < 0 {
		delaySeconds = 0
	}
	if delaySeconds > maxDelaySeconds {
		delaySeconds = maxDelaySeconds
	}
	return &SQSClient{
		client:       client,
		queueURL:     queueURL,
		delaySeconds: int32(delaySeconds),
	}, nil
}

// Send delivers a message to the configured SQS queue.
func (s *SQSClient) Send(ctx context.Context, msg TrackMessage) error {
	payload, err := EncodeMessage(msg)
	if err != nil {
		return fmt.Errorf("encode sqs message: %w", err)
	}

	_, err = s.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:     aws.String(s.queueURL),
		MessageBody:  aws.String(string(payload)),
		DelaySeconds: s.delaySeconds,
	})
	if err != nil {
		return fmt.Errorf("sqs send message: %w", err)
	}
	return nil
}

var _ Client = (*SQSClient)(nil)
