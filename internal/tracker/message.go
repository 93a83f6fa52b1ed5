package tracker

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/queue"
)

// MessageMeta captures details useful for logging and diagnostics.
type MessageMeta struct {
	BodyLen int
	BodySHA string
}

// ComputeMeta returns the body length and SHA-256 hash.
func ComputeMeta(body string) MessageMeta {
	if body == "" {
		return MessageMeta{}
	}
	sum := sha256.Sum256([]byte(body))
	return MessageMeta{BodyLen: len(body), BodySHA: hex.EncodeToString(sum[:])}
}

// ErrEmptyBody indicates an empty queue payload.
type ErrEmptyBody struct {
	Meta MessageMeta
}

func (e ErrEmptyBody) Error() string { return "empty message body" }

// ErrDecode indicates a JSON decode failure.
type ErrDecode struct {
	Meta MessageMeta
	Err  error
}

func (e ErrDecode) Error() string {
	if e.Err == nil {
		return "decode message"
	}
	return "decode message: " + e.Err.Error()
}

func (e ErrDecode) Unwrap() error { return e.Err }

// ErrMissingInvocation indicates a message without an invocation ARN.
type ErrMissingInvocation struct {
	Meta      MessageMeta
	RequestID string
}

func (e ErrMissingInvocation) Error() string { return "missing invocation arn" }

// ErrTrack indicates tracking failed after the message parsed.
type ErrTrack struct {
	InvocationArn string
	RequestID     string
	Err           error
}

func (e ErrTrack) Error() string {
	if e.Err == nil {
		return "track job"
	}
	return "track job: " + e.Err.Error()
}

func (e ErrTrack) Unwrap() error { return e.Err }

// ParseMessage validates and decodes the queue payload.
func ParseMessage(body string) (queue.TrackMessage, MessageMeta, error) {
	meta := ComputeMeta(body)
	if strings.TrimSpace(body) == "" {
		return queue.TrackMessage{}, meta, ErrEmptyBody{Meta: meta}
	}

	msg, err := queue.DecodeMessage([]byte(body))
	if err != nil {
		return queue.TrackMessage{}, meta, ErrDecode{Meta: meta, Err: err}
	}
	if strings.TrimSpace(msg.InvocationArn) == "" {
		return msg, meta, ErrMissingInvocation{Meta: meta, RequestID: msg.RequestID}
	}
	return msg, meta, nil
}
