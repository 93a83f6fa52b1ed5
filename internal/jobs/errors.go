package jobs

import (
	"fmt"
	"time"
)

// AuthContextError indicates the caller's account could not be resolved.
type AuthContextError struct {
	Err error
}

func (e AuthContextError) Error() string {
	if e.Err == nil {
		return "resolve account context"
	}
	return "resolve account context: " + e.Err.Error()
}

func (e AuthContextError) Unwrap() error { return e.Err }

// SubmissionError indicates the service did not acknowledge a job.
// Retrying may start a second job unless the same client token is reused.
type SubmissionError struct {
	InputURI string
	Code     string
	Message  string
	Err      error
}

func (e SubmissionError) Error() string {
	msg := "submit job for " + e.InputURI
	if e.Code != "" {
		msg += ": " + e.Code
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

func (e SubmissionError) Unwrap() error { return e.Err }

// PollingError indicates status queries kept failing past the retry budget.
type PollingError struct {
	InvocationArn string
	Failures      int
	Err           error
}

func (e PollingError) Error() string {
	return fmt.Sprintf("query status for %s failed %d times: %v", e.InvocationArn, e.Failures, e.Err)
}

func (e PollingError) Unwrap() error { return e.Err }

// JobFailedError indicates the job reached a failed state.
type JobFailedError struct {
	InvocationArn string
	ErrorType     string
	Message       string
}

func (e JobFailedError) Error() string {
	msg := "job " + e.InvocationArn + " failed"
	if e.ErrorType != "" {
		msg += ": " + e.ErrorType
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// TimeoutError indicates the poll bound was reached before a terminal state.
type TimeoutError struct {
	InvocationArn string
	Queries       int
	Elapsed       time.Duration
	LastStatus    Status
}

func (e TimeoutError) Error() string {
	return fmt.Sprintf("job %s not terminal after %d queries (%s), last status %s", e.InvocationArn, e.Queries, e.Elapsed, e.LastStatus)
}
