package jobs

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/service/bedrockdataautomationruntime/types"
)

// Status is the lifecycle state of one extraction job.
type Status string

const (
	StatusSubmitted Status = "submitted"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// Handle identifies a submitted job.
type Handle struct {
	InvocationArn string    `json:"invocationArn"`
	InputURI      string    `json:"inputUri"`
	OutputURI     string    `json:"outputUri"`
	ProjectArn    string    `json:"projectArn"`
	Status        Status    `json:"status"`
	SubmittedAt   time.Time `json:"submittedAt"`
}

// Outcome is a single observation of a job's state.
type Outcome struct {
	InvocationArn string `json:"invocationArn"`
	InputURI      string `json:"inputUri,omitempty"`
	Status        Status `json:"status"`
	RemoteStatus  string `json:"remoteStatus"`
	// ManifestURI points at job_metadata.json once the job has succeeded.
	ManifestURI  string `json:"manifestUri,omitempty"`
	ErrorType    string `json:"errorType,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

func mapStatus(remote types.AutomationJobStatus) Status {
	switch remote {
	case types.AutomationJobStatusSuccess:
		return StatusSucceeded
	case types.AutomationJobStatusClientError, types.AutomationJobStatusServiceError:
		return StatusFailed
	case types.AutomationJobStatusInProgress:
		return StatusRunning
	default:
		return StatusSubmitted
	}
}
