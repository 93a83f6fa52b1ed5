package orchestrator

import "net/http"

const (
	StatusAccepted = http.StatusAccepted
	StatusIgnored  = http.StatusOK
	StatusNotFound = http.StatusNotFound
	StatusError    = http.StatusInternalServerError
)

// RecordResult is the outcome of one notification record.
type RecordResult struct {
	Bucket        string `json:"bucket"`
	Key           string `json:"key"`
	Status        int    `json:"status"`
	Detail        string `json:"detail"`
	InvocationArn string `json:"invocationArn,omitempty"`
}

// Result summarizes one event for the invoking environment.
type Result struct {
	Status  int            `json:"statusCode"`
	Detail  string         `json:"body"`
	Records []RecordResult `json:"records,omitempty"`
}

func severity(status int) int {
	switch status {
	case StatusError:
		return 3
	case StatusNotFound:
		return 2
	case StatusAccepted:
		return 1
	default:
		return 0
	}
}

// aggregate folds per-record results; the most severe status wins.
func aggregate(records []RecordResult) Result {
	if len(records) == 0 {
		return Result{Status: StatusIgnored, Detail: "no eligible records"}
	}
	worst := records[0]
	for _, r := range records[1:] {
		if severity(r.Status) > severity(worst.Status) {
			worst = r
		}
	}
	detail := worst.Detail
	if len(records) > 1 && worst.Status == StatusAccepted {
		detail = "jobs started"
	}
	return Result{Status: worst.Status, Detail: detail, Records: records}
}
