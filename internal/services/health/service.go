package health

import (
	"context"
	"time"
)

const pingTimeout = 2 * time.Second

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Check is the state of one dependency.
type Check struct {
	Name   string `json:"name"`
	OK     bool   `json:"ok"`
	Detail string `json:"detail,omitempty"`
}

// Report aggregates dependency checks.
type Report struct {
	OK     bool    `json:"ok"`
	Checks []Check `json:"checks"`
}

// Service reports whether the dependencies a request needs are usable.
type Service struct {
	db       Pinger
	store    string
	queueSet bool
}

// NewService constructs a Service. db may be nil when results are kept in memory.
func NewService(db Pinger, storeType string, queueConfigured bool) *Service {
	return &Service{db: db, store: storeType, queueSet: queueConfigured}
}

// Status runs every check. The report is OK only when all checks pass.
func (s *Service) Status(ctx context.Context) Report {
	checks := []Check{s.database(ctx), {Name: "object_store", OK: true, Detail: s.storeName()}}
	if s.queueSet {
		checks = append(checks, Check{Name: "tracking_queue", OK: true})
	} else {
		checks = append(checks, Check{Name: "tracking_queue", OK: true, Detail: "not configured; jobs are not tracked"})
	}

	report := Report{OK: true, Checks: checks}
	for _, c := range checks {
		if !c.OK {
			report.OK = false
		}
	}
	return report
}

func (s *Service) database(ctx context.Context) Check {
	if s.db == nil {
		return Check{Name: "database", OK: true, Detail: "memory"}
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := s.db.PingContext(ctx); err != nil {
		return Check{Name: "database", OK: false, Detail: err.Error()}
	}
	return Check{Name: "database", OK: true}
}

func (s *Service) storeName() string {
	if s.store == "" {
		return "s3"
	}
	return s.store
}
