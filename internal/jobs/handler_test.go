package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

type stubQuerier struct {
	outcome Outcome
	err     error
	calls   int
}

func (s *stubQuerier) Status(ctx context.Context, invocationArn string) (Outcome, error) {
	_ = ctx
	s.calls++
	out := s.outcome
	out.InvocationArn = invocationArn
	return out, s.err
}

func setupStatusRouter(q StatusQuerier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(q).RegisterRoutes(router.Group("/api/v1"))
	return router
}

func TestGetStatus(t *testing.T) {
	q := &stubQuerier{outcome: Outcome{Status: StatusRunning, RemoteStatus: "InProgress"}}
	router := setupStatusRouter(q)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/status?invocationArn=arn:job-1", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var got Outcome
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.InvocationArn != "arn:job-1" || got.Status != StatusRunning {
		t.Fatalf("unexpected body: %+v", got)
	}
}

func TestGetStatusValidationAndRateLimit(t *testing.T) {
	q := &stubQuerier{outcome: Outcome{Status: StatusRunning}}
	router := setupStatusRouter(q)

	missing := httptest.NewRecorder()
	router.ServeHTTP(missing, httptest.NewRequest(http.MethodGet, "/api/v1/jobs/status", nil))
	if missing.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without arn, got %d", missing.Code)
	}

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/api/v1/jobs/status?invocationArn=arn:job-2", nil))
	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/api/v1/jobs/status?invocationArn=arn:job-2", nil))

	if first.Code != http.StatusOK || second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 200 then 429, got %d then %d", first.Code, second.Code)
	}
	if second.Header().Get("Retry-After") != "1" {
		t.Fatalf("expected Retry-After header")
	}
	if q.calls != 1 {
		t.Fatalf("expected one remote query, got %d", q.calls)
	}
}

func TestGetStatusRemoteFailure(t *testing.T) {
	router := setupStatusRouter(&stubQuerier{err: errors.New("boom")})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/jobs/status?invocationArn=arn:job-3", nil))
	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.Code)
	}
}

func TestPollLimiterWindow(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newPollLimiter(time.Second, func() time.Time { return now })

	if !l.Allow("a") || l.Allow("a") {
		t.Fatalf("expected first allowed, second limited")
	}
	if !l.Allow("b") {
		t.Fatalf("keys are independent")
	}
	now = now.Add(time.Second)
	if !l.Allow("a") {
		t.Fatalf("expected allow after window")
	}
}
