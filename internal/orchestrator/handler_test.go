package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

type fakeRecordHandler struct {
	records []Record
	result  Result
}

func (f *fakeRecordHandler) HandleRecords(ctx context.Context, requestID string, records []Record) Result {
	f.records = records
	return f.result
}

func TestStartHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		body       string
		result     Result
		wantStatus int
	}{
		{name: "accepted", body: `{"bucket":"docs","key":"reports/a.pdf"}`, result: Result{Status: StatusAccepted, Detail: "job started"}, wantStatus: http.StatusAccepted},
		{name: "not found", body: `{"bucket":"docs","key":"reports/a.pdf"}`, result: Result{Status: StatusNotFound, Detail: "missing"}, wantStatus: http.StatusNotFound},
		{name: "missing key", body: `{"bucket":"docs"}`, wantStatus: http.StatusBadRequest},
		{name: "bad json", body: `{`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeRecordHandler{result: tt.result}
			r := gin.New()
			NewHandler(fake).RegisterRoutes(r.Group("/api/v1"))

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus >= 400 && tt.result.Status == 0 {
				if len(fake.records) != 0 {
					t.Fatalf("invalid requests must not reach the orchestrator")
				}
				return
			}
			var got Result
			if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got.Detail != tt.result.Detail || fake.records[0].Key != "reports/a.pdf" {
				t.Fatalf("unexpected response %+v records %+v", got, fake.records)
			}
		})
	}
}
