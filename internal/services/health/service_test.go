package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

type fakePinger struct{ err error }

func (f fakePinger) PingContext(context.Context) error { return f.err }

func TestStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		db     Pinger
		wantOK bool
		detail string
	}{
		{name: "memory", db: nil, wantOK: true, detail: "memory"},
		{name: "db up", db: fakePinger{}, wantOK: true},
		{name: "db down", db: fakePinger{err: errors.New("connection refused")}, wantOK: false, detail: "connection refused"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			report := NewService(tt.db, "local", true).Status(context.Background())
			if report.OK != tt.wantOK {
				t.Fatalf("OK = %v, want %v", report.OK, tt.wantOK)
			}
			if report.Checks[0].Name != "database" || report.Checks[0].Detail != tt.detail {
				t.Fatalf("database check = %+v", report.Checks[0])
			}
			if report.Checks[1].Detail != "local" {
				t.Fatalf("store check = %+v", report.Checks[1])
			}
		})
	}
}

func TestReadyRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name string
		db   Pinger
		want int
	}{
		{name: "ready", db: fakePinger{}, want: http.StatusOK},
		{name: "not ready", db: fakePinger{err: errors.New("down")}, want: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			NewHandler(NewService(tt.db, "", false)).RegisterRoutes(r.Group("/api/v1"))

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/ready", nil))

			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.want, w.Body.String())
			}
			var report Report
			if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(report.Checks) != 3 || report.Checks[1].Detail != "s3" {
				t.Fatalf("checks = %+v", report.Checks)
			}
		})
	}
}
