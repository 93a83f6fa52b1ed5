package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/shared/config"
)

type pingRoutes struct{}

func (pingRoutes) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
}

func TestRouterServesHealthMetricsAndRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(config.Config{Env: "dev"}, pingRoutes{}, nil)

	tests := []struct {
		path string
		want string
	}{
		{path: "/api/v1/health", want: `"ok":true`},
		{path: "/metrics", want: "bda_jobs_submitted_total"},
		{path: "/api/v1/ping", want: "pong"},
	}
	for _, tt := range tests {
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, tt.path, nil))
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: status %d", tt.path, resp.Code)
		}
		if !strings.Contains(resp.Body.String(), tt.want) {
			t.Fatalf("%s: body %q missing %q", tt.path, resp.Body.String(), tt.want)
		}
	}
}

func TestAddr(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]string{"": ":8080", "9000": ":9000", ":7000": ":7000"} {
		if got := Addr(in); got != want {
			t.Fatalf("Addr(%q) = %q, want %q", in, got, want)
		}
	}
}
