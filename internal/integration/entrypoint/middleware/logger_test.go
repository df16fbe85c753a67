package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRequestLogger_MasksAccessToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		target     string
		contains   []string
		notContain string
	}{
		{
			name:       "live stream token",
			target:     "/api/v1/analytics/live?range=6months&access_token=secret-jwt",
			contains:   []string{"/api/v1/analytics/live?", "access_token=REDACTED", "range=6months"},
			notContain: "secret-jwt",
		},
		{
			name:     "query without token is kept",
			target:   "/api/v1/records?limit=5",
			contains: []string{"/api/v1/records?limit=5"},
		},
		{
			name:     "no query",
			target:   "/health",
			contains: []string{"/health"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			router := gin.New()
			router.Use(RequestLogger(&logs))
			router.GET("/*path", func(c *gin.Context) { c.Status(http.StatusOK) })

			router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tt.target, nil))

			line := logs.String()
			for _, want := range tt.contains {
				if !strings.Contains(line, want) {
					t.Errorf("expected log %q to contain %q", line, want)
				}
			}
			if tt.notContain != "" && strings.Contains(line, tt.notContain) {
				t.Errorf("expected log %q to omit %q", line, tt.notContain)
			}
		})
	}
}

func TestRedactQuery_DropsUnparsableQuery(t *testing.T) {
	got := redactQuery("/api/v1/analytics/live?access_token=abc&bad=%zz")
	if got != "/api/v1/analytics/live" {
		t.Errorf("expected query to be dropped, got %q", got)
	}
}
