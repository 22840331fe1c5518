package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func preflight(t *testing.T, allowed, origin string) *httptest.ResponseRecorder {
	t.Helper()
	r := gin.New()
	r.Use(CORS(allowed))
	r.OPTIONS("/api/projects", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	req := httptest.NewRequest(http.MethodOptions, "/api/projects", nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCORSAllowsLocalDevOrigins(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	for _, origin := range []string{"http://localhost:5173", "http://127.0.0.1:3000"} {
		origin := origin
		t.Run(origin, func(t *testing.T) {
			t.Parallel()
			rec := preflight(t, "", origin)
			if rec.Code != http.StatusNoContent {
				t.Fatalf("unexpected status: got=%d want=%d", rec.Code, http.StatusNoContent)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != origin {
				t.Fatalf("unexpected allow-origin header: got=%q want=%q", got, origin)
			}
		})
	}
}

func TestCORSConfiguredOrigins(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	rec := preflight(t, " https://grid.example.com/ ,https://studio.example.com", "https://grid.example.com")
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://grid.example.com" {
		t.Fatalf("allow-origin: want=https://grid.example.com got=%q", got)
	}
	rec = preflight(t, "https://grid.example.com", "http://localhost:5173")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("dev origin with explicit list: want=403 got=%d", rec.Code)
	}
}
