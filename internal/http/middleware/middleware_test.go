package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/storygrid-backend/internal/auth"
	"github.com/yungbote/storygrid-backend/internal/observability"
	"github.com/yungbote/storygrid-backend/internal/platform/ctxutil"
	"github.com/yungbote/storygrid-backend/internal/platform/logger"
)

func whoami(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	c.String(http.StatusOK, rd.UserID.String()+"/"+rd.SessionID.String())
}

func authRouter(am *AuthMiddleware) *gin.Engine {
	r := gin.New()
	r.GET("/me", am.RequireAuth(), whoami)
	return r
}

func TestRequireAuthVerifiesBearer(t *testing.T) {
	gin.SetMode(gin.TestMode)
	v, _ := auth.NewVerifier("secret", "")
	r := authRouter(NewAuthMiddleware(logger.Nop(), v, false))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: want=401 got=%d", rec.Code)
	}

	user, session := uuid.New(), uuid.New()
	tok, _ := v.Issue(user, session, time.Minute)
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != user.String()+"/"+session.String() {
		t.Fatalf("bearer: got=%d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me?token="+tok, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("query token: want=200 got=%d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok+"x")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("tampered token: want=401 got=%d", rec.Code)
	}
}

func TestRequireAuthDisabledUsesDevUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := authRouter(NewAuthMiddleware(logger.Nop(), nil, true))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))
	if !strings.HasPrefix(rec.Body.String(), DevUserID.String()) {
		t.Fatalf("dev user: got=%s", rec.Body.String())
	}

	other := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("X-User-Id", other.String())
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if !strings.HasPrefix(rec.Body.String(), other.String()) {
		t.Fatalf("X-User-Id: want=%s got=%s", other, rec.Body.String())
	}
}

func TestAttachTraceContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	r.GET("/t", func(c *gin.Context) {
		td := ctxutil.GetTraceData(c.Request.Context())
		c.String(http.StatusOK, td.TraceID+"|"+td.RequestID)
	})

	req := httptest.NewRequest(http.MethodGet, "/t", nil)
	req.Header.Set(headerTraceID, "trace-1")
	req.Header.Set(headerRequestID, "req-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Body.String() != "trace-1|req-1" {
		t.Fatalf("client ids: got=%s", rec.Body.String())
	}
	if rec.Header().Get(headerRequestID) != "req-1" {
		t.Fatalf("echoed request id: got=%q", rec.Header().Get(headerRequestID))
	}

	req = httptest.NewRequest(http.MethodGet, "/t", nil)
	req.Header.Set(headerRequestID, strings.Repeat("x", maxIDLen+1))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	parts := strings.Split(rec.Body.String(), "|")
	if _, err := uuid.Parse(parts[1]); err != nil {
		t.Fatalf("oversized request id should be replaced: got=%s", parts[1])
	}
}

func TestMetricsMiddlewareUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := observability.NewMetrics()
	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/api/projects/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/projects/"+uuid.NewString(), nil))
	}
	var body strings.Builder
	_ = m.WritePrometheus(&body)
	want := `storygrid_api_requests_total{method="GET",route="/api/projects/:id",status="204"} 2`
	if !strings.Contains(body.String(), want) {
		t.Fatalf("missing %q in:\n%s", want, body.String())
	}
}
