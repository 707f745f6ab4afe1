package router

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/greenfield-academy/portal/internal/handler"
	"github.com/greenfield-academy/portal/internal/models"
	"github.com/greenfield-academy/portal/internal/service"
	"github.com/greenfield-academy/portal/pkg/config"
)

type noUserRepo struct{}

func (noUserRepo) FindByUsername(context.Context, string) (*models.User, error) {
	return nil, sql.ErrNoRows
}

func (noUserRepo) FindByID(context.Context, string) (*models.User, error) {
	return nil, sql.ErrNoRows
}

func (noUserRepo) UpdateLastLogin(context.Context, string, time.Time) error { return nil }

func (noUserRepo) CreateAuditLog(context.Context, *models.AuditLog) error { return nil }

func writeTemplates(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	pages := map[string]string{
		"index.html":     "landing",
		"login.html":     "login form",
		"error_404.html": "not found: {{.Message}}",
		"error_500.html": "server error: {{.Message}}",
	}
	for name, body := range pages {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}

	return filepath.Join(dir, "*.html")
}

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Env: config.EnvDevelopment,
		Session: config.SessionConfig{
			CookieName: "portal_session",
			TTL:        time.Hour,
		},
		Templates: config.TemplatesConfig{Glob: writeTemplates(t)},
	}

	authSvc := service.NewAuthService(noUserRepo{}, nil, nil, service.AuthConfig{Secret: "test-secret"})
	metrics := service.NewMetricsService()

	h := Handlers{
		Auth:          handler.NewAuthHandler(authSvc, cfg.Session),
		Dashboard:     handler.NewDashboardHandler(nil),
		Users:         handler.NewUserHandler(nil),
		Classes:       handler.NewClassHandler(nil),
		Announcements: handler.NewAnnouncementHandler(nil),
		Teacher:       handler.NewTeacherHandler(nil, nil, nil),
		Student:       handler.NewStudentHandler(nil, nil),
		Parent:        handler.NewParentHandler(nil),
		Attendance:    handler.NewAttendanceHandler(nil),
		Metrics:       handler.NewMetricsHandler(metrics, nil, nil),
	}

	return New(cfg, zap.NewNop(), authSvc, metrics, h)
}

func perform(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestPublicRoutes(t *testing.T) {
	r := testRouter(t)

	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/").Code)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/login").Code)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/health").Code)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/ready").Code)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/metrics").Code)
}

func TestUnknownRouteRendersErrorPage(t *testing.T) {
	r := testRouter(t)

	rec := perform(r, http.MethodGet, "/no-such-page")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not found:")
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
}

func TestUnknownAPIRouteReturnsJSON(t *testing.T) {
	r := testRouter(t)

	rec := perform(r, http.MethodGet, "/api/no-such-endpoint")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error"`)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
}

func TestPagesRequireSession(t *testing.T) {
	r := testRouter(t)

	for _, path := range []string{"/dashboard", "/teacher/classes", "/admin/users", "/parent/children", "/student/grades"} {
		rec := perform(r, http.MethodGet, path)
		assert.Equalf(t, http.StatusFound, rec.Code, "path %s", path)
		assert.Containsf(t, rec.Header().Get("Location"), "/login", "path %s", path)
	}
}

func TestAttendanceAPIRequiresSession(t *testing.T) {
	r := testRouter(t)

	rec := perform(r, http.MethodGet, "/api/attendance/c1/2024-03-11")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error"`)
}

func TestAPIPreflightAnsweredWithoutSession(t *testing.T) {
	r := testRouter(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/attendance/c1/2024-03-11", nil)
	req.Header.Set("Origin", "http://portal.school.local")
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://portal.school.local", rec.Header().Get("Access-Control-Allow-Origin"))
}
