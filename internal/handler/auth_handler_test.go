package handler

import (
	"context"
	"database/sql"
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/greenfield-academy/portal/internal/middleware"
	"github.com/greenfield-academy/portal/internal/models"
	"github.com/greenfield-academy/portal/internal/service"
	"github.com/greenfield-academy/portal/pkg/config"
)

type authRepoStub struct {
	user   *models.User
	audits []*models.AuditLog
}

func (r *authRepoStub) FindByUsername(_ context.Context, username string) (*models.User, error) {
	if r.user != nil && r.user.Username == username {
		return r.user, nil
	}
	return nil, sql.ErrNoRows
}

func (r *authRepoStub) FindByID(_ context.Context, id string) (*models.User, error) {
	if r.user != nil && r.user.ID == id {
		return r.user, nil
	}
	return nil, sql.ErrNoRows
}

func (r *authRepoStub) UpdateLastLogin(context.Context, string, time.Time) error { return nil }

func (r *authRepoStub) CreateAuditLog(_ context.Context, log *models.AuditLog) error {
	r.audits = append(r.audits, log)
	return nil
}

func authFixture(t *testing.T) (*gin.Engine, *authRepoStub, config.SessionConfig) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := &authRepoStub{user: &models.User{
		ID:           "u1",
		Username:     "jdoe",
		PasswordHash: string(hash),
		Role:         models.RoleTeacher,
		FirstName:    "Jane",
		LastName:     "Doe",
		Active:       true,
	}}

	svc := service.NewAuthService(repo, nil, nil, service.AuthConfig{Secret: "test-secret"})
	cfg := config.SessionConfig{CookieName: "portal_session", TTL: time.Hour, RememberTTL: 720 * time.Hour}
	h := NewAuthHandler(svc, cfg)

	r := gin.New()
	r.SetHTMLTemplate(template.Must(template.New("portal").Parse(testTemplates)))
	r.GET("/", h.Home)
	r.GET("/login", h.LoginPage)
	r.POST("/login", h.Login)
	r.GET("/logout", func(c *gin.Context) {
		c.Set(middleware.ContextUserKey, models.Principal{UserID: "u1", Role: models.RoleTeacher, Name: "Jane Doe"})
		h.Logout(c)
	})

	return r, repo, cfg
}

func postForm(r *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func TestLoginPageRenders(t *testing.T) {
	r, _, _ := authFixture(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "login")
}

func TestLoginSuccessSetsCookieAndRedirects(t *testing.T) {
	r, _, cfg := authFixture(t)

	rec := postForm(r, "/login", url.Values{"username": {"jdoe"}, "password": {"secret123"}})

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))

	cookie := sessionCookie(rec, cfg.CookieName)
	require.NotNil(t, cookie)
	assert.NotEmpty(t, cookie.Value)
	assert.Greater(t, cookie.MaxAge, 0)
	assert.True(t, cookie.HttpOnly)
}

func TestLoginRememberExtendsCookie(t *testing.T) {
	r, _, cfg := authFixture(t)

	short := postForm(r, "/login", url.Values{"username": {"jdoe"}, "password": {"secret123"}})
	long := postForm(r, "/login", url.Values{"username": {"jdoe"}, "password": {"secret123"}, "remember": {"true"}})

	shortCookie := sessionCookie(short, cfg.CookieName)
	longCookie := sessionCookie(long, cfg.CookieName)
	require.NotNil(t, shortCookie)
	require.NotNil(t, longCookie)
	assert.Greater(t, longCookie.MaxAge, shortCookie.MaxAge)
}

func TestLoginWrongPasswordRerenders(t *testing.T) {
	r, _, cfg := authFixture(t)

	rec := postForm(r, "/login", url.Values{"username": {"jdoe"}, "password": {"wrong"}})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid username or password")
	assert.Nil(t, sessionCookie(rec, cfg.CookieName))
}

func TestLoginUnknownUserSameMessage(t *testing.T) {
	r, _, _ := authFixture(t)

	rec := postForm(r, "/login", url.Values{"username": {"ghost"}, "password": {"whatever"}})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid username or password")
}

func TestLoginMissingFields(t *testing.T) {
	r, _, _ := authFixture(t)

	rec := postForm(r, "/login", url.Values{"username": {"jdoe"}})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutClearsCookieAndRedirectsHome(t *testing.T) {
	r, repo, cfg := authFixture(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/logout", nil))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Location"), "/?flash="))

	cookie := sessionCookie(rec, cfg.CookieName)
	require.NotNil(t, cookie)
	assert.Less(t, cookie.MaxAge, 0)

	require.NotEmpty(t, repo.audits)
	assert.Equal(t, models.AuditActionLogout, repo.audits[len(repo.audits)-1].Action)
}

func TestHomeAnonymousShowsLanding(t *testing.T) {
	r, _, _ := authFixture(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "landing")
}

func TestHomeSignedInRedirectsToDashboard(t *testing.T) {
	r, _, cfg := authFixture(t)

	login := postForm(r, "/login", url.Values{"username": {"jdoe"}, "password": {"secret123"}})
	cookie := sessionCookie(login, cfg.CookieName)
	require.NotNil(t, cookie)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
}
