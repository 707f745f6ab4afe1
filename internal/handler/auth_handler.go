package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/greenfield-academy/portal/internal/models"
	"github.com/greenfield-academy/portal/internal/service"
	"github.com/greenfield-academy/portal/pkg/config"
	appErrors "github.com/greenfield-academy/portal/pkg/errors"
	"github.com/greenfield-academy/portal/pkg/response"
)

// AuthHandler serves the landing page and the login/logout flow.
type AuthHandler struct {
	service *service.AuthService
	session config.SessionConfig
}

// NewAuthHandler constructs an auth handler.
func NewAuthHandler(svc *service.AuthService, session config.SessionConfig) *AuthHandler {
	return &AuthHandler{service: svc, session: session}
}

// Home redirects signed-in users to their dashboard and shows the
// landing page to everyone else.
func (h *AuthHandler) Home(c *gin.Context) {
	if h.signedIn(c) {
		response.Redirect(c, "/dashboard")
		return
	}
	response.Page(c, http.StatusOK, "index.html", gin.H{"Title": "Welcome"})
}

// LoginPage renders the login form.
func (h *AuthHandler) LoginPage(c *gin.Context) {
	if h.signedIn(c) {
		response.Redirect(c, "/dashboard")
		return
	}
	response.Page(c, http.StatusOK, "login.html", gin.H{"Title": "Sign in"})
}

// Login authenticates the posted form and establishes the session cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Page(c, http.StatusBadRequest, "login.html", gin.H{
			"Title": "Sign in",
			"Error": "Please fill in both username and password.",
		})
		return
	}
	req.IP, req.UserAgent = clientMeta(c)

	sess, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		appErr := appErrors.FromError(err)
		response.Page(c, appErr.Status, "login.html", gin.H{
			"Title":    "Sign in",
			"Error":    appErr.Message,
			"Username": req.Username,
		})
		return
	}

	h.setCookie(c, sess)
	response.Redirect(c, "/dashboard")
}

// Logout closes the session and clears the cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	if principal := principalFromContext(c); principal != nil {
		ip, ua := clientMeta(c)
		h.service.Logout(c.Request.Context(), *principal, ip, ua)
	}

	c.SetCookie(h.session.CookieName, "", -1, "/", "", h.session.Secure, true)
	response.RedirectFlash(c, "/", "You have been signed out.")
}

func (h *AuthHandler) setCookie(c *gin.Context, sess *service.Session) {
	maxAge := int(time.Until(sess.ExpiresAt).Seconds())
	if maxAge < 0 {
		maxAge = 0
	}
	c.SetCookie(h.session.CookieName, sess.Token, maxAge, "/", "", h.session.Secure, true)
}

func (h *AuthHandler) signedIn(c *gin.Context) bool {
	token, err := c.Cookie(h.session.CookieName)
	if err != nil || token == "" {
		return false
	}
	_, err = h.service.VerifySession(c.Request.Context(), token)
	return err == nil
}
