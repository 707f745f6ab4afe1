package response

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	appErrors "github.com/greenfield-academy/portal/pkg/errors"
)

// Envelope is the JSON error contract for /api routes. Successful API
// responses are written bare, without the envelope.
type Envelope struct {
	Error *appErrors.Error `json:"error,omitempty"`
}

// Raw sends a JSON payload exactly as given.
func Raw(c *gin.Context, status int, payload interface{}) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(status, payload)
}

// Error sends an error response converting the error to the common structure.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(appErr.Status, Envelope{Error: appErr})
}

// Page renders an HTML template. A flash message carried in the request
// query is merged into the template data under "Flash".
func Page(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if _, ok := data["Flash"]; !ok {
		if flash := c.Query("flash"); flash != "" {
			data["Flash"] = flash
		}
	}

	c.Header("Cache-Control", "no-store")
	c.HTML(status, name, data)
}

// Redirect issues a 302 to location.
func Redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusFound, location)
}

// RedirectFlash redirects to location carrying a one-shot flash message
// in the query string.
func RedirectFlash(c *gin.Context, location, flash string) {
	if flash == "" {
		Redirect(c, location)
		return
	}

	sep := "?"
	if u, err := url.Parse(location); err == nil && u.RawQuery != "" {
		sep = "&"
	}
	c.Redirect(http.StatusFound, location+sep+"flash="+url.QueryEscape(flash))
}
