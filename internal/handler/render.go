package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/greenfield-academy/portal/pkg/errors"
	"github.com/greenfield-academy/portal/pkg/response"
)

// renderError maps a service error onto the HTML error surface: missing
// resources get the 404 page, everything else the generic error page.
func renderError(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	switch appErr.Status {
	case http.StatusNotFound:
		response.Page(c, http.StatusNotFound, "error_404.html", gin.H{
			"Title":   "Not found",
			"Message": appErr.Message,
		})
	case http.StatusForbidden, http.StatusUnauthorized:
		response.RedirectFlash(c, "/dashboard", appErr.Message)
	default:
		response.Page(c, appErr.Status, "error_500.html", gin.H{
			"Title":   "Something went wrong",
			"Message": appErr.Message,
		})
	}
}

// flashBack sends form errors back to the page the user came from as a
// flash message. Server faults still render the error page.
func flashBack(c *gin.Context, location string, err error) {
	appErr := appErrors.FromError(err)
	if appErr.Status >= http.StatusInternalServerError {
		renderError(c, err)
		return
	}
	response.RedirectFlash(c, location, appErr.Message)
}
