// Package router assembles the gin engine: middleware chain, HTML
// templates, page routes, the attendance API and the probe endpoints.
package router

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/greenfield-academy/portal/internal/handler"
	"github.com/greenfield-academy/portal/internal/middleware"
	"github.com/greenfield-academy/portal/internal/models"
	"github.com/greenfield-academy/portal/internal/service"
	"github.com/greenfield-academy/portal/pkg/config"
	appErrors "github.com/greenfield-academy/portal/pkg/errors"
	"github.com/greenfield-academy/portal/pkg/logger"
	corsmiddleware "github.com/greenfield-academy/portal/pkg/middleware/cors"
	reqidmiddleware "github.com/greenfield-academy/portal/pkg/middleware/requestid"
	"github.com/greenfield-academy/portal/pkg/response"
)

// Handlers bundles every handler the router mounts.
type Handlers struct {
	Auth          *handler.AuthHandler
	Dashboard     *handler.DashboardHandler
	Users         *handler.UserHandler
	Classes       *handler.ClassHandler
	Announcements *handler.AnnouncementHandler
	Teacher       *handler.TeacherHandler
	Student       *handler.StudentHandler
	Parent        *handler.ParentHandler
	Attendance    *handler.AttendanceHandler
	Metrics       *handler.MetricsHandler
}

// New builds the configured engine. The caller owns template loading
// problems: a bad glob fails fast here.
func New(cfg *config.Config, logr *zap.Logger, auth *service.AuthService, metrics *service.MetricsService, h Handlers) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.CustomRecovery(recoveryHandler(logr)))
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(metrics))

	if cfg.Templates.Glob != "" {
		r.LoadHTMLGlob(cfg.Templates.Glob)
	}

	session := middleware.Session(auth, cfg.Session)

	// Public surface.
	r.GET("/", h.Auth.Home)
	r.GET("/login", h.Auth.LoginPage)
	r.POST("/login", h.Auth.Login)
	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)

	// Signed-in pages.
	pages := r.Group("/", session)
	pages.GET("/logout", h.Auth.Logout)
	pages.GET("/dashboard", h.Dashboard.Show)

	student := pages.Group("/student", middleware.RequireRoles(models.RoleStudent))
	student.GET("/grades", h.Student.Grades)
	student.GET("/grades/report.pdf", h.Student.GradeReportPDF)
	student.POST("/assignments/:id/submit", h.Student.SubmitAssignment)

	teacher := pages.Group("/teacher", middleware.RequireRoles(models.RoleTeacher))
	teacher.GET("/classes", h.Teacher.Classes)
	teacher.GET("/class/:id", h.Teacher.ClassDetail)
	teacher.POST("/class/:id/assignments", h.Teacher.CreateAssignment)
	teacher.POST("/class/:id/grades", h.Teacher.RecordGrade)
	teacher.GET("/class/:id/roster.csv", h.Teacher.RosterCSV)

	parent := pages.Group("/parent", middleware.RequireRoles(models.RoleParent))
	parent.GET("/children", h.Parent.Children)
	parent.GET("/child/:id", h.Parent.ChildDetail)

	admin := pages.Group("/admin", middleware.RequireRoles(models.RoleAdmin))
	admin.GET("/users", h.Users.List)
	admin.GET("/create_user", h.Users.CreatePage)
	admin.POST("/create_user", h.Users.Create)
	admin.GET("/classes", h.Classes.List)
	admin.POST("/classes", h.Classes.Create)
	admin.POST("/classes/:id/students", h.Classes.Enroll)
	admin.POST("/students/:id/guardians", h.Classes.LinkGuardian)
	admin.GET("/announcements", h.Announcements.Announcements)
	admin.POST("/announcements", h.Announcements.CreateAnnouncement)
	admin.GET("/events", h.Announcements.Events)
	admin.POST("/events", h.Announcements.CreateEvent)

	// JSON API consumed by the class detail page. CORS answers the
	// preflight before the session check can get in the way.
	apiRoot := r.Group("/api", corsmiddleware.New(cfg.CORS.AllowedOrigins))
	apiRoot.OPTIONS("/*any", func(*gin.Context) {})

	api := apiRoot.Group("", session, middleware.RequireRoles(models.RoleTeacher))
	api.GET("/attendance/:classID/:date", h.Attendance.Roster)
	api.POST("/attendance/:classID/:date", h.Attendance.Save)

	r.NoRoute(notFoundHandler)

	return r
}

func notFoundHandler(c *gin.Context) {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "route not found"))
		return
	}
	response.Page(c, http.StatusNotFound, "error_404.html", gin.H{
		"Title":   "Not found",
		"Message": "The page you are looking for does not exist.",
	})
}

func recoveryHandler(logr *zap.Logger) gin.RecoveryFunc {
	return func(c *gin.Context, recovered interface{}) {
		logr.Error("panic recovered",
			zap.Any("panic", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", reqidmiddleware.Value(c)),
		)

		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			response.Error(c, appErrors.ErrInternal)
		} else {
			response.Page(c, http.StatusInternalServerError, "error_500.html", gin.H{
				"Title":   "Something went wrong",
				"Message": "An unexpected error occurred. Please try again.",
			})
		}
		c.Abort()
	}
}
