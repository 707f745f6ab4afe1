package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/greenfield-academy/portal/internal/models"
	appErrors "github.com/greenfield-academy/portal/pkg/errors"
)

type userRepository interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User, profile interface{}) error
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type dashboardInvalidator interface {
	Invalidate(ctx context.Context, key string)
}

// CreateUserRequest is the provisioning form payload. The profile
// fields are read according to the selected role.
type CreateUserRequest struct {
	Username  string      `form:"username" validate:"required,min=3"`
	Email     string      `form:"email" validate:"required,email"`
	Password  string      `form:"password" validate:"required,min=6"`
	Role      models.Role `form:"role" validate:"required,oneof=admin teacher student parent"`
	FirstName string      `form:"first_name" validate:"required"`
	LastName  string      `form:"last_name" validate:"required"`

	EmployeeID    string `form:"employee_id"`
	Department    string `form:"department"`
	StudentNumber string `form:"student_number"`
	GradeLevel    string `form:"grade_level"`
	Phone         string `form:"phone"`
	Occupation    string `form:"occupation"`

	IP        string `form:"-"`
	UserAgent string `form:"-"`
}

// UserService handles account provisioning and listing.
type UserService struct {
	repo      userRepository
	cache     dashboardInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService creates an instance of UserService.
func NewUserService(repo userRepository, cache dashboardInvalidator, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UserService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns users and pagination metadata.
func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]models.User, *models.Pagination, error) {
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	pagination := &models.Pagination{
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
	}

	return users, pagination, nil
}

// Create provisions a new account together with its role profile in one
// transaction. The admin role gets no profile row.
func (s *UserService) Create(ctx context.Context, req CreateUserRequest, actorID string) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid create user payload")
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{
		Username:     strings.ToLower(strings.TrimSpace(req.Username)),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(passwordHash),
		Role:         req.Role,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Active:       true,
	}

	var profile interface{}
	switch req.Role {
	case models.RoleAdmin:
	case models.RoleTeacher:
		profile = &models.Teacher{EmployeeID: req.EmployeeID, Department: req.Department}
	case models.RoleStudent:
		profile = &models.Student{StudentNumber: req.StudentNumber, GradeLevel: req.GradeLevel}
	case models.RoleParent:
		profile = &models.Parent{Phone: req.Phone, Occupation: req.Occupation}
	}

	if err := s.repo.Create(ctx, user, profile); err != nil {
		if msg, ok := uniqueViolationMessage(err); ok {
			return nil, appErrors.Clone(appErrors.ErrAlreadyExists, msg)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}

	detail, _ := json.Marshal(map[string]string{"username": user.Username, "role": string(user.Role)})
	if err := s.repo.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &actorID,
		Action:     models.AuditActionUserCreate,
		Resource:   "users",
		ResourceID: &user.ID,
		Detail:     detail,
		IPAddress:  req.IP,
		UserAgent:  req.UserAgent,
	}); err != nil {
		s.logger.Warn("failed to record user create audit log", zap.Error(err))
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, adminDashboardCacheKey)
	}

	s.logger.Info("user provisioned",
		zap.String("username", user.Username),
		zap.String("role", string(user.Role)))
	return user, nil
}

// EnsureDefaultAdmin seeds the bootstrap administrator account when it
// does not exist yet. Safe to run on every start.
func (s *UserService) EnsureDefaultAdmin(ctx context.Context, username, email, password string) error {
	if username == "" || password == "" {
		return nil
	}

	_, err := s.repo.FindByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check admin account")
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash admin password")
	}

	admin := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(passwordHash),
		Role:         models.RoleAdmin,
		FirstName:    "Portal",
		LastName:     "Admin",
		Active:       true,
	}
	if err := s.repo.Create(ctx, admin, nil); err != nil {
		if _, ok := uniqueViolationMessage(err); ok {
			return nil
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to seed admin account")
	}

	s.logger.Info("default admin account created", zap.String("username", username))
	return nil
}

// uniqueViolationMessage maps a Postgres unique violation to a user
// facing message keyed off the violated constraint.
func uniqueViolationMessage(err error) (string, bool) {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != "23505" {
		return "", false
	}
	switch {
	case strings.Contains(pqErr.Constraint, "username"):
		return "username already exists", true
	case strings.Contains(pqErr.Constraint, "email"):
		return "email already exists", true
	default:
		return "record already exists", true
	}
}
