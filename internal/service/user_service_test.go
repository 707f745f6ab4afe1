package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/greenfield-academy/portal/internal/models"
	appErrors "github.com/greenfield-academy/portal/pkg/errors"
)

type mockUserRepo struct {
	users       []models.User
	total       int
	byUsername  *models.User
	createErr   error
	created     *models.User
	profile     interface{}
	auditLogs   []*models.AuditLog
	listErr     error
	createCalls int
}

func (m *mockUserRepo) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	return m.users, m.total, nil
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.byUsername == nil {
		return nil, sql.ErrNoRows
	}
	return m.byUsername, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User, profile interface{}) error {
	m.createCalls++
	if m.createErr != nil {
		return m.createErr
	}
	user.ID = "new-id"
	m.created = user
	m.profile = profile
	return nil
}

func (m *mockUserRepo) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.auditLogs = append(m.auditLogs, log)
	return nil
}

type mockInvalidator struct {
	keys []string
}

func (m *mockInvalidator) Invalidate(ctx context.Context, key string) {
	m.keys = append(m.keys, key)
}

func TestUserServiceCreateStudent(t *testing.T) {
	repo := &mockUserRepo{}
	cache := &mockInvalidator{}
	svc := NewUserService(repo, cache, validator.New(), zap.NewNop())

	user, err := svc.Create(context.Background(), CreateUserRequest{
		Username:      "SStudent",
		Email:         "Sam@Example.com",
		Password:      "secret1",
		Role:          models.RoleStudent,
		FirstName:     "Sam",
		LastName:      "Student",
		StudentNumber: "S-1001",
		GradeLevel:    "10",
	}, "admin-1")
	require.NoError(t, err)

	assert.Equal(t, "sstudent", user.Username)
	assert.Equal(t, "sam@example.com", user.Email)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret1")))

	student, ok := repo.profile.(*models.Student)
	require.True(t, ok)
	assert.Equal(t, "S-1001", student.StudentNumber)

	require.Len(t, repo.auditLogs, 1)
	assert.Equal(t, models.AuditActionUserCreate, repo.auditLogs[0].Action)
	assert.Contains(t, cache.keys, adminDashboardCacheKey)
}

func TestUserServiceCreateAdminHasNoProfile(t *testing.T) {
	repo := &mockUserRepo{}
	svc := NewUserService(repo, &mockInvalidator{}, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateUserRequest{
		Username:  "root2",
		Email:     "root2@example.com",
		Password:  "secret1",
		Role:      models.RoleAdmin,
		FirstName: "Root",
		LastName:  "Two",
	}, "admin-1")
	require.NoError(t, err)
	assert.Nil(t, repo.profile)
}

func TestUserServiceCreateRejectsUnknownRole(t *testing.T) {
	repo := &mockUserRepo{}
	svc := NewUserService(repo, &mockInvalidator{}, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateUserRequest{
		Username:  "ghost",
		Email:     "ghost@example.com",
		Password:  "secret1",
		Role:      "superuser",
		FirstName: "G",
		LastName:  "Host",
	}, "admin-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Zero(t, repo.createCalls)
}

func TestUserServiceCreateDuplicateUsername(t *testing.T) {
	repo := &mockUserRepo{createErr: &pq.Error{Code: "23505", Constraint: "users_username_key"}}
	svc := NewUserService(repo, &mockInvalidator{}, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateUserRequest{
		Username:  "jdoe",
		Email:     "jdoe@example.com",
		Password:  "secret1",
		Role:      models.RoleTeacher,
		FirstName: "Jane",
		LastName:  "Doe",
	}, "admin-1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrAlreadyExists.Code, appErr.Code)
	assert.Equal(t, "username already exists", appErr.Message)
}

func TestUserServiceCreateDuplicateEmail(t *testing.T) {
	repo := &mockUserRepo{createErr: &pq.Error{Code: "23505", Constraint: "users_email_key"}}
	svc := NewUserService(repo, &mockInvalidator{}, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateUserRequest{
		Username:  "jdoe",
		Email:     "jdoe@example.com",
		Password:  "secret1",
		Role:      models.RoleTeacher,
		FirstName: "Jane",
		LastName:  "Doe",
	}, "admin-1")
	require.Error(t, err)
	assert.Equal(t, "email already exists", appErrors.FromError(err).Message)
}

func TestUserServiceListDefaultsPagination(t *testing.T) {
	repo := &mockUserRepo{users: []models.User{{ID: "u1"}}, total: 41}
	svc := NewUserService(repo, &mockInvalidator{}, validator.New(), zap.NewNop())

	users, pagination, err := svc.List(context.Background(), models.UserFilter{})
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 20, pagination.PageSize)
	assert.Equal(t, 41, pagination.TotalCount)
	assert.Equal(t, 3, pagination.TotalPages())
}

func TestEnsureDefaultAdminSeedsWhenMissing(t *testing.T) {
	repo := &mockUserRepo{}
	svc := NewUserService(repo, &mockInvalidator{}, validator.New(), zap.NewNop())

	err := svc.EnsureDefaultAdmin(context.Background(), "admin", "admin@example.com", "admin123")
	require.NoError(t, err)
	require.NotNil(t, repo.created)
	assert.Equal(t, models.RoleAdmin, repo.created.Role)
	assert.Equal(t, "admin", repo.created.Username)
}

func TestEnsureDefaultAdminSkipsWhenPresent(t *testing.T) {
	repo := &mockUserRepo{byUsername: &models.User{ID: "u1", Username: "admin"}}
	svc := NewUserService(repo, &mockInvalidator{}, validator.New(), zap.NewNop())

	err := svc.EnsureDefaultAdmin(context.Background(), "admin", "admin@example.com", "admin123")
	require.NoError(t, err)
	assert.Zero(t, repo.createCalls)
}
