package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/greenfield-academy/portal/internal/models"
	appErrors "github.com/greenfield-academy/portal/pkg/errors"
)

type mockAuthRepo struct {
	userByUsername   *models.User
	userByID         *models.User
	findByIDErr      error
	auditLogs        []*models.AuditLog
	lastLoginUpdated bool
}

func (m *mockAuthRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.userByUsername == nil {
		return nil, sql.ErrNoRows
	}
	return m.userByUsername, nil
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if m.findByIDErr != nil {
		return nil, m.findByIDErr
	}
	if m.userByID != nil {
		return m.userByID, nil
	}
	if m.userByUsername != nil {
		return m.userByUsername, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.lastLoginUpdated = true
	return nil
}

func (m *mockAuthRepo) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.auditLogs = append(m.auditLogs, log)
	return nil
}

func activeUser(password string) *models.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return &models.User{
		ID:           "u1",
		Username:     "jdoe",
		Email:        "jdoe@example.com",
		PasswordHash: string(hash),
		Role:         models.RoleTeacher,
		FirstName:    "Jane",
		LastName:     "Doe",
		Active:       true,
	}
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	repo := &mockAuthRepo{userByUsername: activeUser("password")}
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{Secret: "secret", TTL: time.Hour, RememberTTL: 24 * time.Hour})

	session, err := svc.Login(context.Background(), models.LoginRequest{Username: "jdoe", Password: "password"})
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.True(t, repo.lastLoginUpdated)
	require.Len(t, repo.auditLogs, 1)
	assert.Equal(t, models.AuditActionLogin, repo.auditLogs[0].Action)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	repo := &mockAuthRepo{userByUsername: activeUser("password")}
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{Secret: "secret", TTL: time.Hour})

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "jdoe", Password: "nope"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
	assert.Equal(t, "invalid username or password", appErr.Message)
}

func TestAuthServiceLoginUnknownUserSameMessage(t *testing.T) {
	svc := NewAuthService(&mockAuthRepo{}, validator.New(), zap.NewNop(), AuthConfig{Secret: "secret", TTL: time.Hour})

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "ghost", Password: "password"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, "invalid username or password", appErr.Message)
}

func TestAuthServiceLoginInactive(t *testing.T) {
	user := activeUser("password")
	user.Active = false
	repo := &mockAuthRepo{userByUsername: user}
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{Secret: "secret", TTL: time.Hour})

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "jdoe", Password: "password"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRememberExtendsSession(t *testing.T) {
	repo := &mockAuthRepo{userByUsername: activeUser("password")}
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{Secret: "secret", TTL: time.Hour, RememberTTL: 24 * time.Hour})

	short, err := svc.Login(context.Background(), models.LoginRequest{Username: "jdoe", Password: "password"})
	require.NoError(t, err)
	long, err := svc.Login(context.Background(), models.LoginRequest{Username: "jdoe", Password: "password", Remember: true})
	require.NoError(t, err)
	assert.True(t, long.ExpiresAt.After(short.ExpiresAt))
}

func TestAuthServiceVerifySession(t *testing.T) {
	repo := &mockAuthRepo{userByUsername: activeUser("password")}
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{Secret: "secret", TTL: time.Hour})

	session, err := svc.Login(context.Background(), models.LoginRequest{Username: "jdoe", Password: "password"})
	require.NoError(t, err)

	principal, err := svc.VerifySession(context.Background(), session.Token)
	require.NoError(t, err)
	assert.Equal(t, "u1", principal.UserID)
	assert.Equal(t, models.RoleTeacher, principal.Role)
	assert.Equal(t, "Jane Doe", principal.Name)
}

func TestAuthServiceVerifySessionTampered(t *testing.T) {
	repo := &mockAuthRepo{userByUsername: activeUser("password")}
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{Secret: "secret", TTL: time.Hour})

	session, err := svc.Login(context.Background(), models.LoginRequest{Username: "jdoe", Password: "password"})
	require.NoError(t, err)

	other := NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{Secret: "different", TTL: time.Hour})
	_, err = other.VerifySession(context.Background(), session.Token)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceVerifySessionDeactivatedAccount(t *testing.T) {
	user := activeUser("password")
	repo := &mockAuthRepo{userByUsername: user}
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{Secret: "secret", TTL: time.Hour})

	session, err := svc.Login(context.Background(), models.LoginRequest{Username: "jdoe", Password: "password"})
	require.NoError(t, err)

	user.Active = false
	_, err = svc.VerifySession(context.Background(), session.Token)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLogoutWritesAudit(t *testing.T) {
	repo := &mockAuthRepo{}
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{Secret: "secret", TTL: time.Hour})

	svc.Logout(context.Background(), models.Principal{UserID: "u1", Role: models.RoleAdmin, Name: "Admin"}, "127.0.0.1", "test")
	require.Len(t, repo.auditLogs, 1)
	assert.Equal(t, models.AuditActionLogout, repo.auditLogs[0].Action)
}
