package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/support-crm/internal/config"
	"github.com/spec-kit/support-crm/internal/domain"
	"github.com/spec-kit/support-crm/internal/repository/memory"
	apperrors "github.com/spec-kit/support-crm/pkg/errorutil"
)

func newAuthService() *AuthService {
	store := memory.NewStore()
	cfg := config.Config{}
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.AccessTokenTTLMinutes = 60
	cfg.Auth.BcryptCost = bcrypt.MinCost
	return NewAuthService(cfg, store.Users())
}

func TestAuthRegisterAndLogin(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()

	user, token, exp, err := svc.Register(ctx, "ada", "ada@crm.test", "hunter22", "Ada Lovelace", "")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, domain.RoleAgent, user.Role, "role defaults to agent")
	assert.Equal(t, "Ada Lovelace", user.FullName)
	assert.True(t, user.Active)
	assert.NotEmpty(t, token)
	assert.False(t, exp.IsZero())
	assert.NotEqual(t, "hunter22", user.PasswordHash)

	claims, err := svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.Subject)
	assert.Equal(t, "ada", claims.Username)

	loggedIn, token2, _, err := svc.Login(ctx, "ada", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.NotEmpty(t, token2)
}

func TestAuthRegister_DuplicateUsername(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()
	_, _, _, err := svc.Register(ctx, "ada", "ada@crm.test", "pw", "", domain.RoleAgent)
	require.NoError(t, err)

	_, _, _, err = svc.Register(ctx, "ada", "other@crm.test", "pw", "", domain.RoleAgent)
	assertCode(t, err, apperrors.CodeConflict)
}

func TestAuthRegister_UnknownRole(t *testing.T) {
	svc := newAuthService()
	_, _, _, err := svc.Register(context.Background(), "ada", "ada@crm.test", "pw", "", domain.UserRole("WIZARD"))
	assertCode(t, err, apperrors.CodeValidationFailed)
}

func TestAuthLogin_WrongPassword(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()
	_, _, _, err := svc.Register(ctx, "ada", "ada@crm.test", "hunter22", "", domain.RoleAgent)
	require.NoError(t, err)

	_, _, _, err = svc.Login(ctx, "ada", "wrong")
	assertCode(t, err, apperrors.CodeUnauthorized)
}

func TestAuthLogin_UnknownUser(t *testing.T) {
	svc := newAuthService()
	_, _, _, err := svc.Login(context.Background(), "nobody", "pw")
	assertCode(t, err, apperrors.CodeUnauthorized)
}
