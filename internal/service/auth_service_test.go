package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"advisor-chat-be/internal/dto"
	"advisor-chat-be/internal/pkg/logger"
	"advisor-chat-be/internal/pkg/serverutils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestLoginIssuesAdminToken(t *testing.T) {
	svc, err := NewAuthService("", "4you2025", "secret", time.Hour, logger.NewNopLogger())
	require.NoError(t, err)

	res, err := svc.Login(context.Background(), &dto.AdminLoginRequest{Password: "4you2025"})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), res.ExpiresAt, 5*time.Second)

	token, err := jwt.Parse(res.AccessToken, func(*jwt.Token) (interface{}, error) { return []byte("secret"), nil })
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, serverutils.AdminRole, claims["role"])
}

func TestLoginWithConfiguredHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hashed-pass"), bcrypt.MinCost)
	require.NoError(t, err)

	svc, err := NewAuthService(string(hash), "ignored", "secret", time.Hour, logger.NewNopLogger())
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), &dto.AdminLoginRequest{Password: "hashed-pass"})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), &dto.AdminLoginRequest{Password: "ignored"})
	assert.Equal(t, http.StatusUnauthorized, appErrorCode(t, err))
}

func TestLoginDisabledWithoutPassword(t *testing.T) {
	svc, err := NewAuthService("", "", "secret", time.Hour, logger.NewNopLogger())
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), &dto.AdminLoginRequest{Password: "anything"})
	assert.Equal(t, http.StatusForbidden, appErrorCode(t, err))
	assert.ErrorIs(t, err, ErrAdminLoginDisabled)
}
