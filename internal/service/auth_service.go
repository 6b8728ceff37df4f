package service

import (
	"context"
	"errors"
	"time"

	"advisor-chat-be/internal/dto"
	"advisor-chat-be/internal/pkg/apperror"
	"advisor-chat-be/internal/pkg/logger"
	"advisor-chat-be/internal/pkg/serverutils"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var ErrAdminLoginDisabled = errors.New("admin password is not configured")

type IAuthService interface {
	Login(ctx context.Context, req *dto.AdminLoginRequest) (*dto.AdminLoginResponse, error)
}

type authService struct {
	passwordHash []byte
	jwtSecret    []byte
	tokenTTL     time.Duration
	logger       logger.ILogger
	now          func() time.Time
}

// NewAuthService gates the admin surface behind a single password. A plain
// password is hashed once here so every check goes through bcrypt.
func NewAuthService(passwordHash, password, jwtSecret string, tokenTTL time.Duration, log logger.ILogger) (IAuthService, error) {
	hash := []byte(passwordHash)
	if len(hash) == 0 && password != "" {
		generated, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		hash = generated
	}
	if len(hash) == 0 {
		log.Warn("AUTH", "No admin password configured, admin login is disabled", nil)
	}

	return &authService{
		passwordHash: hash,
		jwtSecret:    []byte(jwtSecret),
		tokenTTL:     tokenTTL,
		logger:       log,
		now:          time.Now,
	}, nil
}

func (s *authService) Login(ctx context.Context, req *dto.AdminLoginRequest) (*dto.AdminLoginResponse, error) {
	if len(s.passwordHash) == 0 {
		return nil, apperror.Forbidden("Admin login is disabled", ErrAdminLoginDisabled)
	}

	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(req.Password)); err != nil {
		s.logger.Warn("AUTH", "Admin login rejected", nil)
		return nil, apperror.Unauthorized("Invalid credentials")
	}

	expiresAt := s.now().Add(s.tokenTTL)
	claims := jwt.MapClaims{
		"role": serverutils.AdminRole,
		"iat":  s.now().Unix(),
		"exp":  expiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, apperror.Internal("Failed to sign token", err)
	}

	s.logger.Info("AUTH", "Admin logged in", map[string]interface{}{"expires_at": expiresAt})
	return &dto.AdminLoginResponse{AccessToken: signed, ExpiresAt: expiresAt}, nil
}
