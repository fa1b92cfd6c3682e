package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/boddenberg/commission-desk-go/internal/domain"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var authTracer = otel.Tracer("service/auth")

const (
	maxFailedAttempts = 5
	lockDuration      = 15 * time.Minute
)

// AuthService signs users in against the desk's user collection and issues
// access tokens. Failed attempts are counted in memory per username.
type AuthService struct {
	desk      *Desk
	jwtSecret []byte
	accessTTL time.Duration
	logger    *zap.Logger

	mu       sync.Mutex
	failures map[string]*loginFailures
}

type loginFailures struct {
	attempts    int
	lockedUntil time.Time
}

// NewAuthService creates a new auth service.
func NewAuthService(desk *Desk, jwtSecret string, accessTTL time.Duration, logger *zap.Logger) *AuthService {
	return &AuthService{
		desk:      desk,
		jwtSecret: []byte(jwtSecret),
		accessTTL: accessTTL,
		logger:    logger,
		failures:  make(map[string]*loginFailures),
	}
}

// ============================================================
// Login — POST /v1/auth/login
// ============================================================

func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Login")
	defer span.End()

	username := strings.TrimSpace(req.Username)
	span.SetAttributes(attribute.String("username", username))
	if username == "" || req.Password == "" {
		return nil, &domain.ErrValidation{Field: "username", Message: "username and password are required"}
	}

	key := strings.ToLower(username)
	if until, locked := s.lockedUntil(key); locked {
		remaining := time.Until(until).Minutes()
		s.logger.Warn("login: account temporarily locked",
			zap.String("username", username),
			zap.Float64("remaining_minutes", remaining),
		)
		return nil, &domain.ErrUnauthorized{
			Message: fmt.Sprintf("Conta temporariamente bloqueada. Tente novamente em %.0f minutos", remaining),
		}
	}

	user, ok := s.desk.userByUsername(username)
	if !ok || !checkPassword(user.Password, req.Password) {
		attempts := s.recordFailure(key)
		s.logger.Warn("login: invalid credentials",
			zap.String("username", username),
			zap.Int("attempts", attempts),
			zap.Int("max", maxFailedAttempts),
		)
		return nil, &domain.ErrUnauthorized{Message: "Credenciais inválidas"}
	}
	s.clearFailures(key)

	if !isHashed(user.Password) {
		s.upgradePassword(ctx, user, req.Password)
	}

	accessToken, err := s.signAccessToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	s.desk.Record(user, AuditEntry{
		Action:     "login",
		TargetType: "auth",
		TargetID:   user.ID,
		Details:    "Login no sistema",
	})
	s.logger.Info("user logged in", zap.String("user_id", user.ID))

	return &domain.LoginResponse{
		AccessToken: accessToken,
		ExpiresIn:   int(s.accessTTL.Seconds()),
		User:        user.Public(),
	}, nil
}

// ============================================================
// Logout — POST /v1/auth/logout
// ============================================================

// Logout records the sign-out. Access tokens are stateless and simply
// expire; the client discards its copy.
func (s *AuthService) Logout(ctx context.Context, user domain.User) {
	_, span := authTracer.Start(ctx, "AuthService.Logout")
	defer span.End()

	s.desk.Record(user, AuditEntry{
		Action:     "logout",
		TargetType: "auth",
		TargetID:   user.ID,
		Details:    "Logout do sistema",
	})
	s.logger.Info("user logged out", zap.String("user_id", user.ID))
}

// upgradePassword replaces a legacy plaintext password with its hash once
// the user proves knowledge of it.
func (s *AuthService) upgradePassword(ctx context.Context, user domain.User, password string) {
	hash, err := hashPassword(password)
	if err != nil {
		s.logger.Warn("login: password upgrade failed", zap.String("user_id", user.ID), zap.Error(err))
		return
	}
	if s.desk.setPasswordHash(ctx, user.ID, user.Password, hash) {
		s.logger.Info("login: upgraded legacy password", zap.String("user_id", user.ID))
	}
}

func (s *AuthService) lockedUntil(key string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.failures[key]
	if !ok || f.lockedUntil.IsZero() {
		return time.Time{}, false
	}
	if time.Now().After(f.lockedUntil) {
		delete(s.failures, key)
		return time.Time{}, false
	}
	return f.lockedUntil, true
}

func (s *AuthService) recordFailure(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.failures[key]
	if !ok {
		f = &loginFailures{}
		s.failures[key] = f
	}
	f.attempts++
	if f.attempts >= maxFailedAttempts {
		f.lockedUntil = time.Now().Add(lockDuration)
	}
	return f.attempts
}

func (s *AuthService) clearFailures(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, key)
}
