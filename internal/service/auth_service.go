package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"minima-be/internal/apperror"
	"minima-be/internal/config"
	"minima-be/internal/entity"
	"minima-be/internal/pkg/logger"
	"minima-be/internal/repository/contract"
	"minima-be/pkg/utils"
)

type IAuthService interface {
	// IssueCredential checks the supplied secret and, on success, returns a
	// signed session token bound to the client origin. Repeated failures from
	// one origin trip the rate limit before the secret is even considered.
	IssueCredential(ctx context.Context, secret, username, origin string) (string, error)

	// Validate verifies a session token and the origin binding, returning the
	// caller's identity. Runs ahead of every protected route.
	Validate(token, currentOrigin string) (*entity.Identity, error)

	CookieName() string
	SessionTTL() time.Duration
}

// sessionClaims is the credential payload: authorization marker, bound
// origin and the login identity, on top of the registered expiry claims.
type sessionClaims struct {
	Authorized bool   `json:"auth"`
	OriginIP   string `json:"ip"`
	Identity   string `json:"identity"`
	jwt.RegisteredClaims
}

type authService struct {
	cfg      config.AuthConfig
	failures contract.FailureCounter
	logger   logger.ILogger
}

func NewAuthService(cfg config.AuthConfig, failures contract.FailureCounter, log logger.ILogger) IAuthService {
	return &authService{
		cfg:      cfg,
		failures: failures,
		logger:   log,
	}
}

func (s *authService) IssueCredential(ctx context.Context, secret, username, origin string) (string, error) {
	count, err := s.failures.Failures(ctx, origin)
	if err != nil {
		return "", fmt.Errorf("read failure counter: %w", err)
	}
	if count >= s.cfg.MaxFailures {
		s.logger.Warn("auth", "login blocked by rate limit", map[string]interface{}{
			"origin":   origin,
			"failures": count,
		})
		return "", fmt.Errorf("too many failed attempts from %s: %w", origin, apperror.ErrRateLimited)
	}

	if !s.secretMatches(secret) {
		if err := s.failures.RecordFailure(ctx, origin); err != nil {
			s.logger.Error("auth", "failed to record login failure", map[string]interface{}{"error": err.Error()})
		}
		return "", apperror.Unauthorizedf("incorrect secret from %s", origin)
	}

	if err := s.failures.Reset(ctx, origin); err != nil {
		s.logger.Error("auth", "failed to reset failure counter", map[string]interface{}{"error": err.Error()})
	}

	now := time.Now()
	claims := sessionClaims{
		Authorized: true,
		OriginIP:   origin,
		Identity:   username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.SessionTTL())),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JwtSecret))
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}

	s.logger.Info("auth", "session issued", map[string]interface{}{
		"identity": username,
		"origin":   origin,
	})
	return token, nil
}

func (s *authService) Validate(token, currentOrigin string) (*entity.Identity, error) {
	if token == "" {
		return nil, apperror.Unauthorizedf("missing session token")
	}

	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JwtSecret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, apperror.Unauthorizedf("invalid session token")
	}

	if !claims.Authorized {
		return nil, apperror.Unauthorizedf("session not authorized")
	}
	if s.cfg.BindOriginIP && claims.OriginIP != currentOrigin {
		return nil, apperror.Unauthorizedf("session origin mismatch")
	}

	return &entity.Identity{
		Username:     claims.Identity,
		Origin:       claims.OriginIP,
		PartitionKey: PartitionKey(claims.Identity, claims.OriginIP),
	}, nil
}

func (s *authService) CookieName() string {
	return s.cfg.CookieName
}

func (s *authService) SessionTTL() time.Duration {
	return time.Duration(s.cfg.SessionTTLs) * time.Second
}

func (s *authService) secretMatches(secret string) bool {
	if s.cfg.SecretHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(s.cfg.SecretHash), []byte(secret)) == nil
	}
	if s.cfg.Secret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(secret), []byte(s.cfg.Secret)) == 1
}

// PartitionKey derives the per-user storage partition from the verified
// identity claims. History records and document indices for different users
// never share a partition.
func PartitionKey(identity, origin string) string {
	return utils.SafeKey(identity + "@" + origin)
}
