// Package auth gates the detailed status endpoint behind a bearer JWT (the
// status feed has no auth check), adapted from the teacher's JWT handler (HS256, claims-based) with
// the rate-limiting extension dropped — spec.md's Non-goals exclude
// anything beyond the worker pool's own concurrency cap.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/netsweep/dispatchd/internal/logging"
)

// ErrMissingSecret is returned when a Handler is built with an empty secret.
var ErrMissingSecret = errors.New("auth: secret key must be provided")

// Claims carries the subject and expiry for a status-access token.
type Claims struct {
	Subject string `json:"sub"`
	jwt.RegisteredClaims
}

// Handler issues and validates HS256 bearer tokens for the status surface.
type Handler struct {
	secret []byte
	logger *logging.Logger
}

// NewHandler builds a Handler. secretKey must be non-empty.
func NewHandler(secretKey string, logger *logging.Logger) (*Handler, error) {
	if strings.TrimSpace(secretKey) == "" {
		return nil, ErrMissingSecret
	}
	if logger == nil {
		logger = logging.GetLogger("auth")
	}
	return &Handler{secret: []byte(secretKey), logger: logger}, nil
}

// IssueToken creates a token for subject, valid for ttl.
func (h *Handler) IssueToken(subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Subject: subject,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(h.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// ValidateBearer parses the "Bearer <token>" value of an Authorization
// header and returns the validated claims.
func (h *Handler) ValidateBearer(authorizationHeader string) (*Claims, error) {
	const prefix = "Bearer "
	if !strings.HasPrefix(authorizationHeader, prefix) {
		return nil, fmt.Errorf("auth: missing bearer prefix")
	}
	return h.Validate(strings.TrimPrefix(authorizationHeader, prefix))
}

// Validate parses and verifies a raw token string.
func (h *Handler) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("auth: unexpected signing method %v", t.Header["alg"])
		}
		return h.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("auth: validate token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("auth: token invalid")
	}
	return claims, nil
}
