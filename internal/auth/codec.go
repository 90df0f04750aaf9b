// Package auth issues and verifies the signed session tokens carried in the
// storefront and admin cookies.
package auth

import (
	"errors"
	"fmt"
	"time"

	"ecommerce-platform/internal/config"
	"ecommerce-platform/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

// Claims are the facts embedded in a session token.
type Claims struct {
	SubjectID string
	Principal models.Principal
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// tokenClaims carries the issue time in milliseconds next to the whole-second
// iat so revocation cut-offs can be compared at that precision.
type tokenClaims struct {
	Principal      string `json:"pt"`
	IssuedAtMillis int64  `json:"iat_ms,omitempty"`
	jwt.RegisteredClaims
}

// Codec signs and verifies HS256 session tokens with a process-wide secret.
type Codec struct {
	secret []byte
	logger logrus.FieldLogger
	now    func() time.Time
}

// NewCodec returns a codec for secret. An empty secret is a configuration
// error: the process must not run with unsigned sessions.
func NewCodec(secret string, logger logrus.FieldLogger) (*Codec, error) {
	if secret == "" {
		return nil, &config.ConfigurationError{Key: "SESSION_SECRET", Reason: "is required"}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Codec{secret: []byte(secret), logger: logger, now: time.Now}, nil
}

// Encrypt signs claims. IssuedAt defaults to now.
func (c *Codec) Encrypt(claims Claims) (string, error) {
	if claims.SubjectID == "" {
		return "", errors.New("session subject is required")
	}
	if claims.ExpiresAt.IsZero() {
		return "", errors.New("session expiry is required")
	}
	issuedAt := claims.IssuedAt
	if issuedAt.IsZero() {
		issuedAt = c.now()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		Principal:      string(claims.Principal),
		IssuedAtMillis: issuedAt.UnixMilli(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.SubjectID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
		},
	})

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Decrypt verifies token and returns its claims. Any failure, including an
// empty token, yields nil; verification errors are logged, never returned.
func (c *Codec) Decrypt(token string) *Claims {
	if token == "" {
		return nil
	}

	parsed := &tokenClaims{}
	_, err := jwt.ParseWithClaims(token, parsed, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			c.logger.Debug("Session token expired")
		} else {
			c.logger.WithError(err).Warn("Session token rejected")
		}
		return nil
	}

	if parsed.Subject == "" {
		c.logger.Warn("Session token has no subject")
		return nil
	}

	claims := &Claims{
		SubjectID: parsed.Subject,
		Principal: models.Principal(parsed.Principal),
		ExpiresAt: parsed.ExpiresAt.Time,
	}
	switch {
	case parsed.IssuedAtMillis > 0:
		claims.IssuedAt = time.UnixMilli(parsed.IssuedAtMillis).UTC()
	case parsed.IssuedAt != nil:
		claims.IssuedAt = parsed.IssuedAt.Time
	}
	return claims
}
