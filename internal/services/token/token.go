// Package token issues and validates the signed bearer tokens presented on
// authenticated requests.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken  = errors.New("token: invalid token")
	ErrExpiredToken  = errors.New("token: token has expired")
	ErrTokenNotFound = errors.New("token: token not found")
	ErrInvalidClaims = errors.New("token: invalid claims")
)

// Service creates and validates HS256-signed bearer tokens.
// Create one instance at startup and reuse it.
type Service struct {
	secret []byte
	ttl    time.Duration
	parser *jwt.Parser
}

// New builds a Service from the process-wide secret key and a token lifetime
// in minutes.
func New(secret string, ttlMinutes int) *Service {
	parser := jwt.NewParser(
		// Only accept HS256 - prevents algorithm confusion attacks
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),

		// Reject tokens without an expiration time
		jwt.WithExpirationRequired(),

		// Enforce strict base64 encoding
		jwt.WithStrictDecoding(),
	)

	return &Service{
		secret: []byte(secret),
		ttl:    time.Duration(ttlMinutes) * time.Minute,
		parser: parser,
	}
}

// Issue creates a signed token for the given subject id with an absolute
// expiry ttl minutes from now.
func (s *Service) Issue(subject int64) (string, error) {
	now := time.Now()

	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(subject, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("creating token: %w", err)
	}

	return signed, nil
}

// Decode verifies a token's signature and expiry and returns the subject id.
// Callers treat any returned error as unauthenticated.
func (s *Service) Decode(tokenString string) (int64, error) {
	if tokenString == "" {
		return 0, ErrTokenNotFound
	}

	claims := &jwt.RegisteredClaims{}

	parsed, err := s.parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return 0, convertError(err)
	}

	if !parsed.Valid {
		return 0, ErrInvalidToken
	}

	subject, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: non-numeric subject", ErrInvalidClaims)
	}

	return subject, nil
}

// convertError transforms jwt library errors into our custom errors.
func convertError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrExpiredToken, err)
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: token is malformed", ErrInvalidToken)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: signature is invalid", ErrInvalidToken)
	case errors.Is(err, jwt.ErrTokenInvalidClaims):
		return fmt.Errorf("%w: %v", ErrInvalidClaims, err)
	default:
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
}
