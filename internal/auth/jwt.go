// Package auth verifies bearer credentials and decides who may change a blog.
//
// TOKEN FLOW:
//  1. POST /api/login checks the password and calls TokenService.Generate
//  2. The client sends "Authorization: Bearer <jwt>" on later requests
//  3. RequireUser/OptionalAuth call TokenService.Verify, then resolve the
//     subject to a stored user and put both in the request context
//
// JWT STRUCTURE (three base64-encoded parts separated by dots):
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Header: {"alg":"HS256","typ":"JWT"}
//	- Payload: {"sub":"<user id>","username":"root","iss":"bloglist","iat":...,"exp":...}
//	- Signature: HMAC-SHA256(header+"."+payload, secretKey)
//
// Verification needs only the secret. Whether the subject still exists is a
// separate question answered by the user store (see UserResolver).
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sakif/bloglist/internal/apperror"
)

const issuer = "bloglist"

// Causes attached to apperror.ErrUnauthenticated. Handlers only look at the
// sentinel; tests and logs can tell the reasons apart.
var (
	ErrMissingToken   = errors.New("auth: token missing")
	ErrMalformedToken = errors.New("auth: token malformed")
	ErrInvalidToken   = errors.New("auth: token invalid")
	ErrMissingSubject = errors.New("auth: token has no subject")
	ErrUnknownUser    = errors.New("auth: token subject does not resolve to a user")
)

// Identity is the verified content of a token.
type Identity struct {
	SubjectID string
	Username  string
}

// TokenService handles JWT creation and validation.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService that signs with secret and issues
// tokens valid for ttl.
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("auth: token lifetime must be positive, got %s", ttl)
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}, nil
}

// claims is the JWT payload: the registered claims plus the username, which
// clients display without another round trip.
type claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Generate creates and signs a token for the given user.
func (s *TokenService) Generate(userID, username string) (string, error) {
	return s.GenerateWithDuration(userID, username, s.ttl)
}

// GenerateWithDuration creates a token with a custom lifetime.
// A negative d yields a token that is already expired, which tests use.
func (s *TokenService) GenerateWithDuration(userID, username string, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Verify parses and checks a token and returns the identity it carries.
//
// Every failure is an *apperror.AppError of kind ErrUnauthenticated whose
// cause is one of ErrMissingToken, ErrMalformedToken, ErrInvalidToken or
// ErrMissingSubject.
//
// jwt.WithValidMethods pins HS256, so a token with "alg":"none" or an RSA
// header fails here instead of reaching the key function.
func (s *TokenService) Verify(tokenStr string) (Identity, error) {
	if tokenStr == "" {
		return Identity{}, apperror.Unauthenticated(ErrMissingToken, "token missing")
	}

	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return Identity{}, apperror.Unauthenticated(ErrMalformedToken, "token malformed")
		case errors.Is(err, jwt.ErrTokenExpired):
			return Identity{}, apperror.Unauthenticated(fmt.Errorf("%w: %w", ErrInvalidToken, err), "token expired")
		default:
			return Identity{}, apperror.Unauthenticated(fmt.Errorf("%w: %w", ErrInvalidToken, err), "token invalid")
		}
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return Identity{}, apperror.Unauthenticated(ErrInvalidToken, "token invalid")
	}

	if c.Subject == "" {
		return Identity{}, apperror.Unauthenticated(ErrMissingSubject, "unknown user")
	}

	return Identity{SubjectID: c.Subject, Username: c.Username}, nil
}
