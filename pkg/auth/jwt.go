package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any token that fails verification:
// bad signature, malformed structure, or past expiry.
var ErrInvalidToken = errors.New("invalid token")

const DefaultTokenExpiry = 10 * time.Hour

// TokenClaims carries the verified contents of an access token.
type TokenClaims struct {
	Subject   string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenService issues and validates signed bearer tokens. Tokens are
// self-contained: validation needs no lookup beyond the signing secret.
type TokenService interface {
	Generate(subject, role string) (string, error)
	Validate(token string) (*TokenClaims, error)
}

type jwtService struct {
	secret []byte
	expiry time.Duration
}

// NewJWTService constructs a TokenService signing with an HMAC secret.
// An empty secret is a configuration error and is rejected up front.
func NewJWTService(secret string, expiry time.Duration) (TokenService, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret cannot be empty")
	}
	if expiry <= 0 {
		expiry = DefaultTokenExpiry
	}
	return &jwtService{
		secret: []byte(secret),
		expiry: expiry,
	}, nil
}

func (s *jwtService) Generate(subject, role string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"iat":  now.Unix(),
		"exp":  now.Add(s.expiry).Unix(),
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *jwtService) Validate(tokenStr string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	subject, ok := claims["sub"].(string)
	if !ok || subject == "" {
		return nil, ErrInvalidToken
	}
	role, _ := claims["role"].(string)

	out := &TokenClaims{
		Subject: subject,
		Role:    role,
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		out.IssuedAt = iat.Time
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}
