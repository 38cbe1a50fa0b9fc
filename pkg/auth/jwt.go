package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token validation errors
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrMissingClaims    = errors.New("token missing required claims")
)

// Claims represents the identity claims carried by an access token
type Claims struct {
	UserID string   `json:"sub"`
	Email  string   `json:"email,omitempty"`
	Roles  []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// JWTConfig configures token validation
type JWTConfig struct {
	SigningMethod string
	SecretKey     string
	Issuer        string
	Audience      []string
}

// JWTValidator validates bearer tokens
type JWTValidator struct {
	config JWTConfig
}

// NewJWTValidator creates a validator for the given configuration
func NewJWTValidator(config JWTConfig) (*JWTValidator, error) {
	if config.SecretKey == "" {
		return nil, errors.New("jwt secret key is required")
	}
	if config.SigningMethod == "" {
		config.SigningMethod = "HS256"
	}
	if config.SigningMethod != "HS256" {
		return nil, fmt.Errorf("unsupported signing method %q", config.SigningMethod)
	}
	return &JWTValidator{config: config}, nil
}

// ValidateToken parses and validates a token, returning its claims
func (v *JWTValidator) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256"}),
	}
	if v.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.config.Issuer))
	}
	if len(v.config.Audience) > 0 {
		opts = append(opts, jwt.WithAudience(v.config.Audience[0]))
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(v.config.SecretKey), nil
	}, opts...)

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrInvalidSignature
		default:
			return nil, ErrInvalidToken
		}
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.UserID == "" {
		claims.UserID = claims.Subject
	}
	if claims.UserID == "" {
		return nil, ErrMissingClaims
	}

	return claims, nil
}

// JWTGeneratorConfig configures token generation
type JWTGeneratorConfig struct {
	SigningMethod string
	SecretKey     string
	Issuer        string
	Audience      []string
	ExpiryTime    time.Duration
}

// JWTGenerator issues signed access tokens. Used by local development and
// tests; production tokens come from the identity provider.
type JWTGenerator struct {
	config JWTGeneratorConfig
}

// NewJWTGenerator creates a token generator
func NewJWTGenerator(config JWTGeneratorConfig) (*JWTGenerator, error) {
	if config.SecretKey == "" {
		return nil, errors.New("jwt secret key is required")
	}
	if config.ExpiryTime == 0 {
		config.ExpiryTime = 24 * time.Hour
	}
	return &JWTGenerator{config: config}, nil
}

// GenerateToken creates a signed token for the given identity
func (g *JWTGenerator) GenerateToken(userID, email string, roles []string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Email:  email,
		Roles:  roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			Issuer:    g.config.Issuer,
			Audience:  g.config.Audience,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(g.config.ExpiryTime)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(g.config.SecretKey))
}

// UserContext carries the authenticated user identity through a request
type UserContext struct {
	UserID string
	Email  string
	Roles  []string
}

type userContextKey struct{}

// SetUserInContext attaches the user identity to the context
func SetUserInContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// GetUserFromContext extracts the user identity from the context
func GetUserFromContext(ctx context.Context) (*UserContext, error) {
	user, ok := ctx.Value(userContextKey{}).(*UserContext)
	if !ok || user == nil {
		return nil, errors.New("no user in context")
	}
	return user, nil
}
