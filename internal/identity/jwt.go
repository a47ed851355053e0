package identity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/yourorg/servicetracker/internal/domain"
)

// Claims carried by locally issued tokens. The subject is the identity ID;
// tenant resolution always happens server-side against the users table.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager issues and validates HS256 tokens for the built-in identity
// provider and for dev tooling.
type TokenManager struct {
	secret string
	issuer string
}

// NewTokenManager creates a token manager.
func NewTokenManager(secret, issuer string) *TokenManager {
	if secret == "" {
		secret = "change-me-in-production"
	}
	if issuer == "" {
		issuer = "servicetracker"
	}
	return &TokenManager{secret: secret, issuer: issuer}
}

// GenerateToken signs a token for the given identity.
func (tm *TokenManager) GenerateToken(id, email, name string, expiresIn time.Duration) (string, error) {
	if id == "" || email == "" {
		return "", fmt.Errorf("identity id and email required")
	}
	now := time.Now()
	claims := Claims{
		Email: email,
		Name:  name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			Issuer:    tm.issuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(tm.secret))
}

// ValidateToken parses and verifies a token.
func (tm *TokenManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(tm.secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token failed: %w", err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// ExtractToken pulls the bearer token out of an Authorization header value.
func ExtractToken(authHeader string) (string, error) {
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", fmt.Errorf("invalid authorization header")
	}
	return parts[1], nil
}

// JWTVerifier verifies locally issued HS256 tokens.
type JWTVerifier struct {
	tokens *TokenManager
}

// NewJWTVerifier creates a verifier backed by a token manager.
func NewJWTVerifier(tokens *TokenManager) *JWTVerifier {
	return &JWTVerifier{tokens: tokens}
}

// Verify implements Verifier.
func (v *JWTVerifier) Verify(_ context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, domain.Errorf(domain.EUnauthorized, "no authorization token provided")
	}
	claims, err := v.tokens.ValidateToken(token)
	if err != nil {
		return nil, domain.OpError(domain.EUnauthorized, "identity.JWTVerifier.Verify", err)
	}
	return &Identity{ID: claims.Subject, Email: claims.Email, Name: claims.Name}, nil
}
