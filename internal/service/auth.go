package service

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/yourorg/servicetracker/internal/domain"
	"github.com/yourorg/servicetracker/internal/identity"
	"golang.org/x/crypto/bcrypt"
)

// AuthService is the built-in identity provider for local mode: it stores
// email/password credentials and issues the HS256 tokens the verifier
// accepts. In remote mode this service is not mounted at all.
type AuthService struct {
	credentials domain.CredentialRepository
	tokens      *identity.TokenManager
	tokenTTL    time.Duration
	logger      *slog.Logger
}

// NewAuthService creates an authentication service
func NewAuthService(
	credentials domain.CredentialRepository,
	tokens *identity.TokenManager,
	tokenTTL time.Duration,
	logger *slog.Logger,
) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		credentials: credentials,
		tokens:      tokens,
		tokenTTL:    tokenTTL,
		logger:      logger,
	}
}

// SignupResult represents signup response
type SignupResult struct {
	IdentityID string `json:"identityId"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Token      string `json:"token"`
}

// LoginResult represents login response
type LoginResult struct {
	IdentityID string `json:"identityId"`
	Email      string `json:"email"`
	Token      string `json:"token"`
	ExpiresIn  int    `json:"expiresIn"` // seconds
	TokenType  string `json:"tokenType"`
}

// Signup creates a new local identity. The identity is not linked to any
// business yet; onboarding does that.
func (s *AuthService) Signup(email, name, password string) (*SignupResult, error) {
	if blank(email) || blank(password) {
		return nil, domain.Errorf(domain.EInvalid, "email and password are required")
	}
	if !validEmail(email) {
		return nil, domain.Errorf(domain.EInvalid, "invalid email format")
	}
	if len(password) < 8 {
		return nil, domain.Errorf(domain.EInvalid, "password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, domain.OpError(domain.EInternal, "service.AuthService.Signup", err)
	}

	cred := &domain.Credential{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
	}
	if err := s.credentials.Create(cred); err != nil {
		return nil, err
	}

	token, err := s.tokens.GenerateToken(cred.ID, cred.Email, cred.Name, s.tokenTTL)
	if err != nil {
		return nil, domain.OpError(domain.EInternal, "service.AuthService.Signup", err)
	}

	return &SignupResult{
		IdentityID: cred.ID,
		Email:      cred.Email,
		Name:       cred.Name,
		Token:      token,
	}, nil
}

// Login authenticates a local identity and returns a bearer token.
func (s *AuthService) Login(email, password string) (*LoginResult, error) {
	if blank(email) || blank(password) {
		return nil, domain.Errorf(domain.EInvalid, "email and password are required")
	}

	cred, err := s.credentials.GetByEmail(email)
	if err != nil {
		if domain.ErrorCode(err) == domain.ENotFound {
			return nil, domain.Errorf(domain.EUnauthorized, "invalid credentials")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		return nil, domain.Errorf(domain.EUnauthorized, "invalid credentials")
	}

	token, err := s.tokens.GenerateToken(cred.ID, cred.Email, cred.Name, s.tokenTTL)
	if err != nil {
		return nil, domain.OpError(domain.EInternal, "service.AuthService.Login", err)
	}

	s.logger.Info("identity logged in", slog.String("identity_id", cred.ID))
	return &LoginResult{
		IdentityID: cred.ID,
		Email:      cred.Email,
		Token:      token,
		ExpiresIn:  int(s.tokenTTL.Seconds()),
		TokenType:  "Bearer",
	}, nil
}
