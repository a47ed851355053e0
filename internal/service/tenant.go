package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/yourorg/servicetracker/internal/domain"
	"github.com/yourorg/servicetracker/internal/identity"
	"github.com/yourorg/servicetracker/pkg/cache"
)

// TenantContext is the resolved scoping context for one request. User and
// Business are nil when the identity is verified but has not onboarded yet;
// every scoped operation requires both.
type TenantContext struct {
	Identity *identity.Identity
	User     *domain.User
	Business *domain.Business
}

// Onboarded reports whether the identity is linked to a business.
func (tc *TenantContext) Onboarded() bool {
	return tc.User != nil && tc.Business != nil
}

// TenantResolver maps a bearer token to the caller's (User, Business) pair.
// It is the root of all authorization decisions: no component ever trusts a
// business ID supplied by the client.
type TenantResolver struct {
	verifier   identity.Verifier
	users      domain.UserRepository
	businesses domain.BusinessRepository
	cache      *cache.Cache
	cacheTTL   time.Duration
	logger     *slog.Logger
}

// NewTenantResolver creates a tenant resolver. The cache is optional; when
// present, fully resolved contexts are memoised per token for a short TTL.
func NewTenantResolver(
	verifier identity.Verifier,
	users domain.UserRepository,
	businesses domain.BusinessRepository,
	resolutionCache *cache.Cache,
	logger *slog.Logger,
) *TenantResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &TenantResolver{
		verifier:   verifier,
		users:      users,
		businesses: businesses,
		cache:      resolutionCache,
		cacheTTL:   30 * time.Second,
		logger:     logger,
	}
}

// Resolve verifies the token and loads the caller's User and Business.
// A verified identity with no User row resolves to a context with nil
// User/Business rather than an error, so onboarding endpoints can run.
func (r *TenantResolver) Resolve(ctx context.Context, token string) (*TenantContext, error) {
	if token == "" {
		return nil, domain.Errorf(domain.EUnauthorized, "no authorization token provided")
	}

	cacheKey := tokenCacheKey(token)
	if r.cache != nil {
		if cached, ok := r.cache.Get(cacheKey); ok {
			return cached.(*TenantContext), nil
		}
	}

	ident, err := r.verifier.Verify(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := r.users.GetByID(ident.ID)
	if err != nil && domain.ErrorCode(err) == domain.ENotFound {
		// Post-OAuth flows can reach us before the identity subject is
		// persisted; the email is the durable link in that window.
		user, err = r.users.GetByEmail(ident.Email)
	}
	if err != nil {
		if domain.ErrorCode(err) == domain.ENotFound {
			return &TenantContext{Identity: ident}, nil
		}
		return nil, err
	}

	business, err := r.businesses.GetByID(user.BusinessID)
	if err != nil {
		if domain.ErrorCode(err) == domain.ENotFound {
			r.logger.Error("user references missing business",
				slog.String("user_id", user.ID),
				slog.String("business_id", user.BusinessID),
			)
			return nil, domain.Errorf(domain.ETenantNotFound, "business not found")
		}
		return nil, err
	}

	tc := &TenantContext{Identity: ident, User: user, Business: business}
	if r.cache != nil {
		r.cache.Set(cacheKey, tc, r.cacheTTL)
	}
	return tc, nil
}

func tokenCacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "resolve:" + hex.EncodeToString(sum[:])
}
