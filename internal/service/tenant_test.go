package service

import (
	"context"
	"testing"

	"github.com/yourorg/servicetracker/internal/domain"
	"github.com/yourorg/servicetracker/internal/identity"
	"github.com/yourorg/servicetracker/pkg/cache"
)

// fakeVerifier maps tokens to identities and counts calls.
type fakeVerifier struct {
	identities map[string]*identity.Identity
	calls      int
}

func (f *fakeVerifier) Verify(_ context.Context, token string) (*identity.Identity, error) {
	f.calls++
	if ident, ok := f.identities[token]; ok {
		return ident, nil
	}
	return nil, domain.Errorf(domain.EUnauthorized, "invalid token")
}

func newTenantFixture() (*TenantResolver, *fakeVerifier, *memUserRepo, *memBusinessRepo) {
	verifier := &fakeVerifier{identities: map[string]*identity.Identity{}}
	users := newMemUserRepo()
	businesses := newMemBusinessRepo(users)
	resolver := NewTenantResolver(verifier, users, businesses, nil, nil)
	return resolver, verifier, users, businesses
}

func TestResolveRejectsMissingToken(t *testing.T) {
	resolver, _, _, _ := newTenantFixture()
	_, err := resolver.Resolve(context.Background(), "")
	if domain.ErrorCode(err) != domain.EUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestResolveRejectsBadToken(t *testing.T) {
	resolver, _, _, _ := newTenantFixture()
	_, err := resolver.Resolve(context.Background(), "garbage")
	if domain.ErrorCode(err) != domain.EUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestResolveOnboardedUser(t *testing.T) {
	resolver, verifier, users, businesses := newTenantFixture()

	businesses.Create(&domain.Business{ID: "biz-1", Name: "Acme", Subdomain: "acme"})
	users.Create(&domain.User{ID: "id-1", BusinessID: "biz-1", Email: "a@example.com"})
	verifier.identities["tok"] = &identity.Identity{ID: "id-1", Email: "a@example.com"}

	tc, err := resolver.Resolve(context.Background(), "tok")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if !tc.Onboarded() {
		t.Fatalf("expected onboarded context")
	}
	if tc.Business.ID != "biz-1" || tc.User.ID != "id-1" {
		t.Errorf("wrong context: %+v", tc)
	}
}

func TestResolveNotOnboarded(t *testing.T) {
	resolver, verifier, _, _ := newTenantFixture()
	verifier.identities["tok"] = &identity.Identity{ID: "id-9", Email: "new@example.com"}

	tc, err := resolver.Resolve(context.Background(), "tok")
	if err != nil {
		t.Fatalf("a verified identity without a profile must still resolve: %v", err)
	}
	if tc.Onboarded() {
		t.Fatalf("expected non-onboarded context")
	}
	if tc.Identity.ID != "id-9" {
		t.Errorf("identity should carry through")
	}
}

func TestResolveFallsBackToEmail(t *testing.T) {
	resolver, verifier, users, businesses := newTenantFixture()

	businesses.Create(&domain.Business{ID: "biz-1", Name: "Acme", Subdomain: "acme"})
	// The user row predates the current identity subject.
	users.Create(&domain.User{ID: "old-subject", BusinessID: "biz-1", Email: "a@example.com"})
	verifier.identities["tok"] = &identity.Identity{ID: "new-subject", Email: "a@example.com"}

	tc, err := resolver.Resolve(context.Background(), "tok")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if !tc.Onboarded() || tc.User.ID != "old-subject" {
		t.Errorf("expected email fallback to find the user, got %+v", tc.User)
	}
}

func TestResolveMissingBusiness(t *testing.T) {
	resolver, verifier, users, _ := newTenantFixture()

	users.Create(&domain.User{ID: "id-1", BusinessID: "biz-gone", Email: "a@example.com"})
	verifier.identities["tok"] = &identity.Identity{ID: "id-1", Email: "a@example.com"}

	_, err := resolver.Resolve(context.Background(), "tok")
	if domain.ErrorCode(err) != domain.ETenantNotFound {
		t.Fatalf("expected tenant not found, got %v", err)
	}
}

func TestResolveCachesFullResolutions(t *testing.T) {
	verifier := &fakeVerifier{identities: map[string]*identity.Identity{}}
	users := newMemUserRepo()
	businesses := newMemBusinessRepo(users)
	resolver := NewTenantResolver(verifier, users, businesses, cache.New(), nil)

	businesses.Create(&domain.Business{ID: "biz-1", Name: "Acme", Subdomain: "acme"})
	users.Create(&domain.User{ID: "id-1", BusinessID: "biz-1", Email: "a@example.com"})
	verifier.identities["tok"] = &identity.Identity{ID: "id-1", Email: "a@example.com"}
	verifier.identities["tok-new"] = &identity.Identity{ID: "id-2", Email: "b@example.com"}

	for i := 0; i < 3; i++ {
		if _, err := resolver.Resolve(context.Background(), "tok"); err != nil {
			t.Fatalf("resolve failed: %v", err)
		}
	}
	if verifier.calls != 1 {
		t.Errorf("expected 1 verifier call for a cached token, got %d", verifier.calls)
	}

	// Non-onboarded resolutions are never cached: the user may onboard at
	// any moment.
	for i := 0; i < 2; i++ {
		if _, err := resolver.Resolve(context.Background(), "tok-new"); err != nil {
			t.Fatalf("resolve failed: %v", err)
		}
	}
	if verifier.calls != 3 {
		t.Errorf("expected non-onboarded tokens to bypass the cache, got %d calls", verifier.calls)
	}
}
