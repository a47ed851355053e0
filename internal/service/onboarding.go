package service

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/yourorg/servicetracker/internal/domain"
	"github.com/yourorg/servicetracker/internal/identity"
	"github.com/yourorg/servicetracker/internal/observability/metrics"
)

// Retries against concurrent signups picking the same business name; each
// attempt appends the next numeric suffix.
const maxSubdomainAttempts = 50

// OnboardInput carries the onboarding wizard's payload.
type OnboardInput struct {
	BusinessName   string
	BusinessType   string
	TeamSize       string
	PrimaryGoal    string
	BrandPrimary   string
	BrandSecondary string
	UserName       string
}

// OnboardingService creates the first Business + User pair for a newly
// verified identity.
type OnboardingService struct {
	businesses domain.BusinessRepository
	users      domain.UserRepository
	logger     *slog.Logger
}

// NewOnboardingService creates an onboarding service
func NewOnboardingService(businesses domain.BusinessRepository, users domain.UserRepository, logger *slog.Logger) *OnboardingService {
	if logger == nil {
		logger = slog.Default()
	}
	return &OnboardingService{businesses: businesses, users: users, logger: logger}
}

// Onboard creates a Business and its ADMIN owner for an identity that has
// neither. The subdomain is derived from the business name and suffixed with
// -1, -2, ... until an unclaimed one is found.
func (s *OnboardingService) Onboard(ident *identity.Identity, in OnboardInput) (*domain.Business, *domain.User, error) {
	if blank(in.BusinessName) {
		return nil, nil, domain.Errorf(domain.EInvalid, "business name is required")
	}

	if _, err := s.users.GetByID(ident.ID); err == nil {
		return nil, nil, domain.Errorf(domain.EConflict, "business profile already exists")
	} else if domain.ErrorCode(err) != domain.ENotFound {
		return nil, nil, err
	}

	userName := in.UserName
	if userName == "" {
		userName = ident.Name
	}
	if userName == "" {
		// Same fallback the wizard applies: the email's local part.
		if at := strings.Index(ident.Email, "@"); at > 0 {
			userName = ident.Email[:at]
		} else {
			userName = "User"
		}
	}

	slug := Slugify(in.BusinessName)
	if slug == "" {
		return nil, nil, domain.Errorf(domain.EInvalid, "business name must contain letters or digits")
	}

	for attempt := 0; attempt < maxSubdomainAttempts; attempt++ {
		subdomain := slug
		if attempt > 0 {
			subdomain = fmt.Sprintf("%s-%d", slug, attempt)
		}

		business := &domain.Business{
			ID:             uuid.NewString(),
			Name:           in.BusinessName,
			Subdomain:      subdomain,
			Plan:           "starter",
			BrandPrimary:   in.BrandPrimary,
			BrandSecondary: in.BrandSecondary,
			BusinessType:   in.BusinessType,
			TeamSize:       in.TeamSize,
			PrimaryGoal:    in.PrimaryGoal,
		}
		owner := &domain.User{
			ID:         ident.ID,
			BusinessID: business.ID,
			Email:      ident.Email,
			Name:       userName,
			Role:       domain.RoleAdmin,
		}

		err := s.businesses.CreateWithOwner(business, owner)
		if err == nil {
			metrics.ObserveOnboarding("created")
			s.logger.Info("business onboarded",
				slog.String("business_id", business.ID),
				slog.String("subdomain", business.Subdomain),
				slog.String("user_id", owner.ID),
			)
			return business, owner, nil
		}
		if domain.ErrorCode(err) == domain.EConflict && strings.Contains(err.Error(), "subdomain") {
			continue
		}
		metrics.ObserveOnboarding("failed")
		return nil, nil, err
	}

	metrics.ObserveOnboarding("failed")
	return nil, nil, domain.Errorf(domain.EConflict, "could not allocate a subdomain for %q", in.BusinessName)
}

// Slugify derives a subdomain from a business name: lowercase, every run of
// non-alphanumerics becomes a single hyphen, edges trimmed.
// "Bob's HVAC!!" -> "bobs-hvac".
func Slugify(name string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		case r == '\'':
			// Apostrophes vanish rather than hyphenate: "Bob's" -> "bobs".
		default:
			pendingHyphen = true
		}
	}
	return b.String()
}
