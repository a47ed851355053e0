package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/yourorg/servicetracker/internal/domain"
	"github.com/yourorg/servicetracker/pkg/database"
)

// PostgresBusinessRepository implements domain.BusinessRepository using
// PostgreSQL. It holds the pool because onboarding creates the business and
// its owner in one transaction.
type PostgresBusinessRepository struct {
	pool   *database.ConnectionPool
	logger *slog.Logger
}

// NewPostgresBusinessRepository creates a new business repository
func NewPostgresBusinessRepository(pool *database.ConnectionPool, logger *slog.Logger) *PostgresBusinessRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresBusinessRepository{pool: pool, logger: logger}
}

const businessColumns = `id, name, subdomain, plan, logo_url, brand_primary, brand_secondary,
	business_type, team_size, primary_goal, created_at, updated_at`

const insertBusiness = `
	INSERT INTO businesses (id, name, subdomain, plan, logo_url, brand_primary, brand_secondary,
		business_type, team_size, primary_goal)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	RETURNING created_at, updated_at
`

// Create inserts a new business. The subdomain is covered by a unique index;
// collisions come back as EConflict so the caller can retry with a suffix.
func (r *PostgresBusinessRepository) Create(b *domain.Business) error {
	err := r.pool.GetDB().QueryRow(insertBusiness,
		b.ID, b.Name, b.Subdomain, b.Plan, b.LogoURL, b.BrandPrimary, b.BrandSecondary,
		b.BusinessType, b.TeamSize, b.PrimaryGoal,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Errorf(domain.EConflict, "subdomain %q is taken", b.Subdomain)
		}
		r.logger.Error("failed to create business",
			slog.String("subdomain", b.Subdomain),
			slog.String("error", err.Error()),
		)
		return domain.OpError(domain.EInternal, "repository.PostgresBusinessRepository.Create", err)
	}
	return nil
}

// CreateWithOwner creates a business and its first ADMIN user in one
// transaction, so a failed user insert cannot leave an ownerless business.
func (r *PostgresBusinessRepository) CreateWithOwner(b *domain.Business, owner *domain.User) error {
	return r.pool.WithinTx(context.Background(), func(tx *sql.Tx) error {
		err := tx.QueryRow(insertBusiness,
			b.ID, b.Name, b.Subdomain, b.Plan, b.LogoURL, b.BrandPrimary, b.BrandSecondary,
			b.BusinessType, b.TeamSize, b.PrimaryGoal,
		).Scan(&b.CreatedAt, &b.UpdatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.Errorf(domain.EConflict, "subdomain %q is taken", b.Subdomain)
			}
			return domain.OpError(domain.EInternal, "repository.PostgresBusinessRepository.CreateWithOwner", err)
		}

		insertUser := `
			INSERT INTO users (id, business_id, email, name, role)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING created_at, updated_at
		`
		err = tx.QueryRow(insertUser, owner.ID, b.ID, owner.Email, owner.Name, owner.Role).
			Scan(&owner.CreatedAt, &owner.UpdatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.Errorf(domain.EConflict, "user already exists")
			}
			return domain.OpError(domain.EInternal, "repository.PostgresBusinessRepository.CreateWithOwner", err)
		}
		owner.BusinessID = b.ID
		return nil
	})
}

// GetByID retrieves a business by ID
func (r *PostgresBusinessRepository) GetByID(id string) (*domain.Business, error) {
	b := &domain.Business{}
	query := `SELECT ` + businessColumns + ` FROM businesses WHERE id = $1`
	err := r.pool.GetDB().QueryRow(query, id).Scan(
		&b.ID, &b.Name, &b.Subdomain, &b.Plan, &b.LogoURL, &b.BrandPrimary, &b.BrandSecondary,
		&b.BusinessType, &b.TeamSize, &b.PrimaryGoal, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.Errorf(domain.ENotFound, "business not found")
		}
		return nil, domain.OpError(domain.EInternal, "repository.PostgresBusinessRepository.GetByID", err)
	}
	return b, nil
}

// GetBySubdomain retrieves a business by its subdomain
func (r *PostgresBusinessRepository) GetBySubdomain(subdomain string) (*domain.Business, error) {
	b := &domain.Business{}
	query := `SELECT ` + businessColumns + ` FROM businesses WHERE subdomain = $1`
	err := r.pool.GetDB().QueryRow(query, subdomain).Scan(
		&b.ID, &b.Name, &b.Subdomain, &b.Plan, &b.LogoURL, &b.BrandPrimary, &b.BrandSecondary,
		&b.BusinessType, &b.TeamSize, &b.PrimaryGoal, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.Errorf(domain.ENotFound, "business not found")
		}
		return nil, domain.OpError(domain.EInternal, "repository.PostgresBusinessRepository.GetBySubdomain", err)
	}
	return b, nil
}
