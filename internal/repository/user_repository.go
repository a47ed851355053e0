package repository

import (
	"database/sql"
	"errors"
	"log/slog"

	"github.com/yourorg/servicetracker/internal/domain"
)

// PostgresUserRepository implements domain.UserRepository using PostgreSQL
type PostgresUserRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresUserRepository creates a new user repository
func NewPostgresUserRepository(db *sql.DB, logger *slog.Logger) *PostgresUserRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresUserRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new user. The ID is the identity provider's subject and is
// supplied by the caller, never generated here.
func (r *PostgresUserRepository) Create(user *domain.User) error {
	query := `
		INSERT INTO users (id, business_id, email, name, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(
		query,
		user.ID,
		user.BusinessID,
		user.Email,
		user.Name,
		user.Role,
	).Scan(&user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return domain.Errorf(domain.EConflict, "user already exists")
		}
		r.logger.Error("failed to create user",
			slog.String("email", user.Email),
			slog.String("error", err.Error()),
		)
		return domain.OpError(domain.EInternal, "repository.PostgresUserRepository.Create", err)
	}

	return nil
}

// GetByID retrieves a user by the identity subject
func (r *PostgresUserRepository) GetByID(id string) (*domain.User, error) {
	user := &domain.User{}

	query := `
		SELECT id, business_id, email, name, role, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	err := r.db.QueryRow(query, id).Scan(
		&user.ID,
		&user.BusinessID,
		&user.Email,
		&user.Name,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.Errorf(domain.ENotFound, "user not found")
		}
		r.logger.Error("failed to get user by id",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, domain.OpError(domain.EInternal, "repository.PostgresUserRepository.GetByID", err)
	}

	return user, nil
}

// GetByEmail retrieves a user by email
func (r *PostgresUserRepository) GetByEmail(email string) (*domain.User, error) {
	user := &domain.User{}

	query := `
		SELECT id, business_id, email, name, role, created_at, updated_at
		FROM users
		WHERE email = $1
	`

	err := r.db.QueryRow(query, email).Scan(
		&user.ID,
		&user.BusinessID,
		&user.Email,
		&user.Name,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.Errorf(domain.ENotFound, "user not found")
		}
		return nil, domain.OpError(domain.EInternal, "repository.PostgresUserRepository.GetByEmail", err)
	}

	return user, nil
}

// ListByBusiness returns all users in a business, newest first
func (r *PostgresUserRepository) ListByBusiness(businessID string) ([]*domain.User, error) {
	query := `
		SELECT id, business_id, email, name, role, created_at, updated_at
		FROM users
		WHERE business_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(query, businessID)
	if err != nil {
		return nil, domain.OpError(domain.EInternal, "repository.PostgresUserRepository.ListByBusiness", err)
	}
	defer rows.Close()

	var out []*domain.User
	for rows.Next() {
		user := &domain.User{}
		if err := rows.Scan(
			&user.ID,
			&user.BusinessID,
			&user.Email,
			&user.Name,
			&user.Role,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, domain.OpError(domain.EInternal, "repository.PostgresUserRepository.ListByBusiness", err)
		}
		out = append(out, user)
	}
	return out, rows.Err()
}
