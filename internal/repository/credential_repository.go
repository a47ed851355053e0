package repository

import (
	"database/sql"
	"errors"
	"log/slog"

	"github.com/yourorg/servicetracker/internal/domain"
)

// PostgresCredentialRepository implements domain.CredentialRepository using
// PostgreSQL. Only used in local identity mode.
type PostgresCredentialRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresCredentialRepository creates a new credential repository
func NewPostgresCredentialRepository(db *sql.DB, logger *slog.Logger) *PostgresCredentialRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresCredentialRepository{db: db, logger: logger}
}

// Create inserts a new local identity
func (r *PostgresCredentialRepository) Create(cred *domain.Credential) error {
	query := `
		INSERT INTO identities (id, email, name, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	err := r.db.QueryRow(query, cred.ID, cred.Email, cred.Name, cred.PasswordHash).Scan(&cred.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Errorf(domain.EConflict, "email already registered")
		}
		r.logger.Error("failed to create identity",
			slog.String("email", cred.Email),
			slog.String("error", err.Error()),
		)
		return domain.OpError(domain.EInternal, "repository.PostgresCredentialRepository.Create", err)
	}
	return nil
}

// GetByEmail retrieves a local identity by email
func (r *PostgresCredentialRepository) GetByEmail(email string) (*domain.Credential, error) {
	cred := &domain.Credential{}
	query := `SELECT id, email, name, password_hash, created_at FROM identities WHERE email = $1`
	err := r.db.QueryRow(query, email).Scan(&cred.ID, &cred.Email, &cred.Name, &cred.PasswordHash, &cred.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.Errorf(domain.ENotFound, "identity not found")
		}
		return nil, domain.OpError(domain.EInternal, "repository.PostgresCredentialRepository.GetByEmail", err)
	}
	return cred, nil
}
