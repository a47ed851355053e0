package repository

import (
	"database/sql"
	"errors"
	"log/slog"

	"github.com/yourorg/servicetracker/internal/domain"
)

// PostgresCustomerRepository implements domain.CustomerRepository using PostgreSQL
type PostgresCustomerRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresCustomerRepository creates a new customer repository
func NewPostgresCustomerRepository(db *sql.DB, logger *slog.Logger) *PostgresCustomerRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresCustomerRepository{db: db, logger: logger}
}

const customerColumns = `id, business_id, name, email, phone, address, notes, created_at, updated_at`

func scanCustomer(row interface{ Scan(...interface{}) error }) (*domain.Customer, error) {
	c := &domain.Customer{}
	err := row.Scan(
		&c.ID, &c.BusinessID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.Notes,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// FindOrCreate returns the customer with the given (business, email) pair,
// inserting it when absent. ON CONFLICT DO NOTHING plus a re-read makes
// concurrent callers converge on one row instead of racing a check-then-act.
// On a hit the stored row wins; supplied name/phone are not written back.
func (r *PostgresCustomerRepository) FindOrCreate(c *domain.Customer) (*domain.Customer, error) {
	return findOrCreateCustomer(r.db, c)
}

// findOrCreateCustomer runs against either the pool or a transaction.
func findOrCreateCustomer(q querier, c *domain.Customer) (*domain.Customer, error) {
	lookup := `SELECT ` + customerColumns + ` FROM customers WHERE business_id = $1 AND email = $2`

	existing, err := scanCustomer(q.QueryRow(lookup, c.BusinessID, c.Email))
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, domain.OpError(domain.EInternal, "repository.findOrCreateCustomer", err)
	}

	insert := `
		INSERT INTO customers (id, business_id, name, email, phone, address, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (business_id, email) DO NOTHING
		RETURNING created_at, updated_at
	`
	err = q.QueryRow(insert, c.ID, c.BusinessID, c.Name, c.Email, c.Phone, c.Address, c.Notes).
		Scan(&c.CreatedAt, &c.UpdatedAt)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, domain.OpError(domain.EInternal, "repository.findOrCreateCustomer", err)
	}

	// A concurrent request inserted the row between the lookup and the
	// insert; the conflict clause swallowed ours, so read theirs.
	existing, err = scanCustomer(q.QueryRow(lookup, c.BusinessID, c.Email))
	if err != nil {
		return nil, domain.OpError(domain.EInternal, "repository.findOrCreateCustomer", err)
	}
	return existing, nil
}

// Create inserts a new customer, failing on a duplicate email in the business
func (r *PostgresCustomerRepository) Create(c *domain.Customer) error {
	query := `
		INSERT INTO customers (id, business_id, name, email, phone, address, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(query, c.ID, c.BusinessID, c.Name, c.Email, c.Phone, c.Address, c.Notes).
		Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Errorf(domain.EConflict, "a customer with this email already exists")
		}
		r.logger.Error("failed to create customer",
			slog.String("business_id", c.BusinessID),
			slog.String("error", err.Error()),
		)
		return domain.OpError(domain.EInternal, "repository.PostgresCustomerRepository.Create", err)
	}
	return nil
}

// GetByID retrieves a customer scoped to a business
func (r *PostgresCustomerRepository) GetByID(businessID, id string) (*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1 AND business_id = $2`
	c, err := scanCustomer(r.db.QueryRow(query, id, businessID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.Errorf(domain.ENotFound, "customer not found")
		}
		return nil, domain.OpError(domain.EInternal, "repository.PostgresCustomerRepository.GetByID", err)
	}
	return c, nil
}

// ListByBusiness returns all customers in a business, newest first
func (r *PostgresCustomerRepository) ListByBusiness(businessID string) ([]*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE business_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(query, businessID)
	if err != nil {
		return nil, domain.OpError(domain.EInternal, "repository.PostgresCustomerRepository.ListByBusiness", err)
	}
	defer rows.Close()

	var out []*domain.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, domain.OpError(domain.EInternal, "repository.PostgresCustomerRepository.ListByBusiness", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Update rewrites a customer scoped to (id, business_id)
func (r *PostgresCustomerRepository) Update(c *domain.Customer) error {
	query := `
		UPDATE customers
		SET name = $1, email = $2, phone = $3, address = $4, notes = $5, updated_at = now()
		WHERE id = $6 AND business_id = $7
		RETURNING updated_at
	`
	err := r.db.QueryRow(query, c.Name, c.Email, c.Phone, c.Address, c.Notes, c.ID, c.BusinessID).
		Scan(&c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Errorf(domain.ENotFound, "customer not found")
		}
		if isUniqueViolation(err) {
			return domain.Errorf(domain.EConflict, "a customer with this email already exists")
		}
		return domain.OpError(domain.EInternal, "repository.PostgresCustomerRepository.Update", err)
	}
	return nil
}

// Delete removes a customer scoped to (id, business_id). The services FK is
// RESTRICT, so a customer that still owns services comes back as EConflict
// even if one was created after the caller's dependency check.
func (r *PostgresCustomerRepository) Delete(businessID, id string) error {
	res, err := r.db.Exec(`DELETE FROM customers WHERE id = $1 AND business_id = $2`, id, businessID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.Errorf(domain.EConflict, "cannot delete customer with existing services")
		}
		return domain.OpError(domain.EInternal, "repository.PostgresCustomerRepository.Delete", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return domain.OpError(domain.EInternal, "repository.PostgresCustomerRepository.Delete", err)
	}
	if rows == 0 {
		return domain.Errorf(domain.ENotFound, "customer not found")
	}
	return nil
}
