package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/yourorg/servicetracker/internal/domain"
	"github.com/yourorg/servicetracker/pkg/database"
)

// PostgresServiceRepository implements domain.ServiceRepository using
// PostgreSQL. It holds the connection pool rather than a bare *sql.DB
// because ticket writes are multi-statement and run inside transactions.
type PostgresServiceRepository struct {
	pool   *database.ConnectionPool
	logger *slog.Logger
}

// NewPostgresServiceRepository creates a new service repository
func NewPostgresServiceRepository(pool *database.ConnectionPool, logger *slog.Logger) *PostgresServiceRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresServiceRepository{pool: pool, logger: logger}
}

// CreateTicket resolves-or-creates the customer, inserts the service in its
// initial status, and appends the first update, all in one transaction. A
// failure at any step leaves no orphaned customer and no update-less service.
func (r *PostgresServiceRepository) CreateTicket(svc *domain.Service, cust *domain.Customer, initial *domain.ServiceUpdate) (*domain.Customer, error) {
	var resolved *domain.Customer

	err := r.pool.WithinTx(context.Background(), func(tx *sql.Tx) error {
		c, err := findOrCreateCustomer(tx, cust)
		if err != nil {
			return err
		}
		resolved = c
		svc.CustomerID = c.ID

		insertSvc := `
			INSERT INTO services (id, business_id, customer_id, title, description, status, priority)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING created_at, updated_at
		`
		if err := tx.QueryRow(insertSvc,
			svc.ID, svc.BusinessID, svc.CustomerID, svc.Title, svc.Description, svc.Status, svc.Priority,
		).Scan(&svc.CreatedAt, &svc.UpdatedAt); err != nil {
			return domain.OpError(domain.EInternal, "repository.PostgresServiceRepository.CreateTicket", err)
		}

		return appendUpdate(tx, initial)
	})
	if err != nil {
		return nil, err
	}

	svc.Customer = resolved
	return resolved, nil
}

func appendUpdate(tx *sql.Tx, u *domain.ServiceUpdate) error {
	query := `
		INSERT INTO service_updates (id, service_id, user_id, message)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	if err := tx.QueryRow(query, u.ID, u.ServiceID, u.UserID, u.Message).Scan(&u.CreatedAt); err != nil {
		return domain.OpError(domain.EInternal, "repository.appendUpdate", err)
	}
	return nil
}

const serviceColumns = `s.id, s.business_id, s.customer_id, s.technician_id, s.title, s.description,
	s.status, s.priority, s.estimated_cost, s.actual_cost, s.created_at, s.updated_at,
	c.id, c.business_id, c.name, c.email, c.phone, c.address, c.notes, c.created_at, c.updated_at`

func scanService(row interface{ Scan(...interface{}) error }) (*domain.Service, error) {
	s := &domain.Service{}
	c := &domain.Customer{}
	var technicianID sql.NullString
	var estimated, actual sql.NullFloat64

	err := row.Scan(
		&s.ID, &s.BusinessID, &s.CustomerID, &technicianID, &s.Title, &s.Description,
		&s.Status, &s.Priority, &estimated, &actual, &s.CreatedAt, &s.UpdatedAt,
		&c.ID, &c.BusinessID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.Notes, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.TechnicianID = technicianID.String
	s.EstimatedCost = estimated.Float64
	s.ActualCost = actual.Float64
	s.Customer = c
	return s, nil
}

// GetByID retrieves a service scoped to a business, with its customer joined
func (r *PostgresServiceRepository) GetByID(businessID, id string) (*domain.Service, error) {
	query := `
		SELECT ` + serviceColumns + `
		FROM services s
		JOIN customers c ON c.id = s.customer_id
		WHERE s.id = $1 AND s.business_id = $2
	`
	s, err := scanService(r.pool.GetDB().QueryRow(query, id, businessID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.Errorf(domain.ENotFound, "service not found")
		}
		return nil, domain.OpError(domain.EInternal, "repository.PostgresServiceRepository.GetByID", err)
	}
	return s, nil
}

// ListByBusiness returns all services in a business, newest first
func (r *PostgresServiceRepository) ListByBusiness(businessID string) ([]*domain.Service, error) {
	query := `
		SELECT ` + serviceColumns + `
		FROM services s
		JOIN customers c ON c.id = s.customer_id
		WHERE s.business_id = $1
		ORDER BY s.created_at DESC
	`
	rows, err := r.pool.GetDB().Query(query, businessID)
	if err != nil {
		return nil, domain.OpError(domain.EInternal, "repository.PostgresServiceRepository.ListByBusiness", err)
	}
	defer rows.Close()

	var out []*domain.Service
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, domain.OpError(domain.EInternal, "repository.PostgresServiceRepository.ListByBusiness", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// UpdateStatus sets the status of a service scoped to (id, business_id) and
// appends the audit record in the same transaction.
func (r *PostgresServiceRepository) UpdateStatus(businessID, id, status string, update *domain.ServiceUpdate) error {
	return r.pool.WithinTx(context.Background(), func(tx *sql.Tx) error {
		query := `
			UPDATE services
			SET status = $1, updated_at = now()
			WHERE id = $2 AND business_id = $3
			RETURNING id
		`
		var updated string
		if err := tx.QueryRow(query, status, id, businessID).Scan(&updated); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.Errorf(domain.ENotFound, "service not found")
			}
			return domain.OpError(domain.EInternal, "repository.PostgresServiceRepository.UpdateStatus", err)
		}
		return appendUpdate(tx, update)
	})
}

// CountByCustomer returns how many services a customer owns
func (r *PostgresServiceRepository) CountByCustomer(businessID, customerID string) (int, error) {
	var n int
	query := `SELECT COUNT(*) FROM services WHERE business_id = $1 AND customer_id = $2`
	if err := r.pool.GetDB().QueryRow(query, businessID, customerID).Scan(&n); err != nil {
		return 0, domain.OpError(domain.EInternal, "repository.PostgresServiceRepository.CountByCustomer", err)
	}
	return n, nil
}

// ListUpdates returns the audit trail of a service, oldest first. The join
// through services keeps the read scoped to the caller's business.
func (r *PostgresServiceRepository) ListUpdates(businessID, serviceID string) ([]*domain.ServiceUpdate, error) {
	query := `
		SELECT u.id, u.service_id, u.user_id, u.message, u.created_at
		FROM service_updates u
		JOIN services s ON s.id = u.service_id
		WHERE u.service_id = $1 AND s.business_id = $2
		ORDER BY u.created_at ASC
	`
	rows, err := r.pool.GetDB().Query(query, serviceID, businessID)
	if err != nil {
		return nil, domain.OpError(domain.EInternal, "repository.PostgresServiceRepository.ListUpdates", err)
	}
	defer rows.Close()

	var out []*domain.ServiceUpdate
	for rows.Next() {
		u := &domain.ServiceUpdate{}
		if err := rows.Scan(&u.ID, &u.ServiceID, &u.UserID, &u.Message, &u.CreatedAt); err != nil {
			return nil, domain.OpError(domain.EInternal, "repository.PostgresServiceRepository.ListUpdates", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
