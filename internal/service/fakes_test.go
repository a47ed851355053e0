package service

import (
	"context"
	"time"

	"github.com/yourorg/servicetracker/internal/domain"
)

// In-memory repositories for service tests. They mirror the coded-error
// behavior of the Postgres implementations.

type memUserRepo struct {
	byID    map[string]*domain.User
	byEmail map[string]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: map[string]*domain.User{}, byEmail: map[string]*domain.User{}}
}

func (m *memUserRepo) Create(u *domain.User) error {
	if _, ok := m.byID[u.ID]; ok {
		return domain.Errorf(domain.EConflict, "user already exists")
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	m.byID[u.ID] = u
	m.byEmail[u.Email] = u
	return nil
}

func (m *memUserRepo) GetByID(id string) (*domain.User, error) {
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, domain.Errorf(domain.ENotFound, "user not found")
}

func (m *memUserRepo) GetByEmail(email string) (*domain.User, error) {
	if u, ok := m.byEmail[email]; ok {
		return u, nil
	}
	return nil, domain.Errorf(domain.ENotFound, "user not found")
}

func (m *memUserRepo) ListByBusiness(businessID string) ([]*domain.User, error) {
	out := []*domain.User{}
	for _, u := range m.byID {
		if u.BusinessID == businessID {
			out = append(out, u)
		}
	}
	return out, nil
}

type memBusinessRepo struct {
	byID        map[string]*domain.Business
	bySubdomain map[string]*domain.Business
	users       *memUserRepo
}

func newMemBusinessRepo(users *memUserRepo) *memBusinessRepo {
	return &memBusinessRepo{
		byID:        map[string]*domain.Business{},
		bySubdomain: map[string]*domain.Business{},
		users:       users,
	}
}

func (m *memBusinessRepo) Create(b *domain.Business) error {
	if _, ok := m.bySubdomain[b.Subdomain]; ok {
		return domain.Errorf(domain.EConflict, "subdomain already taken")
	}
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	m.byID[b.ID] = b
	m.bySubdomain[b.Subdomain] = b
	return nil
}

func (m *memBusinessRepo) CreateWithOwner(b *domain.Business, owner *domain.User) error {
	if _, ok := m.bySubdomain[b.Subdomain]; ok {
		return domain.Errorf(domain.EConflict, "subdomain already taken")
	}
	if _, ok := m.users.byID[owner.ID]; ok {
		return domain.Errorf(domain.EConflict, "user already exists")
	}
	if err := m.Create(b); err != nil {
		return err
	}
	return m.users.Create(owner)
}

func (m *memBusinessRepo) GetByID(id string) (*domain.Business, error) {
	if b, ok := m.byID[id]; ok {
		return b, nil
	}
	return nil, domain.Errorf(domain.ENotFound, "business not found")
}

func (m *memBusinessRepo) GetBySubdomain(subdomain string) (*domain.Business, error) {
	if b, ok := m.bySubdomain[subdomain]; ok {
		return b, nil
	}
	return nil, domain.Errorf(domain.ENotFound, "business not found")
}

type memCustomerRepo struct {
	byID map[string]*domain.Customer
}

func newMemCustomerRepo() *memCustomerRepo {
	return &memCustomerRepo{byID: map[string]*domain.Customer{}}
}

func (m *memCustomerRepo) lookup(businessID, email string) *domain.Customer {
	for _, c := range m.byID {
		if c.BusinessID == businessID && c.Email == email {
			return c
		}
	}
	return nil
}

func (m *memCustomerRepo) FindOrCreate(c *domain.Customer) (*domain.Customer, error) {
	if existing := m.lookup(c.BusinessID, c.Email); existing != nil {
		return existing, nil
	}
	if err := m.Create(c); err != nil {
		return nil, err
	}
	return c, nil
}

func (m *memCustomerRepo) Create(c *domain.Customer) error {
	if m.lookup(c.BusinessID, c.Email) != nil {
		return domain.Errorf(domain.EConflict, "a customer with this email already exists")
	}
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	m.byID[c.ID] = c
	return nil
}

func (m *memCustomerRepo) GetByID(businessID, id string) (*domain.Customer, error) {
	if c, ok := m.byID[id]; ok && c.BusinessID == businessID {
		return c, nil
	}
	return nil, domain.Errorf(domain.ENotFound, "customer not found")
}

func (m *memCustomerRepo) ListByBusiness(businessID string) ([]*domain.Customer, error) {
	out := []*domain.Customer{}
	for _, c := range m.byID {
		if c.BusinessID == businessID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memCustomerRepo) Update(c *domain.Customer) error {
	existing, ok := m.byID[c.ID]
	if !ok || existing.BusinessID != c.BusinessID {
		return domain.Errorf(domain.ENotFound, "customer not found")
	}
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = time.Now()
	m.byID[c.ID] = c
	return nil
}

func (m *memCustomerRepo) Delete(businessID, id string) error {
	if c, ok := m.byID[id]; ok && c.BusinessID == businessID {
		delete(m.byID, id)
		return nil
	}
	return domain.Errorf(domain.ENotFound, "customer not found")
}

type memServiceRepo struct {
	byID      map[string]*domain.Service
	updates   map[string][]*domain.ServiceUpdate
	customers *memCustomerRepo
}

func newMemServiceRepo(customers *memCustomerRepo) *memServiceRepo {
	return &memServiceRepo{
		byID:      map[string]*domain.Service{},
		updates:   map[string][]*domain.ServiceUpdate{},
		customers: customers,
	}
}

func (m *memServiceRepo) CreateTicket(svc *domain.Service, cust *domain.Customer, initial *domain.ServiceUpdate) (*domain.Customer, error) {
	customer, err := m.customers.FindOrCreate(cust)
	if err != nil {
		return nil, err
	}
	svc.CustomerID = customer.ID
	svc.Customer = customer
	svc.CreatedAt = time.Now()
	svc.UpdatedAt = svc.CreatedAt
	m.byID[svc.ID] = svc
	initial.CreatedAt = time.Now()
	m.updates[svc.ID] = append(m.updates[svc.ID], initial)
	return customer, nil
}

func (m *memServiceRepo) GetByID(businessID, id string) (*domain.Service, error) {
	if s, ok := m.byID[id]; ok && s.BusinessID == businessID {
		copied := *s
		return &copied, nil
	}
	return nil, domain.Errorf(domain.ENotFound, "service not found")
}

func (m *memServiceRepo) ListByBusiness(businessID string) ([]*domain.Service, error) {
	out := []*domain.Service{}
	for _, s := range m.byID {
		if s.BusinessID == businessID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memServiceRepo) UpdateStatus(businessID, id, status string, update *domain.ServiceUpdate) error {
	s, ok := m.byID[id]
	if !ok || s.BusinessID != businessID {
		return domain.Errorf(domain.ENotFound, "service not found")
	}
	s.Status = status
	s.UpdatedAt = time.Now()
	update.CreatedAt = time.Now()
	m.updates[id] = append(m.updates[id], update)
	return nil
}

func (m *memServiceRepo) CountByCustomer(businessID, customerID string) (int, error) {
	n := 0
	for _, s := range m.byID {
		if s.BusinessID == businessID && s.CustomerID == customerID {
			n++
		}
	}
	return n, nil
}

func (m *memServiceRepo) ListUpdates(businessID, serviceID string) ([]*domain.ServiceUpdate, error) {
	if s, ok := m.byID[serviceID]; !ok || s.BusinessID != businessID {
		return []*domain.ServiceUpdate{}, nil
	}
	return m.updates[serviceID], nil
}

type memCredentialRepo struct {
	byEmail map[string]*domain.Credential
}

func newMemCredentialRepo() *memCredentialRepo {
	return &memCredentialRepo{byEmail: map[string]*domain.Credential{}}
}

func (m *memCredentialRepo) Create(cred *domain.Credential) error {
	if _, ok := m.byEmail[cred.Email]; ok {
		return domain.Errorf(domain.EConflict, "email already registered")
	}
	cred.CreatedAt = time.Now()
	m.byEmail[cred.Email] = cred
	return nil
}

func (m *memCredentialRepo) GetByEmail(email string) (*domain.Credential, error) {
	if cred, ok := m.byEmail[email]; ok {
		return cred, nil
	}
	return nil, domain.Errorf(domain.ENotFound, "identity not found")
}

// memSnapshotCache implements SnapshotCache over a plain map.
type memSnapshotCache struct {
	data    map[string]string
	deletes int
}

func newMemSnapshotCache() *memSnapshotCache {
	return &memSnapshotCache{data: map[string]string{}}
}

func (m *memSnapshotCache) Get(_ context.Context, key string) (string, error) {
	return m.data[key], nil
}

func (m *memSnapshotCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	m.data[key] = value.(string)
	return nil
}

func (m *memSnapshotCache) Delete(_ context.Context, key string) error {
	m.deletes++
	delete(m.data, key)
	return nil
}
