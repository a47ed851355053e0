// Package memory holds in-memory repository implementations with the same
// coded-error behavior as the Postgres ones. They back integration tests and
// local experiments that do not want a database.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/yourorg/servicetracker/internal/domain"
)

type UserRepository struct {
	mu      sync.RWMutex
	byID    map[string]*domain.User
	byEmail map[string]*domain.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{byID: map[string]*domain.User{}, byEmail: map[string]*domain.User{}}
}

func (m *UserRepository) Create(u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[u.ID]; ok {
		return domain.Errorf(domain.EConflict, "user already exists")
	}
	if _, ok := m.byEmail[u.Email]; ok {
		return domain.Errorf(domain.EConflict, "user already exists")
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	m.byID[u.ID] = u
	m.byEmail[u.Email] = u
	return nil
}

func (m *UserRepository) GetByID(id string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, domain.Errorf(domain.ENotFound, "user not found")
}

func (m *UserRepository) GetByEmail(email string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if u, ok := m.byEmail[email]; ok {
		return u, nil
	}
	return nil, domain.Errorf(domain.ENotFound, "user not found")
}

func (m *UserRepository) ListByBusiness(businessID string) ([]*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*domain.User{}
	for _, u := range m.byID {
		if u.BusinessID == businessID {
			out = append(out, u)
		}
	}
	return out, nil
}

type BusinessRepository struct {
	mu          sync.RWMutex
	byID        map[string]*domain.Business
	bySubdomain map[string]*domain.Business
	users       *UserRepository
}

func NewBusinessRepository(users *UserRepository) *BusinessRepository {
	return &BusinessRepository{
		byID:        map[string]*domain.Business{},
		bySubdomain: map[string]*domain.Business{},
		users:       users,
	}
}

func (m *BusinessRepository) Create(b *domain.Business) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createLocked(b)
}

func (m *BusinessRepository) createLocked(b *domain.Business) error {
	if _, ok := m.bySubdomain[b.Subdomain]; ok {
		return domain.Errorf(domain.EConflict, "subdomain already taken")
	}
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	m.byID[b.ID] = b
	m.bySubdomain[b.Subdomain] = b
	return nil
}

func (m *BusinessRepository) CreateWithOwner(b *domain.Business, owner *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.createLocked(b); err != nil {
		return err
	}
	if err := m.users.Create(owner); err != nil {
		delete(m.byID, b.ID)
		delete(m.bySubdomain, b.Subdomain)
		return err
	}
	return nil
}

func (m *BusinessRepository) GetByID(id string) (*domain.Business, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if b, ok := m.byID[id]; ok {
		return b, nil
	}
	return nil, domain.Errorf(domain.ENotFound, "business not found")
}

func (m *BusinessRepository) GetBySubdomain(subdomain string) (*domain.Business, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if b, ok := m.bySubdomain[subdomain]; ok {
		return b, nil
	}
	return nil, domain.Errorf(domain.ENotFound, "business not found")
}

type CustomerRepository struct {
	mu   sync.RWMutex
	byID map[string]*domain.Customer
}

func NewCustomerRepository() *CustomerRepository {
	return &CustomerRepository{byID: map[string]*domain.Customer{}}
}

func (m *CustomerRepository) lookupLocked(businessID, email string) *domain.Customer {
	for _, c := range m.byID {
		if c.BusinessID == businessID && c.Email == email {
			return c
		}
	}
	return nil
}

func (m *CustomerRepository) FindOrCreate(c *domain.Customer) (*domain.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing := m.lookupLocked(c.BusinessID, c.Email); existing != nil {
		return existing, nil
	}
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	m.byID[c.ID] = c
	return c, nil
}

func (m *CustomerRepository) Create(c *domain.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lookupLocked(c.BusinessID, c.Email) != nil {
		return domain.Errorf(domain.EConflict, "a customer with this email already exists")
	}
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	m.byID[c.ID] = c
	return nil
}

func (m *CustomerRepository) GetByID(businessID, id string) (*domain.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.byID[id]; ok && c.BusinessID == businessID {
		return c, nil
	}
	return nil, domain.Errorf(domain.ENotFound, "customer not found")
}

func (m *CustomerRepository) ListByBusiness(businessID string) ([]*domain.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*domain.Customer{}
	for _, c := range m.byID {
		if c.BusinessID == businessID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *CustomerRepository) Update(c *domain.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.byID[c.ID]
	if !ok || existing.BusinessID != c.BusinessID {
		return domain.Errorf(domain.ENotFound, "customer not found")
	}
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = time.Now()
	m.byID[c.ID] = c
	return nil
}

func (m *CustomerRepository) Delete(businessID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.byID[id]; ok && c.BusinessID == businessID {
		delete(m.byID, id)
		return nil
	}
	return domain.Errorf(domain.ENotFound, "customer not found")
}

type ServiceRepository struct {
	mu        sync.RWMutex
	byID      map[string]*domain.Service
	updates   map[string][]*domain.ServiceUpdate
	customers *CustomerRepository
}

func NewServiceRepository(customers *CustomerRepository) *ServiceRepository {
	return &ServiceRepository{
		byID:      map[string]*domain.Service{},
		updates:   map[string][]*domain.ServiceUpdate{},
		customers: customers,
	}
}

func (m *ServiceRepository) CreateTicket(svc *domain.Service, cust *domain.Customer, initial *domain.ServiceUpdate) (*domain.Customer, error) {
	customer, err := m.customers.FindOrCreate(cust)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	svc.CustomerID = customer.ID
	svc.Customer = customer
	svc.CreatedAt = time.Now()
	svc.UpdatedAt = svc.CreatedAt
	m.byID[svc.ID] = svc
	initial.CreatedAt = time.Now()
	m.updates[svc.ID] = append(m.updates[svc.ID], initial)
	return customer, nil
}

func (m *ServiceRepository) GetByID(businessID, id string) (*domain.Service, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.byID[id]; ok && s.BusinessID == businessID {
		copied := *s
		return &copied, nil
	}
	return nil, domain.Errorf(domain.ENotFound, "service not found")
}

func (m *ServiceRepository) ListByBusiness(businessID string) ([]*domain.Service, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*domain.Service{}
	for _, s := range m.byID {
		if s.BusinessID == businessID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *ServiceRepository) UpdateStatus(businessID, id, status string, update *domain.ServiceUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
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

func (m *ServiceRepository) CountByCustomer(businessID, customerID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, s := range m.byID {
		if s.BusinessID == businessID && s.CustomerID == customerID {
			n++
		}
	}
	return n, nil
}

func (m *ServiceRepository) ListUpdates(businessID, serviceID string) ([]*domain.ServiceUpdate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.byID[serviceID]; !ok || s.BusinessID != businessID {
		return []*domain.ServiceUpdate{}, nil
	}
	return m.updates[serviceID], nil
}

type CredentialRepository struct {
	mu      sync.Mutex
	byEmail map[string]*domain.Credential
}

func NewCredentialRepository() *CredentialRepository {
	return &CredentialRepository{byEmail: map[string]*domain.Credential{}}
}

func (m *CredentialRepository) Create(cred *domain.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[cred.Email]; ok {
		return domain.Errorf(domain.EConflict, "email already registered")
	}
	cred.CreatedAt = time.Now()
	m.byEmail[cred.Email] = cred
	return nil
}

func (m *CredentialRepository) GetByEmail(email string) (*domain.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cred, ok := m.byEmail[email]; ok {
		return cred, nil
	}
	return nil, domain.Errorf(domain.ENotFound, "identity not found")
}
