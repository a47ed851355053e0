package handler

import (
	"time"

	"github.com/yourorg/servicetracker/internal/domain"
)

// Response DTOs. Domain types stay free of transport concerns; the wire
// shapes live here.

type BusinessDTO struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Subdomain      string    `json:"subdomain"`
	Plan           string    `json:"plan"`
	LogoURL        string    `json:"logoUrl,omitempty"`
	BrandPrimary   string    `json:"brandPrimary,omitempty"`
	BrandSecondary string    `json:"brandSecondary,omitempty"`
	BusinessType   string    `json:"businessType,omitempty"`
	TeamSize       string    `json:"teamSize,omitempty"`
	PrimaryGoal    string    `json:"primaryGoal,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

type UserDTO struct {
	ID         string    `json:"id"`
	BusinessID string    `json:"businessId"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Role       string    `json:"role"`
	CreatedAt  time.Time `json:"createdAt"`
}

type CustomerDTO struct {
	ID         string    `json:"id"`
	BusinessID string    `json:"businessId"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone,omitempty"`
	Address    string    `json:"address,omitempty"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type ServiceDTO struct {
	ID            string       `json:"id"`
	BusinessID    string       `json:"businessId"`
	CustomerID    string       `json:"customerId"`
	TechnicianID  string       `json:"technicianId,omitempty"`
	Title         string       `json:"title"`
	Description   string       `json:"description,omitempty"`
	Status        string       `json:"status"`
	Priority      string       `json:"priority"`
	EstimatedCost float64      `json:"estimatedCost,omitempty"`
	ActualCost    float64      `json:"actualCost,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
	Customer      *CustomerDTO `json:"customer,omitempty"`
}

type ServiceUpdateDTO struct {
	ID        string    `json:"id"`
	ServiceID string    `json:"serviceId"`
	UserID    string    `json:"userId,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

func toBusinessDTO(b *domain.Business) *BusinessDTO {
	if b == nil {
		return nil
	}
	return &BusinessDTO{
		ID:             b.ID,
		Name:           b.Name,
		Subdomain:      b.Subdomain,
		Plan:           b.Plan,
		LogoURL:        b.LogoURL,
		BrandPrimary:   b.BrandPrimary,
		BrandSecondary: b.BrandSecondary,
		BusinessType:   b.BusinessType,
		TeamSize:       b.TeamSize,
		PrimaryGoal:    b.PrimaryGoal,
		CreatedAt:      b.CreatedAt,
	}
}

func toUserDTO(u *domain.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:         u.ID,
		BusinessID: u.BusinessID,
		Email:      u.Email,
		Name:       u.Name,
		Role:       u.Role,
		CreatedAt:  u.CreatedAt,
	}
}

func toCustomerDTO(c *domain.Customer) *CustomerDTO {
	if c == nil {
		return nil
	}
	return &CustomerDTO{
		ID:         c.ID,
		BusinessID: c.BusinessID,
		Name:       c.Name,
		Email:      c.Email,
		Phone:      c.Phone,
		Address:    c.Address,
		Notes:      c.Notes,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

func toServiceDTO(s *domain.Service) *ServiceDTO {
	if s == nil {
		return nil
	}
	return &ServiceDTO{
		ID:            s.ID,
		BusinessID:    s.BusinessID,
		CustomerID:    s.CustomerID,
		TechnicianID:  s.TechnicianID,
		Title:         s.Title,
		Description:   s.Description,
		Status:        s.Status,
		Priority:      s.Priority,
		EstimatedCost: s.EstimatedCost,
		ActualCost:    s.ActualCost,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
		Customer:      toCustomerDTO(s.Customer),
	}
}

func toServiceDTOs(services []*domain.Service) []*ServiceDTO {
	out := make([]*ServiceDTO, 0, len(services))
	for _, s := range services {
		out = append(out, toServiceDTO(s))
	}
	return out
}

func toCustomerDTOs(customers []*domain.Customer) []*CustomerDTO {
	out := make([]*CustomerDTO, 0, len(customers))
	for _, c := range customers {
		out = append(out, toCustomerDTO(c))
	}
	return out
}

func toServiceUpdateDTOs(updates []*domain.ServiceUpdate) []*ServiceUpdateDTO {
	out := make([]*ServiceUpdateDTO, 0, len(updates))
	for _, u := range updates {
		out = append(out, &ServiceUpdateDTO{
			ID:        u.ID,
			ServiceID: u.ServiceID,
			UserID:    u.UserID,
			Message:   u.Message,
			CreatedAt: u.CreatedAt,
		})
	}
	return out
}
