package domain

import (
	"context"
)

type CreateClienteRequest struct {
	Name         string  `json:"nombre" validate:"required"`
	SocialHandle string  `json:"tiktok" validate:"required"`
	Phone        *string `json:"telefono"`
	Email        *string `json:"correo"`
	Status       *bool   `json:"estado" validate:"required"`
	OwnerID      int64   `json:"id_usuario" validate:"required"`
}

// UpdateClienteRequest carries a partial update. Nil fields are left unchanged.
// ID is only read by the body-addressed update.
type UpdateClienteRequest struct {
	ID           int64   `json:"id"`
	Name         *string `json:"nombre"`
	SocialHandle *string `json:"tiktok"`
	Phone        *string `json:"telefono"`
	Email        *string `json:"correo"`
	Status       *bool   `json:"estado"`
}

// HasData reports whether the request carries anything worth writing. Empty
// strings count as absent; an explicit estado always counts.
func (r UpdateClienteRequest) HasData() bool {
	return nonEmpty(r.Name) ||
		nonEmpty(r.SocialHandle) ||
		nonEmpty(r.Phone) ||
		nonEmpty(r.Email) ||
		r.Status != nil
}

// Fields returns the column assignments for every present field.
func (r UpdateClienteRequest) Fields() map[string]any {
	fields := make(map[string]any, 5)
	if r.Name != nil {
		fields["nombre"] = *r.Name
	}
	if r.SocialHandle != nil {
		fields["tiktok"] = *r.SocialHandle
	}
	if r.Phone != nil {
		fields["telefono"] = *r.Phone
	}
	if r.Email != nil {
		fields["correo"] = *r.Email
	}
	if r.Status != nil {
		fields["estado"] = *r.Status
	}
	return fields
}

func nonEmpty(s *string) bool {
	return s != nil && *s != ""
}

type Service interface {
	GetByID(ctx context.Context, id string) (Cliente, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Cliente, error)
	Create(ctx context.Context, req CreateClienteRequest) (Cliente, error)
	Update(ctx context.Context, id string, req UpdateClienteRequest) (Cliente, error)
	UpdateByBody(ctx context.Context, req UpdateClienteRequest) (Cliente, error)
	Delete(ctx context.Context, id string) error
}
