package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/smallbiznis/clientes/internal/cliente/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	repo     domain.Repository
	validate *validator.Validate
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("cliente.service"),
		repo:     p.Repo,
		validate: validator.New(),
	}
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Cliente, error) {
	clienteID, err := parseID(id)
	if err != nil {
		return domain.Cliente{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, clienteID)
	if err != nil {
		return domain.Cliente{}, err
	}
	return *item, nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]domain.Cliente, error) {
	owner, err := parseID(ownerID)
	if err != nil {
		return nil, domain.ErrMissingOwner
	}

	items, err := s.repo.ListByOwner(ctx, s.db, owner)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, domain.ErrNotFound
	}
	return items, nil
}

func (s *Service) Create(ctx context.Context, req domain.CreateClienteRequest) (domain.Cliente, error) {
	if err := s.validate.StructCtx(ctx, req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			s.log.Debug("rejected create payload", zap.Int("invalid_fields", len(verrs)))
		}
		return domain.Cliente{}, domain.ErrIncompleteData
	}
	if req.OwnerID < 0 {
		return domain.Cliente{}, domain.ErrIncompleteData
	}

	cliente := domain.Cliente{
		Name:         req.Name,
		SocialHandle: req.SocialHandle,
		Phone:        req.Phone,
		Email:        req.Email,
		Status:       *req.Status,
		OwnerID:      req.OwnerID,
	}

	if err := s.repo.Insert(ctx, s.db, &cliente); err != nil {
		return domain.Cliente{}, err
	}
	return cliente, nil
}

func (s *Service) Update(ctx context.Context, id string, req domain.UpdateClienteRequest) (domain.Cliente, error) {
	if !req.HasData() {
		return domain.Cliente{}, domain.ErrNoUpdateData
	}

	clienteID, err := parseID(id)
	if err != nil {
		return domain.Cliente{}, err
	}

	return s.update(ctx, clienteID, req.Fields())
}

func (s *Service) UpdateByBody(ctx context.Context, req domain.UpdateClienteRequest) (domain.Cliente, error) {
	if req.ID <= 0 {
		return domain.Cliente{}, domain.ErrMissingID
	}

	return s.update(ctx, req.ID, req.Fields())
}

// update applies fields and reloads the row inside one transaction.
func (s *Service) update(ctx context.Context, id int64, fields map[string]any) (domain.Cliente, error) {
	var updated domain.Cliente
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.repo.FindByID(ctx, tx, id); err != nil {
			return err
		}
		if len(fields) > 0 {
			if err := s.repo.Update(ctx, tx, id, fields); err != nil {
				return err
			}
		}
		item, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		updated = *item
		return nil
	})
	if err != nil {
		return domain.Cliente{}, err
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	clienteID, err := parseID(id)
	if err != nil {
		return err
	}

	if _, err := s.repo.FindByID(ctx, s.db, clienteID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, s.db, clienteID)
}

func parseID(value string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
