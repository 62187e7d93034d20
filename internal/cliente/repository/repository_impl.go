package repository

import (
	"context"

	"github.com/smallbiznis/clientes/internal/cliente/domain"
	"github.com/smallbiznis/clientes/pkg/db"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, conn *gorm.DB, cliente *domain.Cliente) error {
	return translate(conn.WithContext(ctx).Create(cliente).Error)
}

func (r *repo) FindByID(ctx context.Context, conn *gorm.DB, id int64) (*domain.Cliente, error) {
	var cliente domain.Cliente
	err := conn.WithContext(ctx).
		Where("id = ?", id).
		First(&cliente).Error
	if err != nil {
		return nil, translate(err)
	}
	return &cliente, nil
}

func (r *repo) ListByOwner(ctx context.Context, conn *gorm.DB, ownerID int64) ([]domain.Cliente, error) {
	var clientes []domain.Cliente
	err := conn.WithContext(ctx).
		Model(&domain.Cliente{}).
		Where("id_usuario = ?", ownerID).
		Order("id asc").
		Find(&clientes).Error
	if err != nil {
		return nil, translate(err)
	}
	return clientes, nil
}

func (r *repo) Update(ctx context.Context, conn *gorm.DB, id int64, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	err := conn.WithContext(ctx).
		Model(&domain.Cliente{}).
		Where("id = ?", id).
		Updates(fields).Error
	return translate(err)
}

// Delete removes the row; zero affected rows means it was already gone.
func (r *repo) Delete(ctx context.Context, conn *gorm.DB, id int64) error {
	res := conn.WithContext(ctx).
		Where("id = ?", id).
		Delete(&domain.Cliente{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func translate(err error) error {
	switch db.Classify(err) {
	case db.KindNone:
		return nil
	case db.KindNotFound:
		return domain.ErrNotFound
	case db.KindDuplicate:
		return domain.ErrDuplicate
	default:
		return err
	}
}
