package domain

import (
	"context"

	"gorm.io/gorm"
)

//go:generate mockgen -source=repository.go -destination=../mocks/mock_repository.go -package=mocks
type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, cliente *Cliente) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Cliente, error)
	ListByOwner(ctx context.Context, db *gorm.DB, ownerID int64) ([]Cliente, error)
	Update(ctx context.Context, db *gorm.DB, id int64, fields map[string]any) error
	Delete(ctx context.Context, db *gorm.DB, id int64) error
}
