package repository

import (
	"context"

	"civicvoice/internal/domain/entity"
)

type UserRepository interface {
	Create(ctx context.Context, profile *entity.UserProfile) error
	GetByID(ctx context.Context, id string) (*entity.UserProfile, error)
}
