package repository

import (
	"context"

	"civicvoice/internal/domain/entity"
)

type SocialPostRepository interface {
	Create(ctx context.Context, post *entity.SocialPost) error
	List(ctx context.Context, limit int) ([]*entity.SocialPost, error)
	Delete(ctx context.Context, id string) error

	// FindByLocation returns the AI post for a category at a public address,
	// or a NOT_FOUND error.
	FindByLocation(ctx context.Context, loc entity.SocialPostLocation) (*entity.SocialPost, error)
	IncrementReportCount(ctx context.Context, id string) error
	// CreateOrIncrement atomically re-checks the location and either
	// increments the existing post or stores post. It reports whether post
	// was created.
	CreateOrIncrement(ctx context.Context, loc entity.SocialPostLocation, post *entity.SocialPost) (bool, error)

	// CreateForGrievances stores post and flags every grievance in
	// grievanceIDs as posted, all or nothing.
	CreateForGrievances(ctx context.Context, post *entity.SocialPost, grievanceIDs []string) error

	ListAIGenerated(ctx context.Context, municipality, category string) ([]*entity.SocialPost, error)

	Watch(ctx context.Context, limit int, fn func([]*entity.SocialPost)) error
}
