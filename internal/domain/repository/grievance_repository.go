package repository

import (
	"context"
	"time"

	"civicvoice/internal/domain/entity"
)

type GrievanceRepository interface {
	Create(ctx context.Context, grievance *entity.Grievance) error
	GetByID(ctx context.Context, id string) (*entity.Grievance, error)
	// List returns matches newest first.
	List(ctx context.Context, filter entity.GrievanceFilter) ([]*entity.Grievance, error)

	SetAnalysis(ctx context.Context, id string, analysis entity.GrievanceAnalysis) error
	MarkResolved(ctx context.Context, id string, at time.Time) error
	MarkVerified(ctx context.Context, id string) error
	Reopen(ctx context.Context, id string) error
	MarkPosted(ctx context.Context, ids ...string) error

	// Watch calls fn with the full result set on every change until ctx
	// is cancelled.
	Watch(ctx context.Context, filter entity.GrievanceFilter, fn func([]*entity.Grievance)) error
}
