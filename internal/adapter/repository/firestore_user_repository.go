package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"civicvoice/internal/domain/entity"
	"civicvoice/internal/domain/repository"
	"civicvoice/pkg/errors"
)

type firestoreUserRepository struct {
	client *firestore.Client
}

func NewFirestoreUserRepository(client *firestore.Client) repository.UserRepository {
	return &firestoreUserRepository{
		client: client,
	}
}

func (r *firestoreUserRepository) Create(ctx context.Context, profile *entity.UserProfile) error {
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = time.Now()
	}
	if _, err := r.client.Collection("users").Doc(profile.ID).Set(ctx, profile); err != nil {
		return errors.Internal("Failed to save user profile", err)
	}
	return nil
}

func (r *firestoreUserRepository) GetByID(ctx context.Context, id string) (*entity.UserProfile, error) {
	doc, err := r.client.Collection("users").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("User profile", err)
		}
		return nil, errors.Internal("Failed to get user profile", err)
	}

	var profile entity.UserProfile
	if err := doc.DataTo(&profile); err != nil {
		return nil, errors.Internal("Failed to parse user profile", err)
	}
	profile.ID = doc.Ref.ID

	return &profile, nil
}
