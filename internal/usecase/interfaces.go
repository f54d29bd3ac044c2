package usecase

import (
	"context"

	"civicvoice/internal/domain/entity"
)

// AuthProvider is the identity backend. The Firebase client satisfies it.
type AuthProvider interface {
	CreateUser(ctx context.Context, email, password, displayName string) (string, error)
	VerifyToken(ctx context.Context, token string) (*entity.AuthIdentity, error)
	IsEmailVerified(ctx context.Context, uid string) (bool, error)
	DeleteUser(ctx context.Context, uid string) error
	SignInWithEmailPassword(ctx context.Context, email, password string) (*entity.SignInResult, error)
	SendEmailVerification(ctx context.Context, idToken string) error
	RefreshIDToken(ctx context.Context, refreshToken string) (string, string, error)
	TestConnection(ctx context.Context) error
}
