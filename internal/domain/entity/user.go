package entity

import (
	"time"
)

// UserProfile is keyed by the auth provider UID and pre-fills the
// grievance form.
type UserProfile struct {
	ID        string    `json:"id" firestore:"id"`
	Name      string    `json:"name" firestore:"name"`
	Email     string    `json:"email" firestore:"email"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
}

// AuthIdentity is what the auth provider tells us about a signed-in user.
type AuthIdentity struct {
	UID           string
	Email         string
	EmailVerified bool
}

// SignInResult is a password sign-in session from the auth provider.
type SignInResult struct {
	UID          string
	Email        string
	IDToken      string
	RefreshToken string
	ExpiresIn    string
}
