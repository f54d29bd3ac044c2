package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"civicvoice/internal/domain/entity"
	"civicvoice/internal/domain/repository"
	"civicvoice/pkg/errors"
	"civicvoice/pkg/logger"
)

type AuthUseCase struct {
	userRepo     repository.UserRepository
	firebaseAuth AuthProvider
	admins       *entity.AdminAllowList
}

func NewAuthUseCase(userRepo repository.UserRepository, firebaseAuth AuthProvider, admins *entity.AdminAllowList) *AuthUseCase {
	return &AuthUseCase{
		userRepo:     userRepo,
		firebaseAuth: firebaseAuth,
		admins:       admins,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type RegisterResult struct {
	User                  *entity.UserProfile `json:"user"`
	VerificationEmailSent bool                `json:"verification_email_sent"`
}

type AuthResult struct {
	User         *entity.UserProfile `json:"user"`
	Token        string              `json:"token"`
	RefreshToken string              `json:"refresh_token"`
	ExpiresIn    string              `json:"expires_in"`
	IsAdmin      bool                `json:"is_admin"`
}

// Register creates the account and profile and mails a verification link.
// No session is issued; the user must verify before logging in.
func (uc *AuthUseCase) Register(ctx context.Context, input RegisterInput) (*RegisterResult, error) {
	email := strings.TrimSpace(input.Email)
	if uc.admins.Contains(email) {
		return nil, errors.Forbidden("This email is reserved for administrators", nil)
	}

	uid, err := uc.firebaseAuth.CreateUser(ctx, email, input.Password, input.Name)
	if err != nil {
		if errors.Is(err, "CONFLICT") {
			return nil, err
		}
		return nil, errors.Internal("Failed to create user in authentication provider", err)
	}

	profile := &entity.UserProfile{
		ID:        uid,
		Name:      input.Name,
		Email:     email,
		CreatedAt: time.Now(),
	}
	if err := uc.userRepo.Create(ctx, profile); err != nil {
		// without a profile the account cannot be used, so remove it and let
		// the user register again
		if delErr := uc.firebaseAuth.DeleteUser(context.Background(), uid); delErr != nil {
			logger.Error("register: failed to remove account %s after profile error: %v", uid, delErr)
		}
		return nil, err
	}

	result := &RegisterResult{User: profile}

	session, err := uc.firebaseAuth.SignInWithEmailPassword(ctx, email, input.Password)
	if err != nil {
		logger.Warn("register: could not sign in %s to send verification: %v", uid, err)
		return result, nil
	}
	if err := uc.firebaseAuth.SendEmailVerification(ctx, session.IDToken); err != nil {
		logger.Warn("register: verification email for %s failed: %v", uid, err)
		return result, nil
	}
	result.VerificationEmailSent = true

	return result, nil
}

func (uc *AuthUseCase) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if uc.admins.Contains(email) {
		return nil, errors.Forbidden("Admins must login via the Admin Portal.", nil)
	}

	session, err := uc.signIn(ctx, email, password)
	if err != nil {
		return nil, err
	}

	verified, err := uc.firebaseAuth.IsEmailVerified(ctx, session.UID)
	if err != nil {
		return nil, errors.Internal("Failed to check email verification", err)
	}
	if !verified {
		return nil, errors.New("EMAIL_NOT_VERIFIED", "Please verify your email before logging in. Check your inbox.", http.StatusForbidden, nil)
	}

	profile, err := uc.userRepo.GetByID(ctx, session.UID)
	if err != nil {
		if !errors.IsNotFound(err) {
			return nil, err
		}
		// accounts created outside this service have no profile yet
		profile = &entity.UserProfile{ID: session.UID, Email: session.Email}
	}

	return &AuthResult{
		User:         profile,
		Token:        session.IDToken,
		RefreshToken: session.RefreshToken,
		ExpiresIn:    session.ExpiresIn,
	}, nil
}

func (uc *AuthUseCase) AdminLogin(ctx context.Context, email, password string) (*AuthResult, error) {
	if !uc.admins.Contains(email) {
		return nil, errors.Forbidden("Access Denied. You do not have admin privileges.", nil)
	}

	session, err := uc.signIn(ctx, email, password)
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		User:         &entity.UserProfile{ID: session.UID, Email: session.Email},
		Token:        session.IDToken,
		RefreshToken: session.RefreshToken,
		ExpiresIn:    session.ExpiresIn,
		IsAdmin:      true,
	}, nil
}

func (uc *AuthUseCase) RefreshToken(ctx context.Context, refreshToken string) (*AuthResult, error) {
	idToken, newRefresh, err := uc.firebaseAuth.RefreshIDToken(ctx, refreshToken)
	if err != nil {
		return nil, errors.Unauthorized("Invalid refresh token", err)
	}
	return &AuthResult{Token: idToken, RefreshToken: newRefresh}, nil
}

func (uc *AuthUseCase) GetProfile(ctx context.Context, uid string) (*entity.UserProfile, error) {
	return uc.userRepo.GetByID(ctx, uid)
}

func (uc *AuthUseCase) IsAdmin(email string) bool {
	return uc.admins.Contains(email)
}

func (uc *AuthUseCase) CheckProvider(ctx context.Context) error {
	if err := uc.firebaseAuth.TestConnection(ctx); err != nil {
		return errors.Unavailable("Firebase Auth is unreachable", err)
	}
	return nil
}

func (uc *AuthUseCase) signIn(ctx context.Context, email, password string) (*entity.SignInResult, error) {
	result, err := uc.firebaseAuth.SignInWithEmailPassword(ctx, email, password)
	if err != nil {
		logger.Debug("login failed for %s: %v", email, err)
		return nil, errors.Unauthorized("Incorrect email or password. Please try again.", err)
	}
	return result, nil
}
