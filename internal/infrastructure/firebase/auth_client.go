package firebase

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/auth"
	"github.com/go-resty/resty/v2"

	"civicvoice/internal/domain/entity"
	"civicvoice/pkg/errors"
)

const (
	identityToolkitURL = "https://identitytoolkit.googleapis.com/v1"
	secureTokenURL     = "https://securetoken.googleapis.com/v1"
)

// FirebaseAuthClient combines the admin SDK, used for user management and
// token verification, with the Identity Toolkit REST API, used for the
// password flows the admin SDK does not offer.
type FirebaseAuthClient struct {
	client *auth.Client
	apiKey string
	rest   *resty.Client

	identityToolkit string
	secureToken     string
}

func NewFirebaseAuthClient(client *auth.Client, apiKey string) *FirebaseAuthClient {
	return &FirebaseAuthClient{
		client:          client,
		apiKey:          apiKey,
		rest:            resty.New(),
		identityToolkit: identityToolkitURL,
		secureToken:     secureTokenURL,
	}
}

// WithBaseURLs points the REST calls somewhere else; used by tests.
func (f *FirebaseAuthClient) WithBaseURLs(identityToolkit, secureToken string) *FirebaseAuthClient {
	f.identityToolkit = identityToolkit
	f.secureToken = secureToken
	return f
}

func (f *FirebaseAuthClient) CreateUser(ctx context.Context, email, password, displayName string) (string, error) {
	params := (&auth.UserToCreate{}).
		Email(email).
		Password(password).
		DisplayName(displayName).
		EmailVerified(false)

	user, err := f.client.CreateUser(ctx, params)
	if err != nil {
		if auth.IsEmailAlreadyExists(err) {
			return "", errors.Conflict("Email already in use")
		}
		return "", err
	}

	return user.UID, nil
}

func (f *FirebaseAuthClient) VerifyToken(ctx context.Context, token string) (*entity.AuthIdentity, error) {
	result, err := f.client.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, err
	}

	identity := &entity.AuthIdentity{UID: result.UID}
	if email, ok := result.Claims["email"].(string); ok {
		identity.Email = email
	}
	if verified, ok := result.Claims["email_verified"].(bool); ok {
		identity.EmailVerified = verified
	}
	return identity, nil
}

func (f *FirebaseAuthClient) IsEmailVerified(ctx context.Context, uid string) (bool, error) {
	user, err := f.client.GetUser(ctx, uid)
	if err != nil {
		return false, err
	}
	return user.EmailVerified, nil
}

type identityError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (f *FirebaseAuthClient) DeleteUser(ctx context.Context, uid string) error {
	if err := f.client.DeleteUser(ctx, uid); err != nil {
		return errors.Internal("Failed to delete user", err)
	}
	return nil
}

func (f *FirebaseAuthClient) SignInWithEmailPassword(ctx context.Context, email, password string) (*entity.SignInResult, error) {
	var out struct {
		LocalID      string `json:"localId"`
		Email        string `json:"email"`
		IDToken      string `json:"idToken"`
		RefreshToken string `json:"refreshToken"`
		ExpiresIn    string `json:"expiresIn"`
	}
	var failure identityError

	resp, err := f.rest.R().
		SetContext(ctx).
		SetQueryParam("key", f.apiKey).
		SetBody(map[string]interface{}{
			"email":             email,
			"password":          password,
			"returnSecureToken": true,
		}).
		SetResult(&out).
		SetError(&failure).
		Post(f.identityToolkit + "/accounts:signInWithPassword")
	if err != nil {
		return nil, fmt.Errorf("sign-in request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("sign-in rejected: %s", failure.Error.Message)
	}

	return &entity.SignInResult{
		UID:          out.LocalID,
		Email:        out.Email,
		IDToken:      out.IDToken,
		RefreshToken: out.RefreshToken,
		ExpiresIn:    out.ExpiresIn,
	}, nil
}

// SendEmailVerification asks Firebase to mail a verification link to the
// owner of idToken.
func (f *FirebaseAuthClient) SendEmailVerification(ctx context.Context, idToken string) error {
	var failure identityError

	resp, err := f.rest.R().
		SetContext(ctx).
		SetQueryParam("key", f.apiKey).
		SetBody(map[string]string{
			"requestType": "VERIFY_EMAIL",
			"idToken":     idToken,
		}).
		SetError(&failure).
		Post(f.identityToolkit + "/accounts:sendOobCode")
	if err != nil {
		return fmt.Errorf("verification email request failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("verification email rejected: %s", failure.Error.Message)
	}
	return nil
}

func (f *FirebaseAuthClient) RefreshIDToken(ctx context.Context, refreshToken string) (string, string, error) {
	var out struct {
		IDToken      string `json:"id_token"`
		RefreshToken string `json:"refresh_token"`
	}
	var failure identityError

	resp, err := f.rest.R().
		SetContext(ctx).
		SetQueryParam("key", f.apiKey).
		SetFormData(map[string]string{
			"grant_type":    "refresh_token",
			"refresh_token": refreshToken,
		}).
		SetResult(&out).
		SetError(&failure).
		Post(f.secureToken + "/token")
	if err != nil {
		return "", "", fmt.Errorf("token refresh request failed: %w", err)
	}
	if resp.IsError() {
		return "", "", fmt.Errorf("token refresh rejected: %s", failure.Error.Message)
	}
	return out.IDToken, out.RefreshToken, nil
}
