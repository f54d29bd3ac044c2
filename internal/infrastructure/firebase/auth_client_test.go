package firebase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignInWithEmailPassword(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/accounts:signInWithPassword", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")

		if body["password"] != "secret123" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":{"code":400,"message":"INVALID_LOGIN_CREDENTIALS"}}`))
			return
		}
		w.Write([]byte(`{"localId":"uid-1","email":"a@b.com","idToken":"id-tok","refreshToken":"ref-tok","expiresIn":"3600"}`))
	}))
	defer srv.Close()

	client := NewFirebaseAuthClient(nil, "test-key").WithBaseURLs(srv.URL, srv.URL)

	result, err := client.SignInWithEmailPassword(context.Background(), "a@b.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", result.UID)
	assert.Equal(t, "id-tok", result.IDToken)
	assert.Equal(t, "ref-tok", result.RefreshToken)

	_, err = client.SignInWithEmailPassword(context.Background(), "a@b.com", "wrong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INVALID_LOGIN_CREDENTIALS")
}

func TestSendEmailVerification(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/accounts:sendOobCode", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"email":"a@b.com"}`))
	}))
	defer srv.Close()

	client := NewFirebaseAuthClient(nil, "test-key").WithBaseURLs(srv.URL, srv.URL)
	require.NoError(t, client.SendEmailVerification(context.Background(), "id-tok"))
	assert.Equal(t, "VERIFY_EMAIL", got["requestType"])
	assert.Equal(t, "id-tok", got["idToken"])
}

func TestRefreshIDToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/token", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id_token":"new-id","refresh_token":"new-ref"}`))
	}))
	defer srv.Close()

	client := NewFirebaseAuthClient(nil, "test-key").WithBaseURLs(srv.URL, srv.URL)
	idToken, refresh, err := client.RefreshIDToken(context.Background(), "old-ref")
	require.NoError(t, err)
	assert.Equal(t, "new-id", idToken)
	assert.Equal(t, "new-ref", refresh)
}
