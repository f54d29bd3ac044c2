package postal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, status int, body string) (*httptest.Server, *int) {
	t.Helper()
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/pincode/600001", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestLookup_Success(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `[{"Message":"Number of pincode(s) found:1","Status":"Success","PostOffice":[{"Name":"Parrys","District":"Chennai","State":"Tamil Nadu"}]}]`)
	client := NewPincodeClient(srv.URL, time.Second)

	loc, err := client.Lookup(context.Background(), "600001")
	require.NoError(t, err)
	assert.True(t, loc.Resolved())
	assert.Equal(t, "Chennai", loc.City)
	assert.Equal(t, "Tamil Nadu", loc.State)
	assert.Equal(t, "Parrys", loc.PostOffice)
}

func TestLookup_UnknownPincodeIsUnresolved(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `[{"Message":"No records found","Status":"Error","PostOffice":null}]`)
	client := NewPincodeClient(srv.URL, time.Second)

	loc, err := client.Lookup(context.Background(), "600001")
	require.NoError(t, err)
	assert.False(t, loc.Resolved())
}

func TestLookup_ServerErrorReturnsError(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusBadGateway, `oops`)
	client := NewPincodeClient(srv.URL, time.Second)

	_, err := client.Lookup(context.Background(), "600001")
	assert.Error(t, err)
}

func TestLookup_MalformedPincodeSkipsRemoteCall(t *testing.T) {
	srv, calls := newTestServer(t, http.StatusOK, `[]`)
	client := NewPincodeClient(srv.URL, time.Second)

	loc, err := client.Lookup(context.Background(), "12ab")
	require.NoError(t, err)
	assert.False(t, loc.Resolved())
	assert.Equal(t, 0, *calls)
}
