package transfer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  *string `json:"name"`
	Count *int    `json:"count"`
}

func testClient() *Client {
	return NewClient(&http.Client{Timeout: 5 * time.Second}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetch_Success(t *testing.T) {
	srv := serve(t, http.StatusOK, `{"name":"Paris"}`)

	got, err := Get[payload](context.Background(), testClient(), srv.URL, nil)
	require.NoError(t, err)
	require.NotNil(t, got.Name)
	assert.Equal(t, "Paris", *got.Name)
	assert.Nil(t, got.Count, "missing optional field is not an error")
}

func TestFetch_Non200IsNetworkFailure(t *testing.T) {
	for _, status := range []int{http.StatusCreated, http.StatusUnauthorized, http.StatusInternalServerError} {
		srv := serve(t, status, `{"name":"ignored"}`)

		_, err := Get[payload](context.Background(), testClient(), srv.URL, nil)

		var terr *Error
		require.ErrorAs(t, err, &terr)
		assert.Equal(t, NetworkFailure, terr.Kind)
		assert.Equal(t, status, terr.StatusCode)
	}
}

func TestFetch_EmptyBodyIsNoResponse(t *testing.T) {
	srv := serve(t, http.StatusOK, "  \n")

	_, err := Get[payload](context.Background(), testClient(), srv.URL, nil)
	assert.ErrorIs(t, err, &Error{Kind: NoResponse})
}

func TestFetch_MalformedBodyIsDecodingFailed(t *testing.T) {
	srv := serve(t, http.StatusOK, `{"name": 12}`)

	_, err := Get[payload](context.Background(), testClient(), srv.URL, nil)

	var terr *Error
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, DecodingFailed, terr.Kind)
	require.Error(t, terr.Cause)
	assert.Contains(t, err.Error(), "decoding failed")
}

func TestFetch_TransportErrorIsRequestFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(&http.Client{Timeout: 50 * time.Millisecond}, nil)
	_, err := Get[payload](context.Background(), c, srv.URL, nil)

	assert.ErrorIs(t, err, &Error{Kind: RequestFailed})
}

func TestGet_ForwardsHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Client-ID abc", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		_, _ = w.Write([]byte(`{"count":3}`))
	}))
	defer srv.Close()

	got, err := Get[payload](context.Background(), testClient(), srv.URL, http.Header{"Authorization": {"Client-ID abc"}})
	require.NoError(t, err)
	assert.Equal(t, 3, *got.Count)
}

type failingDoer struct{}

func (failingDoer) Do(*http.Request) (*http.Response, error) {
	return nil, errors.New("dial tcp: refused")
}

func TestFetch_CustomDoer(t *testing.T) {
	c := NewClient(failingDoer{}, nil)
	req, err := http.NewRequest(http.MethodGet, "https://example.com/data?appid=secret", nil)
	require.NoError(t, err)

	_, err = Fetch[payload](context.Background(), c, req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refused")
}

func TestRedactDropsQuery(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "https://example.com/data?appid=secret", nil)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/data", redact(req))
}
