package unsplash

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/weather-stories/internal/observability"
	"github.com/couchcryptid/weather-stories/internal/transfer"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "access-key"

func testClient(baseURL string) *Client {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &Client{
		accessKey: testKey,
		baseURL:   baseURL,
		transfer:  transfer.NewClient(&http.Client{Timeout: 5 * time.Second}, logger),
		circuit:   newBreaker(logger),
		metrics:   observability.NewMetricsForTesting(),
		logger:    logger,
	}
}

func TestClient_FetchRandomPhotoURLs_Success(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := hits.Add(1)
		assert.Equal(t, "Paris", r.URL.Query().Get("query"))
		assert.Equal(t, "portrait", r.URL.Query().Get("orientation"))
		assert.Equal(t, "Client-ID "+testKey, r.Header.Get("Authorization"))
		fmt.Fprintf(w, `{"id":"x","urls":{"regular":"https://images.unsplash.com/photo-%d","small":"ignored"}}`, n)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	urls, err := c.FetchRandomPhotoURLs(context.Background(), "Paris", 5)
	require.NoError(t, err)

	assert.Equal(t, int32(5), hits.Load(), "one request per photo")
	require.Len(t, urls, 5)
	assert.Equal(t, "https://images.unsplash.com/photo-1", urls[0])
	assert.Equal(t, "https://images.unsplash.com/photo-5", urls[4])
	assert.InDelta(t, 5, testutil.ToFloat64(c.metrics.CollaboratorRequests.WithLabelValues(collaborator, "success")), 0)
}

func TestClient_FetchRandomPhotoURLs_OneFailureFailsBatch(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) == 3 {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte(`{"urls":{"regular":"https://images.unsplash.com/a"}}`))
	}))
	defer srv.Close()

	urls, err := testClient(srv.URL).FetchRandomPhotoURLs(context.Background(), "Paris", 5)

	require.Error(t, err)
	assert.Nil(t, urls, "no partial list")
	assert.Contains(t, err.Error(), "photo 3 of 5")
	assert.ErrorIs(t, err, &transfer.Error{Kind: transfer.NetworkFailure})
	assert.Equal(t, int32(3), hits.Load())
}

func TestClient_FetchRandomPhotoURLs_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"urls":{}}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).FetchRandomPhotoURLs(context.Background(), "Paris", 2)
	assert.ErrorIs(t, err, &transfer.Error{Kind: transfer.DecodingFailed})
}

func TestClient_CircuitOpensAfterConsecutiveFailures(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	for i := 0; i < 3; i++ {
		_, err := c.FetchRandomPhotoURLs(context.Background(), "Paris", 1)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrCircuitOpen)
	}

	_, err := c.FetchRandomPhotoURLs(context.Background(), "Paris", 1)
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, int32(3), hits.Load(), "open breaker short-circuits the request")
	assert.InDelta(t, 1, testutil.ToFloat64(c.metrics.CollaboratorRequests.WithLabelValues(collaborator, "rejected")), 0)
}

func TestClient_PhotoURLEscapesCity(t *testing.T) {
	c := NewClient(testKey, "", time.Second, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	u, err := c.photoURL("Saint-Denis & Co")
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL+"?orientation=portrait&query=Saint-Denis+%26+Co", u)
}
