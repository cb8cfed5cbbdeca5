package billwerk_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finbridge/escalator/internal/billwerk"
	"github.com/finbridge/escalator/internal/config"
	"github.com/finbridge/escalator/internal/httpclient"
	"github.com/finbridge/escalator/internal/logger"
)

func newTokenSource(t *testing.T, serverURL string) *billwerk.TokenSource {
	t.Helper()
	cfg := config.GetDefaultConfig()
	cfg.Billwerk.BaseURL = serverURL
	cfg.Billwerk.ClientID = "client-id"
	cfg.Billwerk.ClientSecret = "client-secret"
	log := logger.NewNopLogger()
	return billwerk.NewTokenSource(cfg, httpclient.NewDefaultClient(log), log)
}

func TestTokenSourceNoCredentials(t *testing.T) {
	cfg := config.GetDefaultConfig()
	log := logger.NewNopLogger()
	source := billwerk.NewTokenSource(cfg, httpclient.NewDefaultClient(log), log)

	header, err := source.AuthorizationHeader(context.Background())
	require.NoError(t, err)
	assert.Empty(t, header)
}

func TestTokenSourceFetchesAndCaches(t *testing.T) {
	var fetches atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/oauth/token/", r.URL.Path)
		require.NoError(t, r.ParseForm())
		require.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		require.Equal(t, "client-id", r.PostForm.Get("client_id"))

		fetches.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-1","expires_in":3600}`))
	}))
	defer server.Close()

	source := newTokenSource(t, server.URL)
	ctx := context.Background()

	header, err := source.AuthorizationHeader(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-1", header)

	// Second call is served from the cache.
	header, err = source.AuthorizationHeader(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-1", header)
	assert.Equal(t, int32(1), fetches.Load())
}

func TestTokenSourceCollapsesConcurrentFetches(t *testing.T) {
	var fetches atomic.Int32
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches.Add(1)
		<-release
		_, _ = w.Write([]byte(`{"access_token":"tok-shared","expires_in":3600}`))
	}))
	defer server.Close()

	source := newTokenSource(t, server.URL)
	ctx := context.Background()

	const callers = 8
	headers := make([]string, callers)
	errs := make([]error, callers)

	var started, done sync.WaitGroup
	for i := 0; i < callers; i++ {
		started.Add(1)
		done.Add(1)
		go func(i int) {
			defer done.Done()
			started.Done()
			headers[i], errs[i] = source.AuthorizationHeader(ctx)
		}(i)
	}

	started.Wait()
	close(release)
	done.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "Bearer tok-shared", headers[i])
	}
	assert.Equal(t, int32(1), fetches.Load())
}

func TestTokenSourceRetriesAfterFailure(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 400 is not retried by the transport, so the first call fails.
		if requests.Add(1) == 1 {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_client"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"tok-2","expires_in":3600}`))
	}))
	defer server.Close()

	source := newTokenSource(t, server.URL)
	ctx := context.Background()

	// The failure propagates and nothing gets cached.
	_, err := source.AuthorizationHeader(ctx)
	require.Error(t, err)
	httpErr, ok := httpclient.IsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)

	header, err := source.AuthorizationHeader(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-2", header)
}

func TestTokenSourceRejectsEmptyToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"expires_in":3600}`))
	}))
	defer server.Close()

	source := newTokenSource(t, server.URL)
	_, err := source.AuthorizationHeader(context.Background())
	require.Error(t, err)
}
