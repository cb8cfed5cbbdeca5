package paywise

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finbridge/escalator/internal/config"
	"github.com/finbridge/escalator/internal/httpclient"
	"github.com/finbridge/escalator/internal/logger"
)

func newTestClient(t *testing.T, serverURL string) Client {
	t.Helper()
	cfg := config.GetDefaultConfig()
	cfg.Paywise.BaseURL = serverURL
	cfg.Paywise.Token = "pw-token"
	log := logger.NewNopLogger()
	return NewClient(cfg, httpclient.NewDefaultClient(log), log)
}

func TestFindDebtorByReference(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/debtors/", r.URL.Path)
		require.Equal(t, "Bearer pw-token", r.Header.Get("Authorization"))
		require.Equal(t, "cu1", r.URL.Query().Get("your_reference"))
		require.Equal(t, "1", r.URL.Query().Get("limit"))

		_, _ = w.Write([]byte(`{"results":[{"id":"debtor-1"}]}`))
	}))
	defer server.Close()

	debtor, err := newTestClient(t, server.URL).FindDebtorByReference(context.Background(), "cu1")
	require.NoError(t, err)
	require.NotNil(t, debtor)
	assert.Equal(t, "debtor-1", debtor.ID)
}

func TestFindDebtorByReferenceNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer server.Close()

	debtor, err := newTestClient(t, server.URL).FindDebtorByReference(context.Background(), "cu1")
	require.NoError(t, err)
	assert.Nil(t, debtor)
}

func TestFindClaimPrefersDocumentReference(t *testing.T) {
	var query map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		_, _ = w.Write([]byte(`{"results":[{"id":"claim-1"}]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	ctx := context.Background()

	claim, err := client.FindClaim(ctx, "R-1001", "billwerk:R-1001")
	require.NoError(t, err)
	require.NotNil(t, claim)
	assert.Equal(t, []string{"R-1001"}, query["document_reference"])
	assert.Empty(t, query["your_reference"])

	_, err = client.FindClaim(ctx, "", "billwerk:R-1001")
	require.NoError(t, err)
	assert.Equal(t, []string{"billwerk:R-1001"}, query["your_reference"])

	// Neither reference set: no lookup happens at all.
	claim, err = client.FindClaim(ctx, "", "")
	require.NoError(t, err)
	assert.Nil(t, claim)
}

func TestReleaseClaim(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		require.Equal(t, "/v1/claims/claim-1/", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	err := newTestClient(t, server.URL).ReleaseClaim(context.Background(), "claim-1")
	require.NoError(t, err)
	assert.Equal(t, "released", body["submission_state"])
	assert.Equal(t, true, body["send_order_confirmation"])
}

func TestUploadClaimDocument(t *testing.T) {
	content := []byte("%PDF-1.4 invoice")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/claims/claim-1/documents/", r.URL.Path)
		require.Equal(t, "Bearer pw-token", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()

		assert.Equal(t, "R-1001.pdf", header.Filename)
		assert.Equal(t, "application/pdf", header.Header.Get("Content-Type"))

		uploaded, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, content, uploaded)

		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	err := newTestClient(t, server.URL).UploadClaimDocument(context.Background(), "claim-1", "R-1001.pdf", content)
	require.NoError(t, err)
}

func TestCreateClaimPropagatesUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"due_date":["Invalid date."]}`))
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).CreateClaim(context.Background(), &ClaimPayload{})
	require.Error(t, err)

	httpErr, ok := httpclient.IsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
	assert.JSONEq(t, `{"due_date":["Invalid date."]}`, string(httpErr.Response))
}
