package letterxpress

import (
	"context"
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
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
	cfg.LetterXpress.BaseURL = serverURL
	cfg.LetterXpress.Username = "lx-user"
	cfg.LetterXpress.APIKey = "lx-key"
	log := logger.NewNopLogger()
	return NewClient(cfg, httpclient.NewDefaultClient(log), log)
}

func TestSubmitPrintJob(t *testing.T) {
	pdf := []byte("%PDF-1.4 dunning")
	encoded := base64.StdEncoding.EncodeToString(pdf)
	checksum := md5.Sum([]byte(encoded))

	var received printJobPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v3/printjobs", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"id":12345}}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	result, err := client.SubmitPrintJob(context.Background(), pdf, "MA_1002.pdf")
	require.NoError(t, err)
	assert.Equal(t, "12345", result.JobID)

	assert.Equal(t, "lx-user", received.Auth.Username)
	assert.Equal(t, "lx-key", received.Auth.APIKey)
	assert.Equal(t, "test", received.Auth.Mode)
	assert.Equal(t, encoded, received.Letter.Base64File)
	assert.Equal(t, hex.EncodeToString(checksum[:]), received.Letter.Base64FileChecksum)
	assert.Equal(t, "MA_1002.pdf", received.Letter.FilenameOriginal)
	assert.Equal(t, "simplex", received.Letter.Specification.Mode)
	assert.Equal(t, "national", received.Letter.Specification.Shipping)
}

func TestSubmitPrintJobPropagatesUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"checksum mismatch"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.SubmitPrintJob(context.Background(), []byte("pdf"), "a.pdf")
	require.Error(t, err)

	httpErr, ok := httpclient.IsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnprocessableEntity, httpErr.StatusCode)
}

func TestJobIDVariants(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"nested number", `{"data":{"id":42}}`, "42"},
		{"nested string", `{"data":{"id":"jb-42"}}`, "jb-42"},
		{"top level string", `{"id":"jb-7"}`, "jb-7"},
		{"top level number", `{"id":7}`, "7"},
		{"nested wins over top level", `{"id":"outer","data":{"id":"inner"}}`, "inner"},
		{"empty response", `{}`, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var job printJobResponse
			require.NoError(t, json.Unmarshal([]byte(tc.body), &job))
			assert.Equal(t, tc.want, jobID(job))
		})
	}
}
