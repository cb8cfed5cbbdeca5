package paywise

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/finbridge/escalator/internal/config"
	ierr "github.com/finbridge/escalator/internal/errors"
	"github.com/finbridge/escalator/internal/httpclient"
	"github.com/finbridge/escalator/internal/logger"
)

// Client defines the collection-service operations the orchestrator uses.
type Client interface {
	FindDebtorByReference(ctx context.Context, reference string) (*Debtor, error)
	CreateDebtor(ctx context.Context, payload *DebtorPayload) (*Debtor, error)
	FindClaim(ctx context.Context, documentReference, claimReference string) (*Claim, error)
	CreateClaim(ctx context.Context, payload *ClaimPayload) (*Claim, error)
	ReleaseClaim(ctx context.Context, claimID string) error
	UploadClaimDocument(ctx context.Context, claimID, filename string, content []byte) error
}

type restClient struct {
	baseURL    string
	token      string
	httpClient httpclient.Client
	logger     *logger.Logger
}

// NewClient creates a Paywise REST client.
func NewClient(cfg *config.Configuration, client httpclient.Client, log *logger.Logger) Client {
	return &restClient{
		baseURL:    strings.TrimRight(cfg.Paywise.BaseURL, "/"),
		token:      cfg.Paywise.Token,
		httpClient: client,
		logger:     log,
	}
}

// FindDebtorByReference looks a debtor up by external reference.
// Returns nil when no debtor matches.
func (c *restClient) FindDebtorByReference(ctx context.Context, reference string) (*Debtor, error) {
	query := url.Values{
		"your_reference": {reference},
		"limit":          {"1"},
	}

	var list debtorList
	if err := c.doJSON(ctx, http.MethodGet, "/v1/debtors/", query, nil, &list); err != nil {
		return nil, err
	}
	if len(list.Results) == 0 {
		return nil, nil
	}
	return &list.Results[0], nil
}

func (c *restClient) CreateDebtor(ctx context.Context, payload *DebtorPayload) (*Debtor, error) {
	var debtor Debtor
	if err := c.doJSON(ctx, http.MethodPost, "/v1/debtors/", nil, payload, &debtor); err != nil {
		return nil, err
	}
	return &debtor, nil
}

// FindClaim queries for an existing claim, preferring the document
// reference and falling back to the claim reference. Returns nil when
// no claim matches; this is the duplicate-claim guard.
func (c *restClient) FindClaim(ctx context.Context, documentReference, claimReference string) (*Claim, error) {
	query := url.Values{"limit": {"1"}}
	switch {
	case documentReference != "":
		query.Set("document_reference", documentReference)
	case claimReference != "":
		query.Set("your_reference", claimReference)
	default:
		return nil, nil
	}

	var list claimList
	if err := c.doJSON(ctx, http.MethodGet, "/v1/claims/", query, nil, &list); err != nil {
		return nil, err
	}
	if len(list.Results) == 0 {
		return nil, nil
	}
	return &list.Results[0], nil
}

func (c *restClient) CreateClaim(ctx context.Context, payload *ClaimPayload) (*Claim, error) {
	var claim Claim
	if err := c.doJSON(ctx, http.MethodPost, "/v1/claims/", nil, payload, &claim); err != nil {
		return nil, err
	}
	return &claim, nil
}

func (c *restClient) ReleaseClaim(ctx context.Context, claimID string) error {
	body := releaseRequest{
		SubmissionState:       "released",
		SendOrderConfirmation: true,
	}
	path := fmt.Sprintf("/v1/claims/%s/", claimID)
	return c.doJSON(ctx, http.MethodPatch, path, nil, body, nil)
}

// UploadClaimDocument attaches a PDF to the claim as a named multipart upload.
func (c *restClient) UploadClaimDocument(ctx context.Context, claimID, filename string, content []byte) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	header.Set("Content-Type", "application/pdf")

	part, err := writer.CreatePart(header)
	if err != nil {
		return ierr.WithError(err).Mark(ierr.ErrSystem)
	}
	if _, err := part.Write(content); err != nil {
		return ierr.WithError(err).Mark(ierr.ErrSystem)
	}
	if err := writer.Close(); err != nil {
		return ierr.WithError(err).Mark(ierr.ErrSystem)
	}

	resp, err := c.httpClient.Send(ctx, &httpclient.Request{
		Method: http.MethodPost,
		URL:    fmt.Sprintf("%s/v1/claims/%s/documents/", c.baseURL, claimID),
		Headers: map[string]string{
			"Authorization": "Bearer " + c.token,
			"Content-Type":  writer.FormDataContentType(),
		},
		Body: buf.Bytes(),
	})
	if err != nil {
		c.logger.Errorw("claim document upload failed",
			"claim_id", claimID,
			"filename", filename,
			"error", err)
		return err
	}

	c.logger.Infow("claim document uploaded",
		"claim_id", claimID,
		"filename", filename,
		"status", resp.StatusCode)
	return nil
}

// doJSON performs a bearer-authenticated JSON request against the
// collection service.
func (c *restClient) doJSON(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var jsonBody []byte
	if body != nil {
		var err error
		jsonBody, err = json.Marshal(body)
		if err != nil {
			return ierr.WithError(err).
				WithHint("Invalid request data").
				Mark(ierr.ErrSystem)
		}
	}

	resp, err := c.httpClient.Send(ctx, &httpclient.Request{
		Method: method,
		URL:    fullURL,
		Headers: map[string]string{
			"Authorization": "Bearer " + c.token,
			"Content-Type":  "application/json",
			"Accept":        "application/json",
		},
		Body: jsonBody,
	})
	if err != nil {
		return err
	}

	if out != nil && len(resp.Body) > 0 {
		if err := json.Unmarshal(resp.Body, out); err != nil {
			return ierr.WithError(err).
				WithHintf("Invalid response from collection service for %s", path).
				Mark(ierr.ErrHTTPClient)
		}
	}
	return nil
}
