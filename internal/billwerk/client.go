package billwerk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/finbridge/escalator/internal/config"
	ierr "github.com/finbridge/escalator/internal/errors"
	"github.com/finbridge/escalator/internal/httpclient"
	"github.com/finbridge/escalator/internal/logger"
)

const (
	ledgerEntriesTake = 500
	invoiceListTake   = 200
)

// Client defines the billing provider operations the orchestrator uses.
type Client interface {
	GetContract(ctx context.Context, contractID string) (*Contract, error)
	GetCustomer(ctx context.Context, customerID string) (*Customer, error)
	ListLedgerEntries(ctx context.Context, contractID string) ([]LedgerEntry, error)
	GetInvoice(ctx context.Context, invoiceID string) (*Invoice, error)
	ListInvoices(ctx context.Context, customerID string) ([]Invoice, error)
	ListDunnings(ctx context.Context, customerID string) ([]Dunning, error)
	DownloadInvoicePDF(ctx context.Context, invoiceID string) ([]byte, error)
	DownloadDunningPDF(ctx context.Context, dunningID string) ([]byte, error)
	BookPayment(ctx context.Context, contractID string, payment PaymentRequest) error
}

type restClient struct {
	baseURL           string
	dunningTake       int
	dunningTemplateID string
	tokens            *TokenSource
	httpClient        httpclient.Client
	logger            *logger.Logger
}

// NewClient creates a Billwerk REST client.
func NewClient(cfg *config.Configuration, tokens *TokenSource, client httpclient.Client, log *logger.Logger) Client {
	return &restClient{
		baseURL:           strings.TrimRight(cfg.Billwerk.BaseURL, "/"),
		dunningTake:       cfg.Billwerk.DunningTake,
		dunningTemplateID: cfg.Billwerk.DunningTemplateID,
		tokens:            tokens,
		httpClient:        client,
		logger:            log,
	}
}

func (c *restClient) GetContract(ctx context.Context, contractID string) (*Contract, error) {
	var contract Contract
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/contracts/"+contractID, nil, nil, &contract); err != nil {
		return nil, err
	}
	return &contract, nil
}

func (c *restClient) GetCustomer(ctx context.Context, customerID string) (*Customer, error) {
	var customer Customer
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/customers/"+customerID, nil, nil, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

func (c *restClient) ListLedgerEntries(ctx context.Context, contractID string) ([]LedgerEntry, error) {
	query := url.Values{"take": {strconv.Itoa(ledgerEntriesTake)}}
	var entries []LedgerEntry
	path := fmt.Sprintf("/api/v1/contracts/%s/ledgerentries", contractID)
	if err := c.doJSON(ctx, http.MethodGet, path, query, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *restClient) GetInvoice(ctx context.Context, invoiceID string) (*Invoice, error) {
	var invoice Invoice
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/invoices/"+invoiceID, nil, nil, &invoice); err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (c *restClient) ListInvoices(ctx context.Context, customerID string) ([]Invoice, error) {
	query := url.Values{
		"customerId": {customerID},
		"take":       {strconv.Itoa(invoiceListTake)},
	}
	var invoices []Invoice
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/invoices", query, nil, &invoices); err != nil {
		return nil, err
	}
	return invoices, nil
}

func (c *restClient) ListDunnings(ctx context.Context, customerID string) ([]Dunning, error) {
	query := url.Values{
		"customerId": {customerID},
		"drafts":     {"false"},
		"search":     {""},
		"from":       {""},
		"skip":       {"0"},
		"take":       {strconv.Itoa(c.dunningTake)},
	}
	if c.dunningTemplateID != "" {
		query.Set("templateId", c.dunningTemplateID)
	}

	var dunnings []Dunning
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/dunnings", query, nil, &dunnings); err != nil {
		return nil, err
	}
	return dunnings, nil
}

// DownloadInvoicePDF issues a download link for the invoice document
// and fetches it. Link URLs are pre-signed, so the fetch itself carries
// no authorization.
func (c *restClient) DownloadInvoicePDF(ctx context.Context, invoiceID string) ([]byte, error) {
	var link downloadLink
	path := fmt.Sprintf("/api/v1/invoices/%s/downloadlink", invoiceID)
	if err := c.doJSON(ctx, http.MethodPost, path, nil, nil, &link); err != nil {
		return nil, err
	}
	if link.URL == "" {
		return nil, ierr.NewError("missing invoice download link").
			WithHintf("No download link issued for invoice %s", invoiceID).
			Mark(ierr.ErrIntegrity)
	}
	return c.fetchDocument(ctx, link.URL, nil)
}

// DownloadDunningPDF tries the download-link indirection first and
// falls back to the direct download endpoint when the provider does not
// support it for dunnings (404/405).
func (c *restClient) DownloadDunningPDF(ctx context.Context, dunningID string) ([]byte, error) {
	var link downloadLink
	path := fmt.Sprintf("/api/v1/dunnings/%s/downloadlink", dunningID)
	err := c.doJSON(ctx, http.MethodPost, path, nil, nil, &link)
	if err != nil {
		httpErr, ok := httpclient.IsHTTPError(err)
		if !ok || (httpErr.StatusCode != http.StatusNotFound && httpErr.StatusCode != http.StatusMethodNotAllowed) {
			return nil, err
		}
	} else if link.URL != "" {
		return c.fetchDocument(ctx, link.URL, nil)
	}

	authorization, err := c.tokens.AuthorizationHeader(ctx)
	if err != nil {
		return nil, err
	}
	downloadURL := fmt.Sprintf("%s/api/v1/dunnings/%s/download", c.baseURL, dunningID)
	headers := map[string]string{}
	if authorization != "" {
		headers["Authorization"] = authorization
	}
	return c.fetchDocument(ctx, downloadURL, headers)
}

func (c *restClient) BookPayment(ctx context.Context, contractID string, payment PaymentRequest) error {
	path := fmt.Sprintf("/api/v1/contracts/%s/payment", contractID)
	return c.doJSON(ctx, http.MethodPost, path, nil, payment, nil)
}

// doJSON performs an authorized JSON request against the provider API.
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

	authorization, err := c.tokens.AuthorizationHeader(ctx)
	if err != nil {
		return err
	}

	headers := map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
	}
	if authorization != "" {
		headers["Authorization"] = authorization
	}

	resp, err := c.httpClient.Send(ctx, &httpclient.Request{
		Method:  method,
		URL:     fullURL,
		Headers: headers,
		Body:    jsonBody,
	})
	if err != nil {
		return err
	}

	if out != nil && len(resp.Body) > 0 {
		if err := json.Unmarshal(resp.Body, out); err != nil {
			return ierr.WithError(err).
				WithHintf("Invalid response from billing provider for %s", path).
				Mark(ierr.ErrHTTPClient)
		}
	}
	return nil
}

// fetchDocument downloads binary document content, resolving relative
// link URLs against the provider base URL.
func (c *restClient) fetchDocument(ctx context.Context, rawURL string, headers map[string]string) ([]byte, error) {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrSystem)
	}
	ref, err := url.Parse(rawURL)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Invalid document download link").
			Mark(ierr.ErrIntegrity)
	}

	resp, err := c.httpClient.Send(ctx, &httpclient.Request{
		Method:  http.MethodGet,
		URL:     base.ResolveReference(ref).String(),
		Headers: headers,
	})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}
