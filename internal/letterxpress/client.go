package letterxpress

import (
	"context"
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/finbridge/escalator/internal/config"
	ierr "github.com/finbridge/escalator/internal/errors"
	"github.com/finbridge/escalator/internal/httpclient"
	"github.com/finbridge/escalator/internal/logger"
)

// Client defines the postal print service operations.
type Client interface {
	SubmitPrintJob(ctx context.Context, pdf []byte, filename string) (*PrintJobResult, error)
}

// PrintJobResult reports the accepted print job.
type PrintJobResult struct {
	JobID string
}

type auth struct {
	Username string `json:"username"`
	APIKey   string `json:"apikey"`
	Mode     string `json:"mode"`
}

type specification struct {
	Color    string `json:"color"`
	Mode     string `json:"mode"`
	Shipping string `json:"shipping"`
	C4       int    `json:"c4"`
}

type letter struct {
	Base64File         string        `json:"base64_file"`
	Base64FileChecksum string        `json:"base64_file_checksum"`
	Specification      specification `json:"specification"`
	FilenameOriginal   string        `json:"filename_original"`
}

type printJobPayload struct {
	Auth   auth   `json:"auth"`
	Letter letter `json:"letter"`
}

// The job id arrives either nested under data or at the top level,
// as number or string depending on API version.
type printJobResponse struct {
	ID   any `json:"id"`
	Data *struct {
		ID any `json:"id"`
	} `json:"data"`
}

type restClient struct {
	cfg        config.LetterXpressConfig
	httpClient httpclient.Client
	logger     *logger.Logger
}

// NewClient creates a LetterXpress REST client.
func NewClient(cfg *config.Configuration, client httpclient.Client, log *logger.Logger) Client {
	return &restClient{
		cfg:        cfg.LetterXpress,
		httpClient: client,
		logger:     log,
	}
}

// SubmitPrintJob base64-encodes the PDF, computes the integrity
// checksum over the encoded content, and submits the print job.
func (c *restClient) SubmitPrintJob(ctx context.Context, pdf []byte, filename string) (*PrintJobResult, error) {
	encoded := base64.StdEncoding.EncodeToString(pdf)
	checksum := md5.Sum([]byte(encoded))

	payload := printJobPayload{
		Auth: auth{
			Username: c.cfg.Username,
			APIKey:   c.cfg.APIKey,
			Mode:     c.cfg.Mode,
		},
		Letter: letter{
			Base64File:         encoded,
			Base64FileChecksum: hex.EncodeToString(checksum[:]),
			Specification: specification{
				Color:    c.cfg.Color,
				Mode:     c.cfg.PrintMode,
				Shipping: c.cfg.Shipping,
				C4:       c.cfg.C4,
			},
			FilenameOriginal: filename,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrSystem)
	}

	resp, err := c.httpClient.Send(ctx, &httpclient.Request{
		Method: http.MethodPost,
		URL:    strings.TrimRight(c.cfg.BaseURL, "/") + "/v3/printjobs",
		Headers: map[string]string{
			"Content-Type": "application/json",
			"Accept":       "application/json",
		},
		Body: body,
	})
	if err != nil {
		return nil, err
	}

	var job printJobResponse
	if len(resp.Body) > 0 {
		if err := json.Unmarshal(resp.Body, &job); err != nil {
			c.logger.Warnw("unparsable print job response", "body", string(resp.Body))
		}
	}

	result := &PrintJobResult{JobID: jobID(job)}
	c.logger.Infow("print job submitted", "filename", filename, "job_id", result.JobID)
	return result, nil
}

func jobID(job printJobResponse) string {
	if job.Data != nil {
		if id := stringifyID(job.Data.ID); id != "" {
			return id
		}
	}
	return stringifyID(job.ID)
}

func stringifyID(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%v", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
