package middleware

import (
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"

	ierr "github.com/finbridge/escalator/internal/errors"
	"github.com/finbridge/escalator/internal/httpclient"
)

// ErrorHandler maps orchestration failures to HTTP responses. Upstream
// failures keep the remote status code and body; everything else is
// mapped through the error taxonomy.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		if httpErr, ok := httpclient.IsHTTPError(err); ok {
			c.JSON(httpErr.StatusCode, ierr.ErrorResponse{
				Error: upstreamBody(httpErr),
			})
			return
		}

		c.JSON(ierr.HTTPStatusFromErr(err), ierr.ErrorResponse{
			Error:   getDisplayMessage(err),
			Details: getSafeDetails(err),
		})
	}
}

// upstreamBody returns the remote response body, parsed when it is
// JSON, else as a string.
func upstreamBody(httpErr *httpclient.Error) any {
	if len(httpErr.Response) == 0 {
		return "Unknown error"
	}
	var parsed any
	if err := json.Unmarshal(httpErr.Response, &parsed); err == nil {
		return parsed
	}
	return string(httpErr.Response)
}

func getDisplayMessage(err error) string {
	if hints := errors.GetAllHints(err); len(hints) > 0 {
		// Get the first non-empty hint - GetAllHints is post-order traversal
		for _, hint := range hints {
			if hint = strings.TrimSpace(hint); hint != "" {
				return hint
			}
		}
	}

	return "An unexpected error occurred"
}

func getSafeDetails(err error) map[string]any {
	details := make(map[string]any)

	allSafeDetails := errors.GetAllSafeDetails(err)
	for _, sdp := range allSafeDetails {
		for _, payload := range sdp.SafeDetails {
			if len(payload) > 9 && strings.HasPrefix(payload, "__json__:") {
				var jsonDetails map[string]any
				if err := json.Unmarshal([]byte(payload[9:]), &jsonDetails); err == nil {
					for k, v := range jsonDetails {
						details[k] = v
					}
				}
			}
		}
	}

	if len(details) == 0 {
		return nil
	}
	return details
}
