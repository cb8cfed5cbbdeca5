package billwerk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	goCache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/finbridge/escalator/internal/config"
	ierr "github.com/finbridge/escalator/internal/errors"
	"github.com/finbridge/escalator/internal/httpclient"
	"github.com/finbridge/escalator/internal/logger"
)

const tokenCacheKey = "billwerk_access_token"

// TokenSource acquires and caches OAuth client-credentials tokens for
// the billing provider. It is safe for concurrent use: a valid cached
// token is returned without a network call, and concurrent cache misses
// collapse into a single token request whose result all callers share.
// A failed fetch propagates to every waiter and leaves nothing cached,
// so the next call retries.
type TokenSource struct {
	clientID     string
	clientSecret string
	tokenURL     string
	httpClient   httpclient.Client
	cache        *goCache.Cache
	group        singleflight.Group
	logger       *logger.Logger
}

// NewTokenSource creates a token source from the Billwerk configuration.
func NewTokenSource(cfg *config.Configuration, client httpclient.Client, log *logger.Logger) *TokenSource {
	return &TokenSource{
		clientID:     cfg.Billwerk.ClientID,
		clientSecret: cfg.Billwerk.ClientSecret,
		tokenURL:     cfg.Billwerk.OAuthTokenURL(),
		httpClient:   client,
		cache:        goCache.New(goCache.NoExpiration, 10*time.Minute),
		logger:       log,
	}
}

// AuthorizationHeader returns "Bearer <token>", or the empty string
// when no client credentials are configured.
func (t *TokenSource) AuthorizationHeader(ctx context.Context) (string, error) {
	if t.clientID == "" || t.clientSecret == "" {
		return "", nil
	}

	if token, ok := t.cache.Get(tokenCacheKey); ok {
		return "Bearer " + token.(string), nil
	}

	value, err, _ := t.group.Do(tokenCacheKey, func() (interface{}, error) {
		// A waiter queued behind a completed fetch sees the cache hit here.
		if token, ok := t.cache.Get(tokenCacheKey); ok {
			return token.(string), nil
		}

		token, ttl, err := t.fetchToken(ctx)
		if err != nil {
			return nil, err
		}

		t.cache.Set(tokenCacheKey, token, ttl)
		return token, nil
	})
	if err != nil {
		return "", err
	}

	return "Bearer " + value.(string), nil
}

// fetchToken issues the client-credentials request and derives the
// cache TTL, always leaving a safety margin before the server expiry.
func (t *TokenSource) fetchToken(ctx context.Context) (string, time.Duration, error) {
	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {t.clientID},
		"client_secret": {t.clientSecret},
	}

	resp, err := t.httpClient.Send(ctx, &httpclient.Request{
		Method: http.MethodPost,
		URL:    t.tokenURL,
		Headers: map[string]string{
			"Content-Type": "application/x-www-form-urlencoded",
		},
		Body: []byte(form.Encode()),
	})
	if err != nil {
		t.logger.Errorw("oauth token request failed", "url", t.tokenURL, "error", err)
		return "", 0, err
	}

	var token tokenResponse
	if err := json.Unmarshal(resp.Body, &token); err != nil {
		return "", 0, ierr.WithError(err).
			WithHint("Invalid token response from billing provider").
			Mark(ierr.ErrHTTPClient)
	}

	if token.AccessToken == "" {
		return "", 0, ierr.NewError("missing access token in token response").
			WithHint("Billing provider returned no access token").
			Mark(ierr.ErrHTTPClient)
	}

	ttl := 300 * time.Second
	if expiresIn := time.Duration(token.ExpiresIn) * time.Second; expiresIn > 120*time.Second {
		ttl = expiresIn - 60*time.Second
	}

	return token.AccessToken, ttl, nil
}
