package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"auth-gateway/internal/config"
)

// ErrUpstreamAuth marks any failure talking to the provider: the code
// exchange, a missing access token, or the identity fetch. The login flow
// aborts on it and the user must restart.
var ErrUpstreamAuth = errors.New("upstream auth failed")

// Identity is the normalized result of a provider login.
type Identity struct {
	Provider string
	ID       string
}

// Client talks to one external OAuth provider. It performs exactly two
// outbound calls per login (token exchange, userinfo fetch), with no
// retries and no caching of provider tokens.
type Client struct {
	cfg        config.ProviderConfig
	oauth      *oauth2.Config
	httpClient *http.Client
}

func New(cfg config.ProviderConfig) (*Client, error) {
	if cfg.Name == "" || cfg.AuthURL == "" || cfg.TokenURL == "" || cfg.UserinfoURL == "" {
		return nil, fmt.Errorf("provider %q: config missing required endpoints", cfg.Name)
	}
	if cfg.ClientID == "" || cfg.RedirectURL == "" {
		return nil, fmt.Errorf("provider %q: config missing client id or redirect url", cfg.Name)
	}

	return &Client{
		cfg: cfg,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// Name returns the provider identifier used by the registry.
func (c *Client) Name() string { return c.cfg.Name }

// UsesState reports whether this provider round-trips an anti-CSRF state
// value through the authorization redirect.
func (c *Client) UsesState() bool { return c.cfg.UsesState }

// AuthCodeURL builds the provider's consent-screen URL. state is included
// only for providers that use it; callers persist it and re-check it on
// callback.
func (c *Client) AuthCodeURL(state string) string {
	if !c.cfg.UsesState {
		state = ""
	}
	return c.oauth.AuthCodeURL(state)
}

// ExchangeCode swaps the authorization code for the provider's access
// token. Single form-encoded POST; any non-2xx or a response without an
// access token is ErrUpstreamAuth.
func (c *Client) ExchangeCode(ctx context.Context, code, state string) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)

	var opts []oauth2.AuthCodeOption
	if c.cfg.UsesState && state != "" {
		opts = append(opts, oauth2.SetAuthURLParam("state", state))
	}

	tok, err := c.oauth.Exchange(ctx, code, opts...)
	if err != nil {
		return "", fmt.Errorf("%w: %s token exchange: %v", ErrUpstreamAuth, c.cfg.Name, err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("%w: %s returned no access token", ErrUpstreamAuth, c.cfg.Name)
	}
	return tok.AccessToken, nil
}

// FetchIdentity calls the provider's userinfo endpoint with bearer auth
// and normalizes the provider-specific response shape to an Identity.
func (c *Client) FetchIdentity(ctx context.Context, accessToken string) (*Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.UserinfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s userinfo request: %v", ErrUpstreamAuth, c.cfg.Name, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s userinfo: %v", ErrUpstreamAuth, c.cfg.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s userinfo returned %d", ErrUpstreamAuth, c.cfg.Name, resp.StatusCode)
	}

	id, err := extractID(resp.Body, c.cfg.IdentityPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s userinfo: %v", ErrUpstreamAuth, c.cfg.Name, err)
	}

	return &Identity{Provider: c.cfg.Name, ID: id}, nil
}

// extractID walks path through the decoded userinfo document. Numeric ids
// (kakao) keep their literal form via json.Number.
func extractID(body io.Reader, path []string) (string, error) {
	dec := json.NewDecoder(body)
	dec.UseNumber()

	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return "", fmt.Errorf("decode userinfo: %v", err)
	}

	var cur any = doc
	for _, field := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return "", fmt.Errorf("userinfo missing field %q", field)
		}
		cur, ok = m[field]
		if !ok {
			return "", fmt.Errorf("userinfo missing field %q", field)
		}
	}

	switch v := cur.(type) {
	case string:
		if v == "" {
			return "", errors.New("userinfo id is empty")
		}
		return v, nil
	case json.Number:
		return v.String(), nil
	default:
		return "", fmt.Errorf("userinfo id has unexpected type %T", cur)
	}
}
