package ghost

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/forumbridge/forumbridge/pkg/observability"
)

// ClientConfig configures a Ghost API client.
type ClientConfig struct {
	// PublicURL is the public Ghost base URL (may include a subdirectory).
	PublicURL string
	// AdminURL is the Admin API base URL; defaults to PublicURL.
	AdminURL string
	// APIKey is a Ghost Admin API key in "id:secret" form. The secret is
	// hex-encoded. Optional; only the by-email lookup needs it.
	APIKey string

	HTTPClient *http.Client
	Logger     *observability.Logger
	Metrics    *observability.Metrics
}

// Client talks to the Ghost public members API and the Admin API.
type Client struct {
	httpClient *http.Client
	publicURL  *url.URL
	adminURL   *url.URL
	keyID      string
	keySecret  []byte
	logger     *observability.Logger
	metrics    *observability.Metrics
}

// NewClient creates a Ghost client from the given configuration.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.PublicURL == "" {
		return nil, errors.New("ghost: public URL is required")
	}

	publicURL, err := url.Parse(cfg.PublicURL)
	if err != nil {
		return nil, fmt.Errorf("ghost: invalid public URL: %w", err)
	}

	adminURL := publicURL
	if cfg.AdminURL != "" {
		adminURL, err = url.Parse(cfg.AdminURL)
		if err != nil {
			return nil, fmt.Errorf("ghost: invalid admin URL: %w", err)
		}
	}

	c := &Client{
		httpClient: cfg.HTTPClient,
		publicURL:  publicURL,
		adminURL:   adminURL,
		logger:     cfg.Logger,
		metrics:    cfg.Metrics,
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if c.logger == nil {
		c.logger = observability.NewLogger(observability.InfoLevel, nil)
	}

	if cfg.APIKey != "" {
		id, secret, ok := strings.Cut(cfg.APIKey, ":")
		if !ok || id == "" || secret == "" {
			return nil, errors.New("ghost: admin API key must be in id:secret form")
		}
		c.keySecret, err = hex.DecodeString(secret)
		if err != nil {
			return nil, fmt.Errorf("ghost: admin API key secret is not hex: %w", err)
		}
		c.keyID = id
	}

	return c, nil
}

// ResolvePublic resolves an API path against the public base URL, preserving
// a subdirectory install prefix.
func (c *Client) ResolvePublic(p string) string {
	return resolve(c.publicURL, p)
}

// ResolveAdmin resolves an API path against the Admin API base URL.
func (c *Client) ResolveAdmin(p string) string {
	return resolve(c.adminURL, p)
}

// PortalAccountURL is the Ghost portal account page, the default target for
// visitors without a member session.
func (c *Client) PortalAccountURL() string {
	u := *c.publicURL
	u.Fragment = "/portal/account"
	return u.String()
}

func resolve(base *url.URL, p string) string {
	u := *base
	u.Path = path.Join(base.Path, p)
	return u.String()
}

// MemberFromCookie resolves the member behind a Ghost session cookie by
// forwarding it to the member-self endpoint. It returns ErrNotLoggedIn when
// the cookie carries no member session and ErrUpstream for anything other
// than a well-formed 200 response.
func (c *Client) MemberFromCookie(ctx context.Context, cookie string) (*Member, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ResolvePublic("/members/api/member"), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	req.Header.Set("Cookie", cookie)

	resp, err := c.do(req, "member_self")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNoContent:
		return nil, ErrNotLoggedIn
	case http.StatusOK:
		var member Member
		if err := json.NewDecoder(resp.Body).Decode(&member); err != nil {
			return nil, fmt.Errorf("%w: decoding member: %v", ErrUpstream, err)
		}
		return &member, nil
	default:
		return nil, fmt.Errorf("%w: member lookup answered %d", ErrUpstream, resp.StatusCode)
	}
}

// MemberByEmail looks up a member through the Admin API browse endpoint with
// an exact email filter. Zero or multiple matches map to ErrMemberNotFound.
func (c *Client) MemberByEmail(ctx context.Context, email string) (*Member, error) {
	if c.keyID == "" {
		return nil, errors.New("ghost: admin API key not configured")
	}

	endpoint, err := url.Parse(c.ResolveAdmin("/ghost/api/admin/members/"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	q := endpoint.Query()
	q.Set("filter", "email:"+email)
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	token, err := c.adminToken()
	if err != nil {
		return nil, fmt.Errorf("ghost: signing admin token: %w", err)
	}
	req.Header.Set("Authorization", "Ghost "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.do(req, "member_browse")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// fall through to decode
	case http.StatusNotFound:
		return nil, ErrMemberNotFound
	default:
		return nil, fmt.Errorf("%w: member browse answered %d", ErrUpstream, resp.StatusCode)
	}

	var envelope membersEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("%w: decoding members: %v", ErrUpstream, err)
	}
	if len(envelope.Members) != 1 {
		return nil, ErrMemberNotFound
	}
	return &envelope.Members[0], nil
}

// Ping reports whether the public Ghost instance is reachable. Any HTTP
// response counts as reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ResolvePublic("/"), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	resp.Body.Close()
	return nil
}

func (c *Client) do(req *http.Request, endpoint string) (*http.Response, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveGhost(endpoint, 0, time.Since(start))
		c.logger.WithError(err).WithField("endpoint", endpoint).Warn("ghost request failed")
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	c.metrics.ObserveGhost(endpoint, resp.StatusCode, time.Since(start))
	c.logger.WithFields(map[string]interface{}{
		"endpoint": endpoint,
		"status":   resp.StatusCode,
	}).Debug("ghost request")
	return resp, nil
}
