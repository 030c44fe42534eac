package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/MrSnakeDoc/storefront/internal/utils"
)

// Scopes requested on every consent: full account management plus deletion.
var Scopes = []string{
	"https://www.googleapis.com/auth/business.manage",
	"https://www.googleapis.com/auth/business.manage.delete",
}

// DefaultDiscoveryURL is probed to decide whether the identity provider is usable.
const DefaultDiscoveryURL = "https://accounts.google.com/.well-known/openid-configuration"

// CallbackPath is where the provider redirects after consent.
const CallbackPath = "/auth/callback"

// Token is the outcome of a successful consent.
type Token struct {
	AccessToken string
	Expiry      time.Time
}

// SDK is the identity provider library as seen by the manager.
type SDK interface {
	// Ready reports whether the provider can be used yet.
	Ready(ctx context.Context) bool
	// NewTokenClient builds a consent-request channel bound to clientID.
	NewTokenClient(clientID string) (TokenClient, error)
}

// TokenClient opens consent attempts and redeems their result.
type TokenClient interface {
	ConsentURL(state, verifier string) string
	Exchange(ctx context.Context, code, verifier string) (Token, error)
}

// GoogleSDK implements SDK with the OAuth 2.0 authorization code flow and PKCE.
type GoogleSDK struct {
	http         *http.Client
	endpoint     oauth2.Endpoint
	discoveryURL string
	redirectURL  string
	clientSecret string
}

// SDKOption customizes a GoogleSDK.
type SDKOption func(*GoogleSDK)

// WithEndpoint overrides the Google authorization and token endpoints.
func WithEndpoint(e oauth2.Endpoint) SDKOption {
	return func(s *GoogleSDK) { s.endpoint = e }
}

// WithDiscoveryURL overrides the readiness probe URL.
func WithDiscoveryURL(u string) SDKOption {
	return func(s *GoogleSDK) { s.discoveryURL = u }
}

// WithClientSecret sets the secret of web application clients.
func WithClientSecret(secret string) SDKOption {
	return func(s *GoogleSDK) { s.clientSecret = secret }
}

// WithSDKHTTPClient replaces the instrumented HTTP client.
func WithSDKHTTPClient(h *http.Client) SDKOption {
	return func(s *GoogleSDK) { s.http = h }
}

// NewGoogleSDK builds the adapter. origin is the public URL of the dashboard
// (ex: "https://dashboard.example.com"); the redirect URL derives from it.
func NewGoogleSDK(origin string, opts ...SDKOption) *GoogleSDK {
	s := &GoogleSDK{
		http: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		endpoint:     endpoints.Google,
		discoveryURL: DefaultDiscoveryURL,
		redirectURL:  strings.TrimRight(origin, "/") + CallbackPath,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ready probes the provider discovery document.
func (s *GoogleSDK) Ready(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.discoveryURL, nil)
	if err != nil {
		return false
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return false
	}
	defer utils.DrainAndClose(resp.Body)
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// NewTokenClient binds an oauth2.Config to clientID.
func (s *GoogleSDK) NewTokenClient(clientID string) (TokenClient, error) {
	if strings.TrimSpace(clientID) == "" {
		return nil, errors.New("client id is empty")
	}
	return &oauthClient{
		http: s.http,
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: s.clientSecret,
			Endpoint:     s.endpoint,
			RedirectURL:  s.redirectURL,
			Scopes:       Scopes,
		},
	}, nil
}

type oauthClient struct {
	http *http.Client
	cfg  *oauth2.Config
}

func (c *oauthClient) ConsentURL(state, verifier string) string {
	return c.cfg.AuthCodeURL(state,
		oauth2.S256ChallengeOption(verifier),
		oauth2.SetAuthURLParam("prompt", "consent"))
}

func (c *oauthClient) Exchange(ctx context.Context, code, verifier string) (Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.http)

	tok, err := c.cfg.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return Token{}, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	return Token{AccessToken: tok.AccessToken, Expiry: tok.Expiry}, nil
}
