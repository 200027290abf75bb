package oauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"

	"fitexport/pkg/logging"
	pkgstrings "fitexport/pkg/strings"
)

// DefaultHTTPTimeout is the default timeout for requests to the token endpoint.
const DefaultHTTPTimeout = 30 * time.Second

// Exchanger turns an authorization code into a token.
type Exchanger interface {
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
}

// ExchangeFunc adapts a function to the Exchanger interface.
type ExchangeFunc func(ctx context.Context, code string) (*oauth2.Token, error)

// Exchange calls f(ctx, code).
func (f ExchangeFunc) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return f(ctx, code)
}

// ClientConfig configures the OAuth client.
type ClientConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	AuthorizeURL string
	TokenURL     string
	Scopes       []string

	// HTTPClient is an optional custom HTTP client for the token endpoint.
	HTTPClient *http.Client
}

// AuthRequest is one authorization attempt: the URL the user opens, the
// anti-forgery state expected back, and the PKCE verifier used at exchange time.
type AuthRequest struct {
	URL   string
	State string
	PKCE  *PKCEChallenge
}

// Client is the OAuth2 client for the Fitbit authorization code flow.
type Client struct {
	config     *oauth2.Config
	httpClient *http.Client
}

// NewClient creates a new OAuth client with the specified configuration.
func NewClient(cfg ClientConfig) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: DefaultHTTPTimeout,
		}
	}

	return &Client{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthorizeURL,
				TokenURL: cfg.TokenURL,
				// Fitbit expects the client credentials as HTTP Basic auth.
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		httpClient: httpClient,
	}
}

// NewAuthRequest generates a fresh state and PKCE challenge and builds the
// authorization URL from them.
func (c *Client) NewAuthRequest() (*AuthRequest, error) {
	state, err := GenerateState()
	if err != nil {
		return nil, err
	}
	pkce := GeneratePKCE()

	authURL := c.config.AuthCodeURL(state,
		oauth2.SetAuthURLParam("code_challenge", pkce.CodeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", pkce.CodeChallengeMethod),
	)

	return &AuthRequest{
		URL:   authURL,
		State: state,
		PKCE:  pkce,
	}, nil
}

// Exchanger returns the code exchanger bound to req's PKCE verifier.
func (c *Client) Exchanger(req *AuthRequest) Exchanger {
	return ExchangeFunc(func(ctx context.Context, code string) (*oauth2.Token, error) {
		return c.Exchange(ctx, req, code)
	})
}

// Exchange exchanges an authorization code for a token.
func (c *Client) Exchange(ctx context.Context, req *AuthRequest, code string) (*oauth2.Token, error) {
	if req == nil || req.PKCE == nil {
		return nil, errors.New("exchange requires the originating auth request")
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	token, err := c.config.Exchange(ctx, code, oauth2.VerifierOption(req.PKCE.CodeVerifier))
	if err != nil {
		err = fmt.Errorf("token exchange failed: %w", err)
		c.auditExchange(classifyExchangeError(err).Kind.String(), pkgstrings.OneLine(err.Error(), pkgstrings.DefaultMaxLen))
		return nil, err
	}

	var details string
	if scope, ok := token.Extra("scope").(string); ok && scope != "" {
		details = "scope=" + scope
	}
	c.auditExchange(OutcomeSuccess.String(), details)
	return token, nil
}

func (c *Client) auditExchange(outcome, details string) {
	logging.Audit(logging.AuditEvent{
		Action:  "token_exchange",
		Outcome: outcome,
		Target:  c.tokenHost(),
		Details: details,
	})
}

// tokenHost is the token endpoint host, used as the audit target.
func (c *Client) tokenHost() string {
	u, err := url.Parse(c.TokenURL())
	if err != nil || u.Host == "" {
		return c.TokenURL()
	}
	return u.Host
}

// HTTPClient returns an HTTP client that authorizes requests with token and
// refreshes it when it expires. The returned client is bound to ctx.
func (c *Client) HTTPClient(ctx context.Context, token *oauth2.Token) *http.Client {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	return c.config.Client(ctx, token)
}

// TokenURL returns the token endpoint.
func (c *Client) TokenURL() string {
	return c.config.Endpoint.TokenURL
}
