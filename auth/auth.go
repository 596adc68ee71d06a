package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// ClientCred obtains app tokens with the OAuth2 client credentials grant
// against the portal's oauth2/token endpoint.
type ClientCred struct {
	conf   clientcredentials.Config
	client *http.Client

	mu    sync.Mutex
	token *oauth2.Token
}

// NewClientCred creates a token source for ArcGIS app credentials.
func NewClientCred(portalURL, clientID, clientSecret string, client *http.Client) *ClientCred {
	return &ClientCred{
		conf: clientcredentials.Config{
			ClientID:       clientID,
			ClientSecret:   clientSecret,
			TokenURL:       strings.TrimSuffix(portalURL, "/") + "/sharing/rest/oauth2/token",
			AuthStyle:      oauth2.AuthStyleInParams,
			EndpointParams: url.Values{"f": {"json"}},
		},
		client: client,
	}
}

// Token retrieves a valid access token. If the current token is valid, it
// returns the existing token. Otherwise, it requests a new one.
func (c *ClientCred) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != nil && c.token.Valid() {
		return c.token.AccessToken, nil
	}
	return c.fetch(ctx)
}

// Refresh retrieves a new token regardless of the cached one.
func (c *ClientCred) Refresh(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetch(ctx)
}

func (c *ClientCred) fetch(ctx context.Context) (string, error) {
	if c.client != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, c.client)
	}
	tok, err := c.conf.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get token: %w", err)
	}
	c.token = tok
	return tok.AccessToken, nil
}
