package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/kilianp07/telework/arcgis"
	"github.com/kilianp07/telework/infra/logger"
)

// expiryMargin renews tokens slightly before ArcGIS expires them.
const expiryMargin = time.Minute

// UserToken obtains named-user tokens from the portal's generateToken
// endpoint.
type UserToken struct {
	portalURL  string
	username   string
	password   string
	referer    string
	expiration time.Duration
	client     *http.Client
	log        logger.Logger

	mu      sync.Mutex
	token   string
	expires time.Time
	now     func() time.Time
}

// NewUserToken creates a token source for the given named user.
func NewUserToken(portalURL, username, password, referer string, expiration time.Duration, client *http.Client) *UserToken {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &UserToken{
		portalURL:  strings.TrimSuffix(portalURL, "/"),
		username:   username,
		password:   password,
		referer:    referer,
		expiration: expiration,
		client:     client,
		log:        logger.New("arcgis-auth"),
		now:        time.Now,
	}
}

// Token returns the cached token while it is valid.
func (u *UserToken) Token(ctx context.Context) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.token != "" && u.now().Add(expiryMargin).Before(u.expires) {
		return u.token, nil
	}
	return u.generate(ctx)
}

// Refresh always requests a new token.
func (u *UserToken) Refresh(ctx context.Context) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.generate(ctx)
}

type generateTokenResponse struct {
	Token   string           `json:"token"`
	Expires int64            `json:"expires"`
	Error   *arcgis.APIError `json:"error"`
}

func (u *UserToken) generate(ctx context.Context) (string, error) {
	u.log.Infof("generating token for %s", u.username)
	form := url.Values{
		"f":          {"json"},
		"username":   {u.username},
		"password":   {u.password},
		"referer":    {u.referer},
		"expiration": {strconv.Itoa(int(u.expiration.Minutes()))},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.portalURL+"/sharing/rest/generateToken", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := u.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generate token: unexpected status code %d", resp.StatusCode)
	}
	var out generateTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("generate token: %w", out.Error)
	}
	if out.Token == "" {
		return "", fmt.Errorf("generate token: empty token")
	}
	u.token = out.Token
	if out.Expires > 0 {
		u.expires = time.UnixMilli(out.Expires)
	} else {
		u.expires = u.now().Add(u.expiration)
	}
	return u.token, nil
}
