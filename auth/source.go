package auth

import (
	"fmt"
	"net/http"
	"time"

	"github.com/kilianp07/telework/arcgis"
	"github.com/kilianp07/telework/config"
)

// NewTokenSource builds the TokenSource matching cfg.AuthMode.
func NewTokenSource(cfg config.ArcGISConfig, client *http.Client) (arcgis.TokenSource, error) {
	switch cfg.AuthMode {
	case config.AuthApp:
		return NewClientCred(cfg.PortalURL, cfg.ClientID, cfg.ClientSecret, client), nil
	case config.AuthUser, "":
		pw, err := Password(cfg.KeyringService(), cfg.Username)
		if err != nil {
			return nil, err
		}
		exp := time.Duration(cfg.TokenExpirationMinutes) * time.Minute
		return NewUserToken(cfg.PortalURL, cfg.Username, pw, cfg.Referer, exp, client), nil
	default:
		return nil, fmt.Errorf("unknown auth_mode %q", cfg.AuthMode)
	}
}
