package arcgis

import "context"

// TokenSource provides the token appended to ArcGIS requests.
type TokenSource interface {
	// Token returns a cached token, fetching one when none is valid.
	Token(ctx context.Context) (string, error)
	// Refresh discards the cached token and fetches a new one.
	Refresh(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource returning a fixed token. It cannot refresh.
type StaticToken string

func (s StaticToken) Token(context.Context) (string, error)   { return string(s), nil }
func (s StaticToken) Refresh(context.Context) (string, error) { return string(s), nil }
