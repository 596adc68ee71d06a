package arcgis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type portalSelf struct {
	HelperServices struct {
		Analysis struct {
			URL string `json:"url"`
		} `json:"analysis"`
	} `json:"helperServices"`
}

// AnalysisURL returns the spatial analysis service URL registered with the
// portal, with a trailing slash.
func (c *Client) AnalysisURL(ctx context.Context) (string, error) {
	var self portalSelf
	if err := c.call(ctx, http.MethodGet, c.cfg.PortalURL+"/sharing/rest/portals/self", nil, &self); err != nil {
		return "", fmt.Errorf("portal self: %w", err)
	}
	u := self.HelperServices.Analysis.URL
	if u == "" {
		return "", errors.New("portal has no analysis helper service")
	}
	if !strings.HasSuffix(u, "/") {
		u += "/"
	}
	return u, nil
}

type travelModesResponse struct {
	Results []struct {
		ParamName string `json:"paramName"`
		Value     struct {
			Features []Feature `json:"features"`
		} `json:"value"`
	} `json:"results"`
}

// TravelMode returns the JSON definition of the named travel mode as
// published by the routing utilities.
func (c *Client) TravelMode(ctx context.Context, name string) (string, error) {
	var resp travelModesResponse
	endpoint := c.cfg.RouteUtilsURL + "/GetTravelModes/execute"
	if err := c.call(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return "", fmt.Errorf("get travel modes: %w", err)
	}
	for _, r := range resp.Results {
		if r.ParamName != "supportedTravelModes" {
			continue
		}
		for _, f := range r.Value.Features {
			if !strings.EqualFold(f.String("Name"), name) {
				continue
			}
			mode := f.String("TravelMode")
			if mode == "" {
				return "", fmt.Errorf("travel mode %q has no definition", name)
			}
			if !json.Valid([]byte(mode)) {
				return "", fmt.Errorf("travel mode %q definition is not valid JSON", name)
			}
			return mode, nil
		}
	}
	return "", fmt.Errorf("travel mode %q not found", name)
}
