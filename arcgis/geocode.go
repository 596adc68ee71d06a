package arcgis

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/kilianp07/telework/core/model"
)

// AddressRecord is one entry of a geocodeAddresses batch.
type AddressRecord struct {
	ObjectID int
	Address  string
	City     string
	Region   string
	Postal   string
}

type recordAttributes struct {
	ObjectID int    `json:"OBJECTID"`
	Address  string `json:"Address"`
	City     string `json:"City"`
	Region   string `json:"Region"`
	Postal   string `json:"Postal"`
}

type addressRecords struct {
	Records []struct {
		Attributes recordAttributes `json:"attributes"`
	} `json:"records"`
}

type geocodeResponse struct {
	Locations []struct {
		Address  string         `json:"address"`
		Location *PointGeometry `json:"location"`
		Score    float64        `json:"score"`
		Attrs    struct {
			ResultID  int     `json:"ResultID"`
			Status    string  `json:"Status"`
			MatchAddr string  `json:"Match_addr"`
			Score     float64 `json:"Score"`
		} `json:"attributes"`
	} `json:"locations"`
}

type geocodeServiceInfo struct {
	SuggestedBatchSize int `json:"SuggestedBatchSize"`
	MaxBatchSize       int `json:"MaxBatchSize"`
}

// SuggestedBatchSize reads the geocoder's suggested batch size. Failures
// are logged and the configured batch size is returned instead.
func (c *Client) SuggestedBatchSize(ctx context.Context) int {
	var info geocodeServiceInfo
	if err := c.call(ctx, http.MethodGet, c.cfg.GeocodeURL, nil, &info); err != nil {
		c.log.Warnf("suggested batch size unavailable, using %d: %v", c.cfg.BatchSize, err)
		return c.cfg.BatchSize
	}
	if info.SuggestedBatchSize <= 0 {
		return c.cfg.BatchSize
	}
	return info.SuggestedBatchSize
}

// GeocodeAddresses geocodes one batch. Each returned location carries the
// object ID of its record. Unmatched records come back with a zero score.
func (c *Client) GeocodeAddresses(ctx context.Context, records []AddressRecord) ([]model.Location, error) {
	if len(records) == 0 {
		return nil, nil
	}
	var payload addressRecords
	payload.Records = make([]struct {
		Attributes recordAttributes `json:"attributes"`
	}, len(records))
	for i, r := range records {
		payload.Records[i].Attributes = recordAttributes(r)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode addresses: %w", err)
	}

	params := url.Values{}
	params.Set("addresses", string(body))
	params.Set("category", c.cfg.Category)
	params.Set("sourceCountry", c.cfg.SourceCountry)
	params.Set("outSR", fmt.Sprint(WGS84))

	var resp geocodeResponse
	if err := c.call(ctx, http.MethodPost, c.cfg.GeocodeURL+"/geocodeAddresses", params, &resp); err != nil {
		return nil, fmt.Errorf("geocode addresses: %w", err)
	}
	if len(resp.Locations) == 0 {
		return nil, ErrNoLocations
	}

	out := make([]model.Location, 0, len(resp.Locations))
	for _, l := range resp.Locations {
		loc := model.Location{
			ObjectID:     l.Attrs.ResultID,
			MatchAddress: l.Attrs.MatchAddr,
			Score:        l.Score,
		}
		if loc.MatchAddress == "" {
			loc.MatchAddress = l.Address
		}
		if loc.Score == 0 {
			loc.Score = l.Attrs.Score
		}
		if l.Location != nil {
			loc.Point = model.Point{X: l.Location.X, Y: l.Location.Y}
		}
		out = append(out, loc)
	}
	c.log.Debugf("geocoded %d records, %d locations returned", len(records), len(out))
	return out, nil
}
