package arcgis

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Job statuses reported by geoprocessing services.
const (
	JobSubmitted = "esriJobSubmitted"
	JobWaiting   = "esriJobWaiting"
	JobExecuting = "esriJobExecuting"
	JobSucceeded = "esriJobSucceeded"
	JobFailed    = "esriJobFailed"
	JobCancelled = "esriJobCancelled"
	JobTimedOut  = "esriJobTimedOut"
)

// RouteIDField links origins to destinations in the analysis request.
const RouteIDField = "employee_number"

type jobResponse struct {
	JobID     string `json:"jobId"`
	JobStatus string `json:"jobStatus"`
	Results   map[string]struct {
		ParamURL string `json:"paramUrl"`
	} `json:"results"`
	Messages []struct {
		Type        string `json:"type"`
		Description string `json:"description"`
	} `json:"messages"`
}

type routesResponse struct {
	Value struct {
		FeatureSet FeatureSet `json:"featureSet"`
	} `json:"value"`
}

// JobResult describes a finished routing job.
type JobResult struct {
	JobID    string
	Status   string
	Polls    int
	Duration time.Duration
	Routes   []Feature
}

// ConnectOriginsToDestinations submits the analysis job linking each
// origin to the destination sharing its route ID, waits for it and returns
// the route features. The returned result is populated even on failure.
func (c *Client) ConnectOriginsToDestinations(ctx context.Context, analysisURL string, origins, destinations FeatureCollection, travelMode string) (JobResult, error) {
	start := time.Now()
	res := JobResult{}

	originsJSON, err := json.Marshal(origins)
	if err != nil {
		return res, fmt.Errorf("encode origins: %w", err)
	}
	destinationsJSON, err := json.Marshal(destinations)
	if err != nil {
		return res, fmt.Errorf("encode destinations: %w", err)
	}

	base := analysisURL + "ConnectOriginsToDestinations"
	params := url.Values{}
	params.Set("originsLayer", string(originsJSON))
	params.Set("destinationsLayer", string(destinationsJSON))
	params.Set("measurementType", travelMode)
	params.Set("originsLayerRouteIDField", RouteIDField)
	params.Set("destinationsLayerRouteIDField", RouteIDField)

	var submitted jobResponse
	if err := c.call(ctx, http.MethodPost, base+"/submitJob", params, &submitted); err != nil {
		return res, fmt.Errorf("submit job: %w", err)
	}
	if submitted.JobID == "" {
		return res, fmt.Errorf("submit job: %w: no job id returned", ErrJobFailed)
	}
	res.JobID = submitted.JobID
	res.Status = submitted.JobStatus
	c.log.Infof("routing job %s submitted", res.JobID)

	ctx, cancel := context.WithTimeout(ctx, c.jobTimeout)
	defer cancel()

	jobURL := base + "/jobs/" + res.JobID
	var job jobResponse
poll:
	for {
		if err := sleep(ctx, c.pollInterval); err != nil {
			res.Duration = time.Since(start)
			return res, fmt.Errorf("routing job %s: %w", res.JobID, err)
		}
		res.Polls++
		job = jobResponse{}
		if err := c.call(ctx, http.MethodGet, jobURL, nil, &job); err != nil {
			res.Duration = time.Since(start)
			return res, fmt.Errorf("poll job %s: %w", res.JobID, err)
		}
		res.Status = job.JobStatus
		c.log.Debugf("routing job %s status %s", res.JobID, job.JobStatus)
		switch job.JobStatus {
		case JobSubmitted, JobWaiting, JobExecuting:
		default:
			break poll
		}
	}

	if job.JobStatus != JobSucceeded {
		res.Duration = time.Since(start)
		msg := ""
		if n := len(job.Messages); n > 0 {
			msg = ": " + job.Messages[n-1].Description
		}
		return res, fmt.Errorf("routing job %s %s: %w%s", res.JobID, job.JobStatus, ErrJobFailed, msg)
	}

	param, ok := job.Results["routesLayer"]
	if !ok || param.ParamURL == "" {
		res.Duration = time.Since(start)
		return res, fmt.Errorf("routing job %s: %w: no routesLayer result", res.JobID, ErrJobFailed)
	}
	var routes routesResponse
	if err := c.call(ctx, http.MethodGet, jobURL+"/"+param.ParamURL, nil, &routes); err != nil {
		res.Duration = time.Since(start)
		return res, fmt.Errorf("fetch routes: %w", err)
	}
	res.Routes = routes.Value.FeatureSet.Features
	res.Duration = time.Since(start)
	c.log.Infof("routing job %s succeeded with %d routes after %d polls", res.JobID, len(res.Routes), res.Polls)
	return res, nil
}
