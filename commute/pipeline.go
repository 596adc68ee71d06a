// Package commute computes the one-way driving commute of every employee in
// the roster and writes the commute dataset.
package commute

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/telework/arcgis"
	"github.com/kilianp07/telework/config"
	"github.com/kilianp07/telework/core/metrics"
	"github.com/kilianp07/telework/core/model"
	coremon "github.com/kilianp07/telework/core/monitoring"
	coremqtt "github.com/kilianp07/telework/core/mqtt"
	"github.com/kilianp07/telework/core/store"
	"github.com/kilianp07/telework/infra/logger"
	"github.com/kilianp07/telework/pkg/export"
	"github.com/kilianp07/telework/roster"
)

// ErrEmptyRoster is returned when the roster holds no usable employee.
var ErrEmptyRoster = errors.New("roster has no employees")

// API is the ArcGIS surface used by the pipeline. *arcgis.Client
// implements it.
type API interface {
	SuggestedBatchSize(ctx context.Context) int
	GeocodeAddresses(ctx context.Context, records []arcgis.AddressRecord) ([]model.Location, error)
	AnalysisURL(ctx context.Context) (string, error)
	TravelMode(ctx context.Context, name string) (string, error)
	ConnectOriginsToDestinations(ctx context.Context, analysisURL string, origins, destinations arcgis.FeatureCollection, travelMode string) (arcgis.JobResult, error)
}

// Summary describes a finished run. It is also the MQTT payload.
type Summary struct {
	RunID     string                `json:"run_id"`
	Employees int                   `json:"employees"`
	Routed    int                   `json:"routed"`
	Flagged   int                   `json:"flagged"`
	Cached    int                   `json:"cached"`
	Geocoded  int                   `json:"geocoded"`
	JobID     string                `json:"job_id,omitempty"`
	Outputs   []string              `json:"outputs"`
	Duration  time.Duration         `json:"duration_ns"`
	Reasons   map[string]string     `json:"flag_reasons,omitempty"`
	Results   []model.CommuteResult `json:"-"`
}

// Pipeline runs the commute calculation end to end.
type Pipeline struct {
	cfg   config.Config
	api   API
	store store.Store
	sink  metrics.MetricsSink
	pub   coremqtt.Publisher
	log   logger.Logger
	now   func() time.Time
	newID func() string
}

// Option customises a Pipeline.
type Option func(*Pipeline)

func WithStore(s store.Store) Option {
	return func(p *Pipeline) {
		if s != nil {
			p.store = s
		}
	}
}

func WithMetrics(s metrics.MetricsSink) Option {
	return func(p *Pipeline) {
		if s != nil {
			p.sink = s
		}
	}
}

func WithPublisher(pub coremqtt.Publisher) Option {
	return func(p *Pipeline) {
		if pub != nil {
			p.pub = pub
		}
	}
}

// NewPipeline creates a pipeline using cfg's roster, arcgis and commute
// sections.
func NewPipeline(cfg config.Config, api API, opts ...Option) *Pipeline {
	cfg.ArcGIS.SetDefaults()
	cfg.Roster.SetDefaults()
	cfg.Commute.SetDefaults()
	p := &Pipeline{
		cfg:   cfg,
		api:   api,
		store: store.NopStore{},
		sink:  metrics.NopSink{},
		pub:   coremqtt.NopPublisher{},
		log:   logger.New("commute"),
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run reads the roster, geocodes addresses not found in the cache, routes
// every paired employee and writes the commute dataset.
func (p *Pipeline) Run(ctx context.Context) (sum *Summary, err error) {
	start := p.now()
	sum = &Summary{RunID: p.newID()}
	defer func() {
		sum.Duration = p.now().Sub(start)
		ev := metrics.CommuteRunEvent{
			RunID:     sum.RunID,
			Employees: sum.Employees,
			Routed:    sum.Routed,
			Flagged:   sum.Flagged,
			Cached:    sum.Cached,
			Duration:  sum.Duration,
			Time:      p.now(),
		}
		if err != nil {
			ev.Err = err.Error()
		}
		if merr := p.sink.RecordCommuteRun(ev); merr != nil {
			p.log.Warnf("record commute run: %v", merr)
		}
	}()
	p.log.Infof("commute run %s started", sum.RunID)

	employees, err := roster.Read(p.cfg.Roster)
	if err != nil {
		return sum, err
	}
	if len(employees) == 0 {
		return sum, ErrEmptyRoster
	}
	sum.Employees = len(employees)
	coremon.Breadcrumb("commute", "roster loaded", map[string]any{"run_id": sum.RunID, "employees": sum.Employees})

	records, index := roster.Records(employees, 1)
	locations, failedIDs, err := p.locate(ctx, sum, records)
	if err != nil {
		return sum, err
	}
	coremon.Breadcrumb("commute", "addresses located", map[string]any{
		"records": len(records), "located": len(locations), "cached": sum.Cached,
	})

	pairing := Pair(employees, locations, index)
	pairing.MarkGeocodeFailed(index, failedIDs)
	for _, n := range pairing.Flagged {
		p.log.Warnf("employee %s flagged: %s", n, pairing.Reasons[n])
	}

	var routes []arcgis.Feature
	if len(pairing.Origins) > 0 {
		job, err := p.route(ctx, sum, pairing)
		if err != nil {
			return sum, err
		}
		routes = job.Routes
		coremon.Breadcrumb("commute", "routing job finished", map[string]any{"job_id": job.JobID, "routes": len(routes)})
	} else {
		p.log.Warnf("no employee could be paired, skipping routing")
	}

	flagged := append([]string(nil), pairing.Flagged...)
	routed := make(map[string]bool, len(routes))
	for _, r := range routes {
		routed[r.String("RouteName")] = true
	}
	for _, o := range pairing.Origins {
		if !routed[o.Employee] {
			p.log.Warnf("employee %s flagged: no route returned", o.Employee)
			flagged = append(flagged, o.Employee)
			pairing.Reasons[o.Employee] = "no route returned"
		}
	}

	results := Results(routes, flagged)
	sum.Results = results
	sum.Flagged = len(flagged)
	sum.Routed = len(results) - len(flagged)
	sum.Reasons = pairing.Reasons

	outputs, err := export.WriteCommute(p.cfg.Commute, results)
	sum.Outputs = outputs
	if err != nil {
		return sum, fmt.Errorf("write commute dataset: %w", err)
	}
	p.log.Infof("wrote %d commutes to %v", len(results), outputs)

	if err := p.store.SaveRun(ctx, sum.RunID, start, results); err != nil {
		p.log.Warnf("save commute history: %v", err)
	}
	sum.Duration = p.now().Sub(start)
	if err := p.pub.PublishJSON("commute", sum); err != nil {
		p.log.Warnf("publish commute summary: %v", err)
	}
	p.log.Infof("commute run %s done: %d routed, %d flagged, %d cached addresses",
		sum.RunID, sum.Routed, sum.Flagged, sum.Cached)
	return sum, nil
}

// locate resolves every record, from the cache when possible and from the
// geocoder otherwise. Matched geocoder results are written back to the
// cache.
// locate returns the cached and geocoded locations of records, and the
// object IDs of records whose geocode batch failed.
func (p *Pipeline) locate(ctx context.Context, sum *Summary, records []arcgis.AddressRecord) ([]model.Location, []int, error) {
	keys := make(map[int]string, len(records))
	var (
		locations []model.Location
		pending   []arcgis.AddressRecord
	)
	for _, r := range records {
		key := model.Address{Street: r.Address, City: r.City, Region: r.Region, Postal: r.Postal}.Key()
		keys[r.ObjectID] = key
		loc, ok, err := p.store.LookupLocation(ctx, key)
		if err != nil {
			p.log.Warnf("geocode cache lookup: %v", err)
		}
		if ok && loc.Matched() {
			loc.ObjectID = r.ObjectID
			loc.Cached = true
			locations = append(locations, loc)
			continue
		}
		pending = append(pending, r)
	}
	sum.Cached = len(locations)
	if len(pending) == 0 {
		return locations, nil, nil
	}

	geocoded, failedIDs, err := p.geocode(ctx, sum.RunID, pending)
	if err != nil {
		return nil, nil, err
	}
	sum.Geocoded = len(geocoded)
	for _, loc := range geocoded {
		if !loc.Matched() {
			continue
		}
		key, ok := keys[loc.ObjectID]
		if !ok {
			continue
		}
		if err := p.store.SaveLocation(ctx, key, loc); err != nil {
			p.log.Warnf("geocode cache write: %v", err)
		}
	}
	return append(locations, geocoded...), failedIDs, nil
}

// geocode sends records in batches of the service's suggested size, with
// bounded concurrency. Failed batches are logged and the object IDs they
// held are returned so their employees get flagged. The run fails only when
// every batch fails.
func (p *Pipeline) geocode(ctx context.Context, runID string, records []arcgis.AddressRecord) ([]model.Location, []int, error) {
	size := p.api.SuggestedBatchSize(ctx)
	if size <= 0 {
		size = p.cfg.ArcGIS.BatchSize
	}
	var batches [][]arcgis.AddressRecord
	for i := 0; i < len(records); i += size {
		end := min(i+size, len(records))
		batches = append(batches, records[i:end])
	}
	p.log.Infof("geocoding %d addresses in %d batches of up to %d", len(records), len(batches), size)

	rec, _ := p.sink.(metrics.GeocodeRecorder)
	var (
		mu        sync.Mutex
		out       []model.Location
		failed    []error
		failedIDs []int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.ArcGIS.GeocodeConcurrency)
	for i, batch := range batches {
		g.Go(func() error {
			started := p.now()
			locs, err := p.api.GeocodeAddresses(gctx, batch)
			ev := metrics.GeocodeBatchEvent{
				RunID:    runID,
				Batch:    i,
				Records:  len(batch),
				Duration: p.now().Sub(started),
				Time:     p.now(),
			}
			for _, l := range locs {
				if !l.Matched() {
					ev.Unmatched++
				}
			}
			if err != nil {
				ev.Err = err.Error()
			}
			if rec != nil {
				if merr := rec.RecordGeocodeBatch(ev); merr != nil {
					p.log.Warnf("record geocode batch: %v", merr)
				}
			}
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				p.log.Errorf("geocode batch %d failed: %v", i, err)
				mu.Lock()
				failed = append(failed, fmt.Errorf("batch %d: %w", i, err))
				for _, r := range batch {
					failedIDs = append(failedIDs, r.ObjectID)
				}
				mu.Unlock()
				return nil
			}
			mu.Lock()
			out = append(out, locs...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("geocode: %w", err)
	}
	if len(failed) == len(batches) {
		return nil, nil, fmt.Errorf("geocode: every batch failed: %w", errors.Join(failed...))
	}
	return out, failedIDs, nil
}

// route submits the pairing to the analysis service.
func (p *Pipeline) route(ctx context.Context, sum *Summary, pairing Pairing) (arcgis.JobResult, error) {
	analysisURL, err := p.api.AnalysisURL(ctx)
	if err != nil {
		return arcgis.JobResult{}, err
	}
	mode, err := p.api.TravelMode(ctx, p.cfg.ArcGIS.TravelMode)
	if err != nil {
		return arcgis.JobResult{}, err
	}
	p.log.Infof("routing %d employees with travel mode %q", len(pairing.Origins), p.cfg.ArcGIS.TravelMode)

	job, err := p.api.ConnectOriginsToDestinations(ctx, analysisURL,
		ToFeatureCollection(pairing.Origins), ToFeatureCollection(pairing.Destinations), mode)
	sum.JobID = job.JobID
	if rec, ok := p.sink.(metrics.RoutingJobRecorder); ok {
		ev := metrics.RoutingJobEvent{
			RunID:    sum.RunID,
			JobID:    job.JobID,
			Status:   job.Status,
			Polls:    job.Polls,
			Routes:   len(job.Routes),
			Duration: job.Duration,
			Time:     p.now(),
		}
		if merr := rec.RecordRoutingJob(ev); merr != nil {
			p.log.Warnf("record routing job: %v", merr)
		}
	}
	return job, err
}
