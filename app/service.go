package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/kilianp07/telework/arcgis"
	"github.com/kilianp07/telework/auth"
	"github.com/kilianp07/telework/commute"
	"github.com/kilianp07/telework/config"
	coremetrics "github.com/kilianp07/telework/core/metrics"
	"github.com/kilianp07/telework/core/model"
	coremqtt "github.com/kilianp07/telework/core/mqtt"
	corestore "github.com/kilianp07/telework/core/store"
	"github.com/kilianp07/telework/infra/logger"
	"github.com/kilianp07/telework/infra/metrics"
	"github.com/kilianp07/telework/infra/mqtt"
	"github.com/kilianp07/telework/infra/store"
	"github.com/kilianp07/telework/pkg/export"
	"github.com/kilianp07/telework/telework"
)

// Service wires the configured sinks, store and publisher into the commute
// and report pipelines.
type Service struct {
	cfg       *config.Config
	Sink      coremetrics.MetricsSink
	Store     corestore.Store
	Publisher coremqtt.Publisher
	log       logger.Logger

	// newTokens builds the ArcGIS token source; replaced in tests.
	newTokens func(config.ArcGISConfig, *http.Client) (arcgis.TokenSource, error)
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	st, err := store.Open(cfg.Store)
	if err != nil {
		closeSink(sink)
		return nil, fmt.Errorf("store: %w", err)
	}
	pub, err := mqtt.NewPublisher(cfg.MQTT)
	if err != nil {
		_ = st.Close()
		closeSink(sink)
		return nil, fmt.Errorf("mqtt publisher: %w", err)
	}
	return &Service{
		cfg:       cfg,
		Sink:      sink,
		Store:     st,
		Publisher: pub,
		log:       logger.New("service"),
		newTokens: auth.NewTokenSource,
	}, nil
}

// StartMetricsServer exposes Prometheus metrics until ctx is done when an
// address is configured.
func (s *Service) StartMetricsServer(ctx context.Context) {
	addr := s.cfg.Metrics.PrometheusAddr
	if addr == "" {
		return
	}
	go func() {
		if err := metrics.StartPromServer(ctx, addr); err != nil {
			s.log.Errorf("prom server: %v", err)
		}
	}()
}

// Commute runs the commute pipeline.
func (s *Service) Commute(ctx context.Context) (*commute.Summary, error) {
	if err := s.cfg.ValidateCommute(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	httpClient := &http.Client{Timeout: s.cfg.ArcGIS.HTTPTimeout()}
	tokens, err := s.newTokens(s.cfg.ArcGIS, httpClient)
	if err != nil {
		return nil, fmt.Errorf("arcgis credentials: %w", err)
	}
	client := arcgis.NewClient(s.cfg.ArcGIS, tokens, httpClient)
	p := commute.NewPipeline(*s.cfg, client,
		commute.WithStore(s.Store),
		commute.WithMetrics(s.Sink),
		commute.WithPublisher(s.Publisher),
	)
	return p.Run(ctx)
}

// ReportResult is the outcome of the report command.
type ReportResult struct {
	Report  *model.Report
	Outputs []string
}

// Report builds the telework report and writes every configured format.
func (s *Service) Report(_ context.Context) (*ReportResult, error) {
	if err := s.cfg.ValidateReport(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	entries, err := telework.ReadStatus(s.cfg.Report)
	if err != nil {
		return nil, err
	}
	commutes, err := telework.ReadCommutes(s.cfg.Report.CommutePath)
	if err != nil {
		return nil, err
	}
	r, err := telework.BuildReport(entries, commutes, s.cfg.Report)
	if err != nil {
		return nil, err
	}
	outputs, err := export.WriteReport(s.cfg.Report, r)
	if err != nil {
		return nil, err
	}
	s.log.Infof("wrote telework report to %v", outputs)

	if rec, ok := s.Sink.(coremetrics.ReportRecorder); ok {
		ev := coremetrics.ReportEvent{
			WeekStart:      r.Summary.WeekStart,
			Employees:      r.Summary.Employees,
			TeleworkDays:   r.Summary.TeleworkDays,
			MilesAvoided:   r.Summary.MilesAvoided,
			MinutesAvoided: r.Summary.MinutesAvoided,
			Outliers:       r.Summary.Outliers,
			Estimated:      r.Summary.Estimated,
			Time:           time.Now(),
		}
		if err := rec.RecordReport(ev); err != nil {
			s.log.Warnf("record report: %v", err)
		}
	}
	if err := s.Publisher.PublishJSON("report", r.Summary); err != nil {
		s.log.Warnf("publish report summary: %v", err)
	}
	return &ReportResult{Report: r, Outputs: outputs}, nil
}

// History returns the stored commutes of an employee.
func (s *Service) History(ctx context.Context, employee string) ([]corestore.HistoryEntry, error) {
	return s.Store.History(ctx, employee)
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.Publisher.Disconnect()
	closeSink(s.Sink)
	return s.Store.Close()
}

func closeSink(sink coremetrics.MetricsSink) {
	if c, ok := sink.(interface{ Close() }); ok {
		c.Close()
	}
}
