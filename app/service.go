// Package app wires the store, engines, notifiers and metrics sinks into one
// runnable service according to the loaded configuration.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/evpark/evpark/config"
	"github.com/evpark/evpark/core/engine"
	"github.com/evpark/evpark/core/notify"
	"github.com/evpark/evpark/core/sweep"
	"github.com/evpark/evpark/infra/logger"
	inframetrics "github.com/evpark/evpark/infra/metrics"
	infranotify "github.com/evpark/evpark/infra/notify"
	infrastore "github.com/evpark/evpark/infra/store"
)

// Service bundles the engine and the sweeper over one shared store and lock.
type Service struct {
	Store   *infrastore.FileStore
	Engine  *engine.Engine
	Sweeper *sweep.Sweeper

	cfg  *config.Config
	bus  *notify.BusNotifier
	mqtt *infranotify.MQTTNotifier
	log  logger.Logger
	wg   sync.WaitGroup
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	st, err := infrastore.Load(cfg.Store.Path)
	if err != nil {
		return nil, err
	}

	sink, err := inframetrics.NewSink(cfg.Metrics, logg)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	// Notifications fan out through the bus: the log transport always
	// subscribes, the MQTT transport only when configured.
	svc := &Service{
		Store: st,
		cfg:   cfg,
		bus:   notify.NewBusNotifier(),
		log:   logg,
	}
	svc.forward(notify.LogNotifier{Log: logger.New("notify")})
	if cfg.Notifier.Enabled {
		svc.mqtt, err = infranotify.NewMQTTNotifier(cfg.Notifier)
		if err != nil {
			return nil, fmt.Errorf("mqtt notifier: %w", err)
		}
		svc.forward(svc.mqtt)
	}

	mu := &sync.Mutex{}
	svc.Engine = engine.New(st,
		engine.WithLocker(mu),
		engine.WithNotifier(svc.bus),
		engine.WithMetrics(sink),
		engine.WithLogger(logger.New("engine")),
	)
	svc.Sweeper = sweep.New(st,
		sweep.WithLocker(mu),
		sweep.WithNotifier(svc.bus),
		sweep.WithMetrics(sink),
		sweep.WithLogger(logger.New("sweep")),
		sweep.WithRetry(cfg.Sweep.Attempts, time.Duration(cfg.Sweep.BackoffMS)*time.Millisecond),
		sweep.WithRetryablePatterns(cfg.Sweep.RetryablePatterns),
	)
	return svc, nil
}

// forward runs a notification transport until the bus closes. The goroutine
// is tracked so Close can join it before the process exits.
func (s *Service) forward(dst notify.Notifier) {
	sub := s.bus.Bus.Subscribe()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		notify.Forward(sub, dst, s.log)
	}()
}

// Save flushes the store to disk.
func (s *Service) Save() error { return s.Store.Save() }

// SweepInterval is the cadence for the sweep loop mode.
func (s *Service) SweepInterval() time.Duration {
	return time.Duration(s.cfg.Sweep.IntervalMinutes) * time.Minute
}

// StartMetrics exposes the Prometheus endpoint when enabled. It returns
// immediately; the server runs until ctx is canceled.
func (s *Service) StartMetrics(ctx context.Context) {
	if !s.cfg.Metrics.PrometheusEnabled {
		return
	}
	addr := fmt.Sprintf(":%d", s.cfg.Metrics.PrometheusPort)
	go func() {
		if err := inframetrics.StartPromServer(ctx, addr, s.log); err != nil {
			s.log.Errorf("prom server: %v", err)
		}
	}()
}

// Close shuts the notification bus and waits for every transport to finish
// draining before releasing it, so a one-shot command cannot exit with
// notifications still in flight.
func (s *Service) Close() {
	s.bus.Bus.Close()
	s.wg.Wait()
	if s.mqtt != nil {
		s.mqtt.Close()
	}
}
