// Package metrics holds the concrete metrics sinks: Prometheus (with an
// exposition server) and InfluxDB, selected by configuration.
package metrics

import (
	coremetrics "github.com/evpark/evpark/core/metrics"
	"github.com/evpark/evpark/infra/logger"
)

// NewSink builds the configured sink set. With nothing enabled a NopSink is
// returned; with several enabled they are combined into a MultiSink.
func NewSink(cfg coremetrics.Config, log logger.Logger) (coremetrics.Sink, error) {
	var sinks []coremetrics.Sink
	if cfg.PrometheusEnabled {
		prom, err := NewPromSink(nil)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, prom)
		log.Infof("prometheus sink enabled")
	}
	if cfg.InfluxEnabled {
		sinks = append(sinks, NewInfluxSinkWithFallback(cfg))
		log.Infof("influx sink enabled")
	}
	switch len(sinks) {
	case 0:
		return coremetrics.NopSink{}, nil
	case 1:
		return sinks[0], nil
	default:
		return coremetrics.NewMultiSink(sinks...), nil
	}
}
