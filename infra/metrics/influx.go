package metrics

import (
	"context"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/evpark/evpark/core/metrics"
	"github.com/evpark/evpark/infra/logger"
)

// InfluxSink writes operational events to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and returns
// a NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg coremetrics.Config) coremetrics.Sink {
	sink := NewInfluxSink(cfg.InfluxURL, cfg.InfluxToken, cfg.InfluxOrg, cfg.InfluxBucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordCommand writes one point per executed boundary command.
func (s *InfluxSink) RecordCommand(name string, cmdErr error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	outcome := "ok"
	if cmdErr != nil {
		outcome = "error"
	}
	p := write.NewPointWithMeasurement("command").
		AddTag("command", name).
		AddTag("outcome", outcome).
		AddField("count", 1).
		SetTime(time.Now())
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordSweep writes one point summarizing a sweep pass.
func (s *InfluxSink) RecordSweep(stats coremetrics.SweepStats) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("sweep").
		AddField("attempts", stats.Attempts).
		AddField("duration_ms", stats.Duration.Milliseconds()).
		AddField("grace_notices", stats.GraceNotices).
		AddField("overdue_notices", stats.OverdueNotices).
		AddField("session_reminders", stats.SessionReminders).
		AddField("reservation_reminders", stats.ReservationReminders).
		AddField("no_shows", stats.NoShows).
		AddField("strikes", stats.Strikes).
		AddField("suspensions", stats.Suspensions).
		SetTime(stats.At)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordNotification writes one point per delivered notification.
func (s *InfluxSink) RecordNotification(kind string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("notification").
		AddTag("kind", kind).
		AddField("count", 1).
		SetTime(time.Now())
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying client.
func (s *InfluxSink) Close() { s.client.Close() }
