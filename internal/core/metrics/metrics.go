// Package metrics reports terminal login outcomes to InfluxDB. Nothing is
// reported unless metrics.influx_url is set.
package metrics

import (
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/sirupsen/logrus"

	"github.com/dcrodman/termcred/internal/core"
)

const measurement = "terminalLogin"

// Recorder receives one call per verified (or rejected) login.
type Recorder interface {
	RecordLogin(terminalID, outcome string, at time.Time)
	// Close flushes anything still buffered.
	Close()
}

// Discard is a Recorder that drops everything.
var Discard Recorder = discard{}

type discard struct{}

func (discard) RecordLogin(string, string, time.Time) {}
func (discard) Close()                                {}

type influxRecorder struct {
	client   influxdb2.Client
	writeAPI api.WriteAPI
}

// New returns the Recorder described by cfg.
func New(cfg *core.Config, log logrus.FieldLogger) Recorder {
	if cfg.Metrics.InfluxURL == "" {
		return Discard
	}

	opts := influxdb2.DefaultOptions().SetBatchSize(cfg.Metrics.BatchSize)
	client := influxdb2.NewClientWithOptions(cfg.Metrics.InfluxURL, cfg.Metrics.InfluxToken, opts)
	writeAPI := client.WriteAPI(cfg.Metrics.Org, cfg.Metrics.Bucket)

	errorsCh := writeAPI.Errors()
	go func() {
		for err := range errorsCh {
			log.Warnf("influx write error: %v", err)
		}
	}()
	log.Infof("reporting login metrics to %s", cfg.Metrics.InfluxURL)

	return &influxRecorder{client: client, writeAPI: writeAPI}
}

func (r *influxRecorder) RecordLogin(terminalID, outcome string, at time.Time) {
	r.writeAPI.WritePoint(newLoginPoint(terminalID, outcome, at))
}

func (r *influxRecorder) Close() {
	r.writeAPI.Flush()
	r.client.Close()
}

func newLoginPoint(terminalID, outcome string, at time.Time) *write.Point {
	tags := map[string]string{
		"terminal": terminalID,
		"outcome":  outcome,
	}
	fields := map[string]interface{}{
		"count": 1,
	}
	return influxdb2.NewPoint(measurement, tags, fields, at)
}
