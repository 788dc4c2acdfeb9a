package metrics

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"

	"github.com/dcrodman/termcred/internal/core"
)

func TestNew_Disabled(t *testing.T) {
	logger, _ := test.NewNullLogger()
	r := New(core.DefaultConfig(), logger)
	assert.Equal(t, Discard, r)

	// Neither call should panic.
	r.RecordLogin("T-1", "ok", time.Now())
	r.Close()
}

func TestNew_Influx(t *testing.T) {
	cfg := core.DefaultConfig()
	cfg.Metrics.InfluxURL = "http://127.0.0.1:1"
	cfg.Metrics.Org, cfg.Metrics.Bucket = "org", "bucket"

	logger, hook := test.NewNullLogger()
	r := New(cfg, logger)
	_, ok := r.(*influxRecorder)
	assert.True(t, ok, "expected an influx recorder when influx_url is set")
	assert.Equal(t, "reporting login metrics to http://127.0.0.1:1", hook.LastEntry().Message)
	r.(*influxRecorder).client.Close()
}

func Test_newLoginPoint(t *testing.T) {
	at := time.Date(2021, time.January, 28, 11, 53, 17, 0, time.UTC)
	p := newLoginPoint("T-1", "invalid_credentials", at)

	assert.Equal(t, "terminalLogin", p.Name())
	assert.Equal(t, at, p.Time())

	tags := map[string]string{}
	for _, tag := range p.TagList() {
		tags[tag.Key] = tag.Value
	}
	assert.Equal(t, map[string]string{"terminal": "T-1", "outcome": "invalid_credentials"}, tags)

	if assert.Len(t, p.FieldList(), 1) {
		assert.Equal(t, "count", p.FieldList()[0].Key)
		assert.EqualValues(t, 1, p.FieldList()[0].Value)
	}
}
