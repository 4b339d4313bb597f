package metrics_test

import (
	"testing"

	"citoyens/internal/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	m := metrics.New()
	m.IncrementCitizensCreated()
	m.IncrementCitizensCreated()
	m.IncrementCitizensDeleted()
	m.ObserveRequest("GET", 200)
	m.ObserveRequest("GET", 200)
	m.ObserveRequest("POST", 400)
	m.IncrementAccessLogDrops()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.CitizensCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CitizensDeleted))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Requests.WithLabelValues("GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("POST", "400")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AccessLogDrops))
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.IncrementCitizensCreated()
		m.ObserveRequest("GET", 200)
		m.IncrementAccessLogDrops()
	})
}
