package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	m := New()
	m.Login("web", true)
	m.Login("web", false)
	m.Login("web", false)
	m.PhotoBatch("task", true)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Logins.WithLabelValues("web", "success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Logins.WithLabelValues("web", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PhotoUploads.WithLabelValues("task", "success")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Login("mobile", true)
		m.PhotoBatch("assignment", false)
		m.Notification("task_assigned")
	})
}
