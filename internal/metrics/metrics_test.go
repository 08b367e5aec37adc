package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()

	m.Validation("active")
	m.Validation("active")
	m.Validation("revoked")
	m.Transition(OpRevoke, ResultOK)
	m.Expired(3)
	m.Expired(0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.validations.WithLabelValues("active")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.validations.WithLabelValues("revoked")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitions.WithLabelValues(OpRevoke, ResultOK)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.expired))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.Validation("active")
		m.Transition(OpCreate, ResultOK)
		m.Expired(1)
	})
}

func TestHandler(t *testing.T) {
	m := New()
	m.Transition(OpActivate, ResultRejected)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `keybox_transitions_total{op="activate",result="rejected"} 1`)
}
