package metrics

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_ObserveStats(t *testing.T) {
	r := NewRecorder()
	r.ObserveStats(Sample{
		Validator:   "node",
		Uptime:      90,
		StakeAmount: 1000,
		Commission:  5,
		Rewards:     50,
		APR:         1825,
	})

	assert.Equal(t, 90.0, testutil.ToFloat64(r.uptime.WithLabelValues("node")))
	assert.Equal(t, 1000.0, testutil.ToFloat64(r.stake.WithLabelValues("node")))
	assert.Equal(t, 5.0, testutil.ToFloat64(r.commission.WithLabelValues("node")))
	assert.Equal(t, 50.0, testutil.ToFloat64(r.rewards.WithLabelValues("node")))
	assert.Equal(t, 1825.0, testutil.ToFloat64(r.apr.WithLabelValues("node")))
}

func TestRecorder_Counters(t *testing.T) {
	r := NewRecorder()
	r.IncAlerts("node")
	r.IncAlerts("node")
	r.IncFetchErrors("node")

	assert.Equal(t, 2.0, testutil.ToFloat64(r.alerts.WithLabelValues("node")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.fetchErrors.WithLabelValues("node")))
}

func TestRecorder_Handler(t *testing.T) {
	r := NewRecorder()
	r.ObserveStats(Sample{Validator: "node", Uptime: 99.5})

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	assert.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(body, `validator_dashboard_uptime_percent{validator="node"} 99.5`), body)
}

func TestRecorder_ServeStopsOnCancel(t *testing.T) {
	r := NewRecorder()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- r.Serve(ctx, "127.0.0.1:0")
	}()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("metrics server did not stop")
	}
}
