package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveOperation("enter_raffle", "ok", time.Now())
	m.ObserveOperation("enter_raffle", "ok", time.Now())
	m.ObserveOperation("enter_raffle", "RaffleExpired", time.Now())
	m.AddFeesCollected(250)
	m.AddFeesSwept(200)
	m.IncEventPublishFailure()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Operations.WithLabelValues("enter_raffle", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues("enter_raffle", "RaffleExpired")))
	assert.Equal(t, 250.0, testutil.ToFloat64(m.FeesCollected))
	assert.Equal(t, 200.0, testutil.ToFloat64(m.FeesSwept))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventPublishFailure))
}
