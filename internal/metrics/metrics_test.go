package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentsCollector(t *testing.T) {
	m := NewPayments()
	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(m))

	m.ObservePayment("card", OutcomeSuccess, 0.01)
	m.ObservePayment("card", OutcomeSuccess, 0.02)
	m.ObservePayment("paypal", OutcomeFailed, 0.01)
	m.ObserveRefund(OutcomeSuccess)
	m.ObserveReconcile(2, 3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.mProcessed.WithLabelValues("card", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.mProcessed.WithLabelValues("paypal", OutcomeFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.mRefunds.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.mMismatched))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.mStaleFailed))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNilPaymentsIsNoop(t *testing.T) {
	var m *Payments
	assert.NotPanics(t, func() {
		m.ObservePayment("card", OutcomeSuccess, 0)
		m.ObserveRefund(OutcomeFailed)
		m.ObserveReconcile(0, 0)
	})
}
