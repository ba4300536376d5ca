package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersRegisterAndIncrement(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.IncrementListingsCreated()
	m.AddListingsSwept(3)
	m.IncrementContactsProposed()
	m.IncrementContactsApproved()
	m.IncrementVisitsRecorded()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ListingsCreated))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ListingsSwept))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 5)
}
