package swcounter

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCollector_Empty(t *testing.T) {
	c, _ := newTestMemoryCounter(t)
	require.Equal(t, 0, testutil.CollectAndCount(NewCollector("swcounter", c)))
}

func TestCollector_Collect(t *testing.T) {
	c, clock := newTestMemoryCounter(t)
	require.NoError(t, c.Increment("a"))
	clock.Advance(2 * time.Second)
	require.NoError(t, c.Increment("a"))

	expected := `
# HELP swcounter_events_window Number of events registered within the trailing window
# TYPE swcounter_events_window gauge
swcounter_events_window{key="a",window="1h"} 2
swcounter_events_window{key="a",window="1m"} 2
swcounter_events_window{key="a",window="1s"} 1
`
	require.NoError(t, testutil.CollectAndCompare(NewCollector("swcounter", c), strings.NewReader(expected)))
}

func TestCollector_Register(t *testing.T) {
	c, _ := newTestMemoryCounter(t)
	require.NoError(t, c.Increment("a"))
	require.NoError(t, c.Increment("b"))

	registry := prometheus.NewRegistry()
	require.NoError(t, registry.Register(NewCollector("swcounter", c)))

	families, err := registry.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	require.Len(t, families[0].GetMetric(), 6)
}
