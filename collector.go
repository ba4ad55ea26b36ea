package swcounter

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var _ prometheus.Collector = (*Collector)(nil)

var collectorWindows = []struct {
	label  string
	window time.Duration
}{
	{"1s", time.Second},
	{"1m", time.Minute},
	{"1h", time.Hour},
}

// Collector exports the per-key window counts of a MemoryCounter.
// Every scrape runs count queries, so it purges expired events as well.
type Collector struct {
	counter *MemoryCounter
	desc    *prometheus.Desc
}

// NewCollector creates a new Collector
func NewCollector(namespace string, counter *MemoryCounter) *Collector {
	return &Collector{
		counter: counter,
		desc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "events_window"),
			"Number of events registered within the trailing window",
			[]string{"key", "window"},
			nil,
		),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for key, sw := range c.counter.counters() {
		for _, w := range collectorWindows {
			ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(sw.CountLast(w.window)), key, w.label)
		}
	}
}
