package metrics

import (
	"sync"
	"time"

	"video-library/internal/logging"
)

// StatsProvider reports the library counts exported as gauges.
type StatsProvider interface {
	Stats() Stats
}

// Stats is a snapshot of the library and the open viewport sessions.
type Stats struct {
	Readable      int
	Unreadable    int
	Discarded     int
	PropertyTypes int
	Viewports     int
}

// Collector copies Stats into the library gauges on a fixed interval.
type Collector struct {
	provider StatsProvider
	interval time.Duration

	done     chan struct{}
	stopOnce sync.Once
}

// NewCollector creates a collector polling provider every interval.
func NewCollector(provider StatsProvider, interval time.Duration) *Collector {
	return &Collector{provider: provider, interval: interval, done: make(chan struct{})}
}

// Start collects once and then keeps collecting in the background until
// Stop is called.
func (c *Collector) Start() {
	go func() {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		for {
			c.collect()
			select {
			case <-ticker.C:
			case <-c.done:
				return
			}
		}
	}()
}

// Stop ends the collection loop. It may be called more than once.
func (c *Collector) Stop() {
	c.stopOnce.Do(func() { close(c.done) })
}

func (c *Collector) collect() {
	if c.provider == nil {
		return
	}
	s := c.provider.Stats()

	for state, n := range map[string]int{
		"readable":   s.Readable,
		"unreadable": s.Unreadable,
		"discarded":  s.Discarded,
	} {
		LibraryVideosTotal.WithLabelValues(state).Set(float64(n))
	}
	LibraryPropertyTypes.Set(float64(s.PropertyTypes))
	ViewportsActive.Set(float64(s.Viewports))

	logging.Debug("library stats: %+v", s)
}
