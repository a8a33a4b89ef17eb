package analysis

import (
	"context"
	"sync"
	"time"
)

// DefaultTimeout bounds a single analysis job.
const DefaultTimeout = 15 * time.Second

// EventKind distinguishes controller events.
type EventKind int

const (
	// EventStarted fires when a new job begins; any previous table should be
	// dropped and the loading state shown.
	EventStarted EventKind = iota
	// EventDone fires when the current job finishes. Table is nil when the
	// job failed or timed out.
	EventDone
)

// Event is one observable state change of the analysis controller.
type Event struct {
	Kind  EventKind
	Seq   uint64
	Table *Table
}

// Controller runs at most one live analysis job at a time. Starting a new
// job cancels the previous one; a superseded job's result is discarded by
// sequence comparison, never by arrival order, so a slow old job racing a
// fast new one can never win.
type Controller struct {
	analyzer *Analyzer
	timeout  time.Duration
	cache    *Cache
	events   chan Event

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

// NewController creates a Controller around analyzer. A non-positive timeout
// falls back to DefaultTimeout.
func NewController(analyzer *Analyzer, timeout time.Duration) *Controller {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Controller{
		analyzer: analyzer,
		timeout:  timeout,
		events:   make(chan Event, 8),
	}
}

// SetCache attaches an optional result cache. Must be called before the
// first Start.
func (c *Controller) SetCache(cache *Cache) {
	c.cache = cache
}

// Events returns the channel carrying started/done events. Each
// non-superseded job produces exactly one EventDone.
func (c *Controller) Events() <-chan Event {
	return c.events
}

// Start launches analysis of path, cancelling any in-flight job first.
// Safe to call repeatedly; only the latest call's result is ever delivered.
func (c *Controller) Start(path string) {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.seq++
	seq := c.seq
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	c.cancel = cancel
	c.mu.Unlock()

	c.events <- Event{Kind: EventStarted, Seq: seq}
	go c.run(ctx, cancel, seq, path)
}

// Stop cancels the current job, if any. The cancelled job emits nothing.
func (c *Controller) Stop() {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.seq++
	c.mu.Unlock()
}

func (c *Controller) run(ctx context.Context, cancel context.CancelFunc, seq uint64, path string) {
	defer cancel()

	if c.cache != nil {
		if table, ok := c.cache.Load(path); ok {
			c.deliver(seq, table)
			return
		}
	}

	table, err := c.analyzer.Analyze(ctx, path)
	if err != nil {
		// Timeout and analysis failure look identical to the consumer.
		// A superseded job is simply not current anymore and stays silent.
		c.deliver(seq, nil)
		return
	}

	if c.cache != nil {
		c.cache.Store(path, table) // best effort
	}
	c.deliver(seq, table)
}

// deliver emits the terminal event for job seq unless a newer job has been
// started since.
func (c *Controller) deliver(seq uint64, table *Table) {
	c.mu.Lock()
	current := seq == c.seq
	c.mu.Unlock()
	if !current {
		return
	}
	c.events <- Event{Kind: EventDone, Seq: seq, Table: table}
}
