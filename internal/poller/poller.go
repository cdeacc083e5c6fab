// Package poller drives the intake cycle: fetch queued work items,
// order them by priority, and feed them to the dispatcher one at a time.
package poller

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/superchase/centcom/internal/logging"
	"github.com/superchase/centcom/pkg/models"
)

// ItemSource provides pending work items from the backing store.
type ItemSource interface {
	// ListQueued returns all queued items ordered ascending by
	// creation time.
	ListQueued(ctx context.Context) ([]models.WorkItem, error)
}

// Router processes one work item to a terminal state.
type Router interface {
	RouteTask(ctx context.Context, item *models.WorkItem) error
}

// Config holds poller timing settings.
type Config struct {
	// PollInterval is the sleep between poll cycles.
	PollInterval time.Duration
	// ItemDelay is the courtesy delay between items in one batch,
	// keeping the backing store's rate limits happy.
	ItemDelay time.Duration
}

// DefaultConfig returns the standard poller timings.
func DefaultConfig() Config {
	return Config{
		PollInterval: 30 * time.Second,
		ItemDelay:    time.Second,
	}
}

// Snapshot is a point-in-time view of the poller for monitoring.
type Snapshot struct {
	Running      bool          `json:"running"`
	PollInterval time.Duration `json:"poll_interval"`
	Processed    int           `json:"processed"`
}

// Poller is the single active worker against the shared backlog. Items
// are processed strictly sequentially: one item completes its full
// dispatch before the next begins, so there is at most one in-flight
// task per poller instance. Running two pollers against the same store
// is unsupported and may race.
type Poller struct {
	source ItemSource
	router Router
	logger *logging.DebugLogger
	cfg    Config

	mu      sync.Mutex
	running bool
	// history records processed item ids, for observability only.
	history []string
}

// New creates a Poller.
func New(source ItemSource, router Router, logger *logging.DebugLogger, cfg Config) *Poller {
	if logger == nil {
		logger = logging.NopLogger()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultConfig().PollInterval
	}
	if cfg.ItemDelay < 0 {
		cfg.ItemDelay = 0
	}
	return &Poller{
		source: source,
		router: router,
		logger: logger,
		cfg:    cfg,
	}
}

// Start runs the poll loop until Stop is called or ctx is canceled.
// Calling Start while the loop is already running is a no-op.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		p.logger.Log("poller already running, ignoring start")
		return nil
	}
	p.running = true
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.running = false
		p.mu.Unlock()
	}()

	p.logger.Log("poller started (%s interval)", p.cfg.PollInterval)

	for p.isRunning() {
		if err := ctx.Err(); err != nil {
			return err
		}

		items, err := p.source.ListQueued(ctx)
		if err != nil {
			// Fetch failures are non-fatal; try again next cycle.
			p.logger.Log("fetch failed: %v", err)
		} else if len(items) > 0 {
			p.logger.Log("found %d queued items", len(items))
			if err := p.processBatch(ctx, items); err != nil {
				return err
			}
		}

		if err := sleepCtx(ctx, p.cfg.PollInterval); err != nil {
			return err
		}
	}

	p.logger.Log("poller stopped")
	return nil
}

// processBatch routes a fetched batch in priority order. The sort is
// stable so equal priorities keep their creation-time order.
func (p *Poller) processBatch(ctx context.Context, items []models.WorkItem) error {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].EffectivePriority().Rank() < items[j].EffectivePriority().Rank()
	})

	for i := range items {
		// Stop takes effect between items, never mid-item.
		if !p.isRunning() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		item := &items[i]
		p.logger.Log("processing %s (priority: %s)", item.TaskID, item.EffectivePriority())

		// This is the only place an item-level error is fully
		// suppressed; the item's own state already reflects it.
		if err := p.router.RouteTask(ctx, item); err != nil {
			p.logger.Log("item %s abandoned for this cycle: %v", item.ID, err)
		}
		p.recordProcessed(item.ID)

		if err := sleepCtx(ctx, p.cfg.ItemDelay); err != nil {
			return err
		}
	}
	return nil
}

// Stop requests loop shutdown. It takes effect at the next loop
// boundary and never interrupts an in-flight item.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.running = false
}

// Status returns a snapshot of the poller for monitoring.
func (p *Poller) Status() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Snapshot{
		Running:      p.running,
		PollInterval: p.cfg.PollInterval,
		Processed:    len(p.history),
	}
}

func (p *Poller) isRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *Poller) recordProcessed(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.history = append(p.history, id)
}

// sleepCtx sleeps for d or until ctx is canceled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
