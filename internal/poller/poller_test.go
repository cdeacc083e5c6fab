package poller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/superchase/centcom/internal/logging"
	"github.com/superchase/centcom/pkg/models"
)

func testConfig() Config {
	return Config{PollInterval: time.Millisecond, ItemDelay: 0}
}

// scriptedSource returns one batch per call, then empty batches.
type scriptedSource struct {
	mu      sync.Mutex
	batches [][]models.WorkItem
	errs    []error
	calls   int
	onCall  func(call int)
}

func (s *scriptedSource) ListQueued(ctx context.Context) ([]models.WorkItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	call := s.calls
	s.calls++
	if s.onCall != nil {
		s.onCall(call)
	}
	if call < len(s.errs) && s.errs[call] != nil {
		return nil, s.errs[call]
	}
	if call < len(s.batches) {
		return s.batches[call], nil
	}
	return nil, nil
}

// recordingRouter records the order items arrive in.
type recordingRouter struct {
	mu     sync.Mutex
	ids    []string
	err    error
	onItem func(id string)
}

func (r *recordingRouter) RouteTask(ctx context.Context, item *models.WorkItem) error {
	r.mu.Lock()
	r.ids = append(r.ids, item.ID)
	r.mu.Unlock()
	if r.onItem != nil {
		r.onItem(item.ID)
	}
	return r.err
}

func (r *recordingRouter) routed() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.ids...)
}

func item(id string, priority models.Priority, created time.Time) models.WorkItem {
	return models.WorkItem{ID: id, TaskID: "task_" + id, Priority: priority, Status: models.StatusQueued, CreatedAt: created}
}

func TestPoller_PriorityOrderStable(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	// Fetch order is creation order; the poller must re-sort by
	// priority while preserving creation order within a priority.
	batch := []models.WorkItem{
		item("a", models.PriorityP2, base),
		item("b", models.PriorityP0, base.Add(time.Second)),
		item("c", models.PriorityP2, base.Add(2*time.Second)),
		item("d", models.PriorityP1, base.Add(3*time.Second)),
		item("e", models.PriorityP0, base.Add(4*time.Second)),
	}

	source := &scriptedSource{batches: [][]models.WorkItem{batch}}
	router := &recordingRouter{}
	p := New(source, router, logging.NopLogger(), testConfig())

	source.onCall = func(call int) {
		if call >= 1 {
			p.Stop()
		}
	}

	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start returned %v", err)
	}

	want := []string{"b", "e", "d", "a", "c"}
	got := router.routed()
	if len(got) != len(want) {
		t.Fatalf("routed %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("routed %v, want %v", got, want)
		}
	}
}

func TestPoller_FetchErrorNonFatal(t *testing.T) {
	source := &scriptedSource{
		errs:    []error{errors.New("store unreachable"), nil},
		batches: [][]models.WorkItem{nil, {item("a", models.PriorityP2, time.Now())}},
	}
	router := &recordingRouter{}
	p := New(source, router, logging.NopLogger(), testConfig())

	source.onCall = func(call int) {
		if call >= 2 {
			p.Stop()
		}
	}

	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start returned %v", err)
	}

	if got := router.routed(); len(got) != 1 || got[0] != "a" {
		t.Errorf("routed %v, want [a] after recovering from fetch error", got)
	}
}

func TestPoller_RouterErrorSuppressed(t *testing.T) {
	source := &scriptedSource{batches: [][]models.WorkItem{{
		item("a", models.PriorityP2, time.Now()),
		item("b", models.PriorityP2, time.Now()),
	}}}
	router := &recordingRouter{err: errors.New("schema rejected update")}
	p := New(source, router, logging.NopLogger(), testConfig())

	source.onCall = func(call int) {
		if call >= 1 {
			p.Stop()
		}
	}

	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start returned %v, item errors must not escape the loop", err)
	}
	// The loop advanced past the failing item to the next one.
	if got := router.routed(); len(got) != 2 {
		t.Errorf("routed %v, want both items despite router errors", got)
	}
}

func TestPoller_StopBetweenItems(t *testing.T) {
	source := &scriptedSource{batches: [][]models.WorkItem{{
		item("a", models.PriorityP2, time.Now()),
		item("b", models.PriorityP2, time.Now()),
		item("c", models.PriorityP2, time.Now()),
	}}}
	router := &recordingRouter{}
	p := New(source, router, logging.NopLogger(), testConfig())

	router.onItem = func(id string) {
		if id == "a" {
			p.Stop()
		}
	}

	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start returned %v", err)
	}

	// The in-flight item completes; the rest of the batch does not run.
	if got := router.routed(); len(got) != 1 || got[0] != "a" {
		t.Errorf("routed %v, want exactly [a]", got)
	}
}

func TestPoller_StartIdempotent(t *testing.T) {
	p := New(&scriptedSource{}, &recordingRouter{}, logging.NopLogger(), testConfig())

	// Simulate a loop already running.
	p.mu.Lock()
	p.running = true
	p.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- p.Start(context.Background()) }()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("second Start returned %v, want nil no-op", err)
		}
	case <-time.After(time.Second):
		t.Fatal("second Start did not return immediately")
	}
}

func TestPoller_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	source := &scriptedSource{}
	p := New(source, &recordingRouter{}, logging.NopLogger(), testConfig())

	source.onCall = func(call int) {
		if call >= 1 {
			cancel()
		}
	}

	err := p.Start(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Start returned %v, want context.Canceled", err)
	}
	if p.Status().Running {
		t.Error("poller still reports running after cancel")
	}
}

func TestPoller_Status(t *testing.T) {
	cfg := testConfig()
	source := &scriptedSource{batches: [][]models.WorkItem{{item("a", models.PriorityP2, time.Now())}}}
	router := &recordingRouter{}
	p := New(source, router, logging.NopLogger(), cfg)

	snap := p.Status()
	if snap.Running {
		t.Error("Running = true before Start")
	}

	source.onCall = func(call int) {
		if call >= 1 {
			p.Stop()
		}
	}
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start returned %v", err)
	}

	snap = p.Status()
	if snap.Running {
		t.Error("Running = true after Stop")
	}
	if snap.Processed != 1 {
		t.Errorf("Processed = %d, want 1", snap.Processed)
	}
}
