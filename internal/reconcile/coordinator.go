package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	stdsync "sync"
	"time"
)

// State identifies where the coordinator is within a reconciliation cycle.
// Exposed for logging and the status command; the cycle itself is driven
// entirely by RunOnce.
type State string

// Coordinator states. Failed is terminal for one cycle: the next trigger
// starts fresh from Fetching.
const (
	StateIdle        State = "idle"
	StateFetching    State = "fetching"
	StateDiffing     State = "diffing"
	StateDispatching State = "dispatching"
	StateCommitting  State = "committing"
	StateFailed      State = "failed"
)

// CycleReport summarizes one reconciliation cycle.
type CycleReport struct {
	Duration time.Duration

	Added     int
	Removed   int
	Checked   int
	Unchecked int
	Modified  int

	Delivered        int
	DeliveryFailures int
}

// Events returns the total number of change events the cycle produced.
func (r *CycleReport) Events() int {
	return r.Added + r.Removed + r.Checked + r.Unchecked + r.Modified
}

// Coordinator drives reconciliation cycles: fetch the current remote
// snapshot, diff it against the cached one, deliver each change event, and
// commit the new snapshot. Exactly one cycle runs at a time; triggers
// arriving mid-cycle coalesce into a single follow-up cycle.
//
// Delivery is best-effort, at-most-once: a failed delivery is logged and
// the cycle still commits, so the corresponding change will not reappear in
// a future diff. The inverse tradeoff — commit failure after dispatch —
// can re-emit the same events next cycle as visible duplicates.
type Coordinator struct {
	source SnapshotSource
	store  Store
	sink   EventSink
	logger *slog.Logger

	// trigger has capacity 1: a send while a cycle is in flight parks one
	// follow-up run, and further sends are dropped by Trigger.
	trigger chan struct{}

	mu    stdsync.Mutex
	state State
}

// NewCoordinator wires a coordinator to its three collaborators.
func NewCoordinator(source SnapshotSource, store Store, sink EventSink, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}

	return &Coordinator{
		source:  source,
		store:   store,
		sink:    sink,
		logger:  logger,
		trigger: make(chan struct{}, 1),
		state:   StateIdle,
	}
}

// State returns the coordinator's current cycle state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

func (c *Coordinator) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// Trigger signals that remote state may have changed. Non-blocking: if a
// follow-up cycle is already pending the signal is dropped, since the
// pending cycle will observe the latest remote state once it fetches.
func (c *Coordinator) Trigger() {
	select {
	case c.trigger <- struct{}{}:
	default:
	}
}

// Run consumes triggers until ctx is canceled, executing one reconciliation
// cycle per trigger. Cycle failures are logged and do not stop the loop —
// the cache is untouched on failure, so the next successful cycle
// recomputes the missed changes. Always returns nil on cancellation.
func (c *Coordinator) Run(ctx context.Context) error {
	c.logger.Info("reconciliation loop started")

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("reconciliation loop stopped")
			return nil
		case <-c.trigger:
		}

		report, err := c.RunOnce(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("reconciliation loop stopped")
				return nil
			}

			c.logger.Error("reconciliation cycle failed", "error", err)

			continue
		}

		if report.Events() > 0 {
			c.logger.Info("reconciliation cycle complete",
				slog.Int("events", report.Events()),
				slog.Int("delivery_failures", report.DeliveryFailures),
				slog.Duration("duration", report.Duration),
			)
		}
	}
}

// RunOnce executes a single reconciliation cycle:
//
//  1. Fetch the current snapshot from the source.
//  2. Validate it and load the cached snapshot.
//  3. Diff cached against current.
//  4. Deliver each event in diff order, sequentially; delivery errors are
//     logged and never abort the cycle.
//  5. Commit the new snapshot regardless of delivery failures.
//
// Fetch, validation, and cache errors are fatal to the cycle and leave the
// cache untouched. Cancellation is checked between stages; a cycle
// interrupted before commit also leaves the cache at its prior value.
func (c *Coordinator) RunOnce(ctx context.Context) (*CycleReport, error) {
	start := time.Now()
	report := &CycleReport{}

	c.setState(StateFetching)

	current, err := c.source.FetchSnapshot(ctx)
	if err != nil {
		c.setState(StateFailed)
		return nil, fmt.Errorf("reconcile: fetching snapshot: %w", err)
	}

	if err := ctx.Err(); err != nil {
		c.setState(StateFailed)
		return nil, fmt.Errorf("reconcile: cycle canceled: %w", err)
	}

	c.setState(StateDiffing)

	if err := current.Validate(); err != nil {
		c.setState(StateFailed)
		return nil, err
	}

	cached, err := c.store.Load(ctx)
	if err != nil {
		// Must not diff against unknown state.
		c.setState(StateFailed)
		return nil, fmt.Errorf("reconcile: loading cached snapshot: %w", err)
	}

	events := Diff(cached, current)
	countEvents(report, events)

	if err := ctx.Err(); err != nil {
		c.setState(StateFailed)
		return nil, fmt.Errorf("reconcile: cycle canceled: %w", err)
	}

	c.setState(StateDispatching)

	for _, ev := range events {
		if err := ctx.Err(); err != nil {
			c.setState(StateFailed)
			return nil, fmt.Errorf("reconcile: cycle canceled: %w", err)
		}

		if err := c.sink.Deliver(ctx, ev); err != nil {
			report.DeliveryFailures++
			c.logger.Error("event delivery failed",
				slog.String("kind", string(ev.Kind)),
				slog.String("item_id", ev.Item.ID),
				slog.String("error", err.Error()),
			)

			continue
		}

		report.Delivered++
	}

	c.setState(StateCommitting)

	if err := c.store.Commit(ctx, current); err != nil {
		// Already-dispatched notifications are not undone; the next cycle
		// diffs against the old cache and may re-emit them.
		c.setState(StateFailed)
		return nil, fmt.Errorf("reconcile: committing snapshot: %w", err)
	}

	c.setState(StateIdle)

	report.Duration = time.Since(start)

	return report, nil
}

// Seed fetches and commits the current snapshot without diffing or
// dispatching. Used on the very first run so a fresh install does not emit
// one notification per pre-existing item.
func (c *Coordinator) Seed(ctx context.Context) error {
	c.setState(StateFetching)

	current, err := c.source.FetchSnapshot(ctx)
	if err != nil {
		c.setState(StateFailed)
		return fmt.Errorf("reconcile: fetching seed snapshot: %w", err)
	}

	if err := current.Validate(); err != nil {
		c.setState(StateFailed)
		return err
	}

	c.setState(StateCommitting)

	if err := c.store.Commit(ctx, current); err != nil {
		c.setState(StateFailed)
		return fmt.Errorf("reconcile: committing seed snapshot: %w", err)
	}

	c.setState(StateIdle)

	c.logger.Info("cache seeded",
		slog.Int("lists", len(current.Lists)),
		slog.Int("items", len(current.Items)),
	)

	return nil
}

func countEvents(report *CycleReport, events []ChangeEvent) {
	for _, ev := range events {
		switch ev.Kind {
		case ChangeItemAdded:
			report.Added++
		case ChangeItemRemoved:
			report.Removed++
		case ChangeItemChecked:
			report.Checked++
		case ChangeItemUnchecked:
			report.Unchecked++
		case ChangeItemModified:
			report.Modified++
		}
	}
}
