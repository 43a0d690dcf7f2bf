package board

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zoobzio/clockz"

	"dispatchboard/infrastructure/dispatch"
)

// Refresh cadence constants forming the board's external contract.
const (
	noDataRetryInterval = 5 * time.Minute
	fetchPageSize       = 500
	queryWindowPast     = 72 * time.Hour
	queryWindowFuture   = 8 * time.Hour

	// factoryNamePlaceholder shows when the factory lookup fails or no
	// code is configured.
	factoryNamePlaceholder = "—"
)

// DispatchAPI is the slice of the dispatch backend the orchestrator uses.
type DispatchAPI interface {
	FetchDispatchBoard(ctx context.Context, query dispatch.BoardQuery) (dispatch.BoardPage, error)
	GetFactoryInfo(ctx context.Context, factoryCode string) (dispatch.FactoryInfo, error)
}

// SnapshotStore persists one summary point per successful refresh for the
// trend chart. A nil store disables persistence.
type SnapshotStore interface {
	Record(ctx context.Context, factoryCode string, summary Summary, pendingWithReceipt int, capturedAt time.Time) error
}

// RefreshState is the single shared state slice of the board. The
// orchestrator is its only writer.
type RefreshState struct {
	Orders             []Order
	Alerts             []Alert
	Summary            Summary
	PendingWithReceipt int
	LastUpdate         time.Time
	FactoryName        string
	TableKey           uint64
	ChartKey           uint64
}

// Orchestrator owns the fetch/derive/schedule cycle: it polls the dispatch
// backend, derives the view state and paces the scroll-driven refresh.
//
// A LoadData while another is in flight is skipped (single-flight), and
// completions carry a sequence number so a reordered response can never
// overwrite a newer one.
type Orchestrator struct {
	api         DispatchAPI
	store       SnapshotStore
	clock       clockz.Clock
	factoryCode string

	mu         sync.RWMutex
	state      RefreshState
	appliedSeq uint64

	inFlight atomic.Bool
	seq      atomic.Uint64

	pollMu     sync.Mutex
	pollCancel context.CancelFunc

	scroll *ScrollController

	runCtx context.Context
	cancel context.CancelFunc
}

// NewOrchestrator wires the orchestrator and its scroll controller.
// store may be nil.
func NewOrchestrator(api DispatchAPI, store SnapshotStore, factoryCode string, frameInterval time.Duration) *Orchestrator {
	o := &Orchestrator{
		api:         api,
		store:       store,
		clock:       clockz.RealClock,
		factoryCode: factoryCode,
	}
	o.state.FactoryName = factoryNamePlaceholder
	o.scroll = NewScrollController(frameInterval, DefaultViewportRows, o.HandleBottomReached)
	return o
}

// WithClock sets a custom clock for testing. Must be called before Start.
func (o *Orchestrator) WithClock(clock clockz.Clock) *Orchestrator {
	o.clock = clock
	o.scroll.WithClock(clock)
	return o
}

// Scroll exposes the controller for the snapshot endpoint and manual
// offset reports.
func (o *Orchestrator) Scroll() *ScrollController {
	return o.scroll
}

// Start fires the factory lookup and the first data load immediately, then
// runs the scroll loop until Stop.
func (o *Orchestrator) Start(ctx context.Context) {
	o.runCtx, o.cancel = context.WithCancel(ctx)
	go o.LoadFactoryInfo(o.runCtx)
	go func() {
		_ = o.LoadData(o.runCtx)
	}()
	o.scroll.Start(o.runCtx)
}

// Stop disarms every timer and ends the scroll loop. Any in-flight fetch
// observes the cancelled context and its completion is dropped.
func (o *Orchestrator) Stop() {
	o.disarmNoDataPoll()
	if o.cancel != nil {
		o.cancel()
	}
}

// LoadData runs one fetch/derive cycle. On failure the previous state is
// left untouched: stale data on screen beats a blank board.
func (o *Orchestrator) LoadData(ctx context.Context) error {
	if !o.inFlight.CompareAndSwap(false, true) {
		slog.Debug("refresh already in flight; skipping")
		return nil
	}
	defer o.inFlight.Store(false)

	seq := o.seq.Add(1)
	now := o.clock.Now()
	query := dispatch.BoardQuery{
		Page:                    1,
		Size:                    fetchPageSize,
		LastRecRequireTimeStart: now.Add(-queryWindowPast).Format(time.RFC3339),
		LastRecRequireTimeEnd:   now.Add(queryWindowFuture).Format(time.RFC3339),
		FactoryCode:             o.factoryCode,
	}

	page, err := o.api.FetchDispatchBoard(ctx, query)
	if err != nil {
		slog.Error("dispatch board refresh failed", slog.Any("err", err))
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	orders := ToOrders(page.Content)
	alerts := ToAlerts(page.Content)
	summary := ToSummary(page.Content)
	pendingWithReceipt := CountPendingWithReceipt(page.Content)
	completedAt := o.clock.Now()

	o.mu.Lock()
	if seq < o.appliedSeq {
		o.mu.Unlock()
		slog.Warn("discarding stale refresh completion", slog.Uint64("seq", seq))
		return nil
	}
	o.appliedSeq = seq
	o.state.Orders = orders
	o.state.Alerts = alerts
	o.state.Summary = summary
	o.state.PendingWithReceipt = pendingWithReceipt
	o.state.LastUpdate = completedAt
	o.mu.Unlock()

	o.scroll.Reset(len(orders))

	if summary.TotalCount == 0 {
		o.armNoDataPoll(ctx)
	} else {
		o.disarmNoDataPoll()
	}

	if o.store != nil {
		if err := o.store.Record(ctx, o.factoryCode, summary, pendingWithReceipt, completedAt); err != nil {
			slog.Error("persist summary snapshot failed", slog.Any("err", err))
		}
	}

	slog.Info("dispatch board refreshed",
		slog.Int("orders", summary.TotalCount),
		slog.Int("alerts", len(alerts)),
		slog.Int("delayed", summary.DelayedCount))
	return nil
}

// LoadFactoryInfo resolves the configured factory once at startup. Any
// failure leaves the placeholder in place.
func (o *Orchestrator) LoadFactoryInfo(ctx context.Context) {
	if o.factoryCode == "" {
		return
	}
	info, err := o.api.GetFactoryInfo(ctx, o.factoryCode)
	if err != nil {
		slog.Error("factory lookup failed", slog.String("factory_code", o.factoryCode), slog.Any("err", err))
		return
	}
	name := info.FactoryShortName
	if name == "" {
		name = info.FactoryName
	}
	if name == "" {
		name = factoryNamePlaceholder
	}
	o.mu.Lock()
	o.state.FactoryName = name
	o.mu.Unlock()
}

// HandleBottomReached is the sole bridge between scroll completion and data
// refresh: bump the refresh keys so dependent views restart their cycles,
// then reload.
func (o *Orchestrator) HandleBottomReached() {
	o.mu.Lock()
	o.state.TableKey++
	o.state.ChartKey++
	o.mu.Unlock()

	ctx := o.runCtx
	if ctx == nil {
		ctx = context.Background()
	}
	_ = o.LoadData(ctx)
}

// State returns a copy of the current refresh state. Slices are cloned so
// callers can never alias the orchestrator's buffers.
func (o *Orchestrator) State() RefreshState {
	o.mu.RLock()
	defer o.mu.RUnlock()
	s := o.state
	s.Orders = append([]Order(nil), o.state.Orders...)
	s.Alerts = append([]Alert(nil), o.state.Alerts...)
	return s
}

// armNoDataPoll starts the 5-minute re-poll used while the backend returns
// nothing, e.g. off-shift. Arming twice is a no-op.
func (o *Orchestrator) armNoDataPoll(ctx context.Context) {
	o.pollMu.Lock()
	defer o.pollMu.Unlock()
	if o.pollCancel != nil {
		return
	}
	// Outlive the triggering request: the poll is tied to the
	// orchestrator's lifetime, not the caller's.
	if o.runCtx != nil {
		ctx = o.runCtx
	}
	pollCtx, cancel := context.WithCancel(ctx)
	o.pollCancel = cancel
	go func() {
		for {
			select {
			case <-pollCtx.Done():
				return
			case <-o.clock.After(noDataRetryInterval):
				_ = o.LoadData(pollCtx)
			}
		}
	}()
}

// disarmNoDataPoll stops the wall-clock re-poll; from here on refreshes are
// driven exclusively by the scroll cycle.
func (o *Orchestrator) disarmNoDataPoll() {
	o.pollMu.Lock()
	defer o.pollMu.Unlock()
	if o.pollCancel != nil {
		o.pollCancel()
		o.pollCancel = nil
	}
}
