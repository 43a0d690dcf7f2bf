package board

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/zoobzio/clockz"

	"dispatchboard/infrastructure/dispatch"
)

type fakeDispatchAPI struct {
	mu        sync.Mutex
	fetches   int
	lastQuery dispatch.BoardQuery

	fetchFn   func(query dispatch.BoardQuery) (dispatch.BoardPage, error)
	factoryFn func(code string) (dispatch.FactoryInfo, error)
}

func (f *fakeDispatchAPI) FetchDispatchBoard(_ context.Context, query dispatch.BoardQuery) (dispatch.BoardPage, error) {
	f.mu.Lock()
	f.fetches++
	f.lastQuery = query
	fn := f.fetchFn
	f.mu.Unlock()
	if fn == nil {
		return dispatch.BoardPage{}, nil
	}
	return fn(query)
}

func (f *fakeDispatchAPI) GetFactoryInfo(_ context.Context, code string) (dispatch.FactoryInfo, error) {
	if f.factoryFn == nil {
		return dispatch.FactoryInfo{}, errors.New("no factory")
	}
	return f.factoryFn(code)
}

func (f *fakeDispatchAPI) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}

type fakeStore struct {
	mu      sync.Mutex
	records int
	last    Summary
}

func (s *fakeStore) Record(_ context.Context, _ string, summary Summary, _ int, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records++
	s.last = summary
	return nil
}

func pageOf(records ...dispatch.Record) dispatch.BoardPage {
	return dispatch.BoardPage{Content: records, TotalElements: int64(len(records))}
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("condition never met: %s", msg)
}

func TestLoadDataReplacesStateAndPersistsSnapshot(t *testing.T) {
	api := &fakeDispatchAPI{
		fetchFn: func(dispatch.BoardQuery) (dispatch.BoardPage, error) {
			return pageOf(
				dispatch.Record{SheetNo: "A", RiskFlag: dispatch.RiskDelayed},
				dispatch.Record{SheetNo: "B", IsDelivered: true},
				dispatch.Record{SheetNo: "C", HasReceipt: true, IsDelivered: false},
			), nil
		},
	}
	store := &fakeStore{}
	o := NewOrchestrator(api, store, "F1", time.Hour)

	if err := o.LoadData(context.Background()); err != nil {
		t.Fatalf("load data: %v", err)
	}

	state := o.State()
	if state.Summary.TotalCount != 3 || state.Summary.DeliveredCount != 1 || state.Summary.PendingCount != 2 {
		t.Fatalf("unexpected summary: %+v", state.Summary)
	}
	if state.PendingWithReceipt != 1 {
		t.Fatalf("expected pendingWithReceipt=1, got %d", state.PendingWithReceipt)
	}
	if len(state.Alerts) != 1 || state.Alerts[0].ID != "A" {
		t.Fatalf("unexpected alerts: %+v", state.Alerts)
	}
	if state.LastUpdate.IsZero() {
		t.Fatalf("expected lastUpdate set on success")
	}
	if store.records != 1 || store.last.TotalCount != 3 {
		t.Fatalf("expected one snapshot persisted, got %d (%+v)", store.records, store.last)
	}

	if api.lastQuery.Size != 500 || api.lastQuery.Page != 1 {
		t.Fatalf("unexpected query paging: %+v", api.lastQuery)
	}
	start, err1 := time.Parse(time.RFC3339, api.lastQuery.LastRecRequireTimeStart)
	end, err2 := time.Parse(time.RFC3339, api.lastQuery.LastRecRequireTimeEnd)
	if err1 != nil || err2 != nil {
		t.Fatalf("query window not RFC3339: %v %v", err1, err2)
	}
	if window := end.Sub(start); window != queryWindowPast+queryWindowFuture {
		t.Fatalf("expected 80h query window, got %s", window)
	}
}

func TestLoadDataFailureLeavesStateUntouched(t *testing.T) {
	failing := false
	api := &fakeDispatchAPI{
		fetchFn: func(dispatch.BoardQuery) (dispatch.BoardPage, error) {
			if failing {
				return dispatch.BoardPage{}, errors.New("backend down")
			}
			return pageOf(dispatch.Record{SheetNo: "A", IsDelivered: true}), nil
		},
	}
	o := NewOrchestrator(api, nil, "", time.Hour)

	if err := o.LoadData(context.Background()); err != nil {
		t.Fatalf("seed load: %v", err)
	}
	before := o.State()

	failing = true
	if err := o.LoadData(context.Background()); err == nil {
		t.Fatalf("expected error from failing backend")
	}
	after := o.State()
	if after.Summary != before.Summary || len(after.Orders) != len(before.Orders) || !after.LastUpdate.Equal(before.LastUpdate) {
		t.Fatalf("failed refresh must keep prior state: before=%+v after=%+v", before.Summary, after.Summary)
	}
}

func TestEmptyResultArmsFiveMinutePoll(t *testing.T) {
	var mu sync.Mutex
	empty := true
	api := &fakeDispatchAPI{}
	api.fetchFn = func(dispatch.BoardQuery) (dispatch.BoardPage, error) {
		mu.Lock()
		defer mu.Unlock()
		if empty {
			return dispatch.BoardPage{}, nil
		}
		return pageOf(dispatch.Record{SheetNo: "A"}), nil
	}

	clock := clockz.NewFakeClock()
	o := NewOrchestrator(api, nil, "", time.Hour).WithClock(clock)

	if err := o.LoadData(context.Background()); err != nil {
		t.Fatalf("load data: %v", err)
	}
	if o.State().Summary.TotalCount != 0 {
		t.Fatalf("expected empty state")
	}

	// The poll loop re-invokes LoadData each interval while data is absent.
	waitFor(t, func() bool {
		clock.Advance(noDataRetryInterval)
		clock.BlockUntilReady()
		return api.fetchCount() >= 2
	}, "no-data poll never refetched")

	// Once data appears the poll is disarmed.
	mu.Lock()
	empty = false
	mu.Unlock()
	waitFor(t, func() bool {
		clock.Advance(noDataRetryInterval)
		clock.BlockUntilReady()
		return o.State().Summary.TotalCount == 1
	}, "poll never observed data")

	o.pollMu.Lock()
	armed := o.pollCancel != nil
	o.pollMu.Unlock()
	if armed {
		t.Fatalf("non-empty result must disarm the no-data poll")
	}
}

func TestLoadDataIsSingleFlight(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	api := &fakeDispatchAPI{
		fetchFn: func(dispatch.BoardQuery) (dispatch.BoardPage, error) {
			close(started)
			<-release
			return pageOf(dispatch.Record{SheetNo: "A"}), nil
		},
	}
	o := NewOrchestrator(api, nil, "", time.Hour)

	done := make(chan error, 1)
	go func() { done <- o.LoadData(context.Background()) }()
	<-started

	// Overlapping call is skipped without touching the backend.
	if err := o.LoadData(context.Background()); err != nil {
		t.Fatalf("overlapping load must be a silent skip, got %v", err)
	}
	if n := api.fetchCount(); n != 1 {
		t.Fatalf("expected a single in-flight fetch, got %d", n)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first load failed: %v", err)
	}
}

func TestHandleBottomReachedBumpsKeysAndReloads(t *testing.T) {
	api := &fakeDispatchAPI{
		fetchFn: func(dispatch.BoardQuery) (dispatch.BoardPage, error) {
			return pageOf(dispatch.Record{SheetNo: "A"}), nil
		},
	}
	o := NewOrchestrator(api, nil, "", time.Hour)

	o.HandleBottomReached()
	state := o.State()
	if state.TableKey != 1 || state.ChartKey != 1 {
		t.Fatalf("expected refresh keys bumped, got table=%d chart=%d", state.TableKey, state.ChartKey)
	}
	if api.fetchCount() != 1 {
		t.Fatalf("bottom reached must trigger a reload")
	}

	o.HandleBottomReached()
	state = o.State()
	if state.TableKey != 2 || state.ChartKey != 2 {
		t.Fatalf("refresh keys must be monotonic, got table=%d chart=%d", state.TableKey, state.ChartKey)
	}
}

func TestLoadFactoryInfoPrefersShortName(t *testing.T) {
	api := &fakeDispatchAPI{
		factoryFn: func(code string) (dispatch.FactoryInfo, error) {
			if code != "F7" {
				return dispatch.FactoryInfo{}, errors.New("wrong code")
			}
			return dispatch.FactoryInfo{FactoryName: "North Plant", FactoryShortName: "North"}, nil
		},
	}
	o := NewOrchestrator(api, nil, "F7", time.Hour)
	o.LoadFactoryInfo(context.Background())
	if got := o.State().FactoryName; got != "North" {
		t.Fatalf("expected short name, got %q", got)
	}
}

func TestLoadFactoryInfoFailureKeepsPlaceholder(t *testing.T) {
	api := &fakeDispatchAPI{
		factoryFn: func(string) (dispatch.FactoryInfo, error) {
			return dispatch.FactoryInfo{}, errors.New("lookup down")
		},
	}
	o := NewOrchestrator(api, nil, "F7", time.Hour)
	o.LoadFactoryInfo(context.Background())
	if got := o.State().FactoryName; got != factoryNamePlaceholder {
		t.Fatalf("expected placeholder on failure, got %q", got)
	}
}

func TestScenarioAEmptyFetch(t *testing.T) {
	api := &fakeDispatchAPI{}
	o := NewOrchestrator(api, nil, "", time.Hour)

	if err := o.LoadData(context.Background()); err != nil {
		t.Fatalf("load data: %v", err)
	}
	state := o.State()
	if state.Summary.TotalCount != 0 || len(state.Alerts) != 0 || len(state.Orders) != 0 {
		t.Fatalf("expected empty derived state: %+v", state)
	}
	if WarningVisible(state.PendingWithReceipt, state.Summary) {
		t.Fatalf("warning must be hidden with no data")
	}
	if o.Scroll().Offset() != 0 || o.Scroll().AtBottom() {
		t.Fatalf("scroll must stay idle with no data")
	}

	o.pollMu.Lock()
	armed := o.pollCancel != nil
	o.pollMu.Unlock()
	if !armed {
		t.Fatalf("empty fetch must arm the no-data poll")
	}
	o.Stop()
}

func TestResolveFactoryCodeOrder(t *testing.T) {
	cases := []struct {
		rawQuery string
		fallback string
		want     string
	}{
		{"factoryCode=F1&factorycode=F2", "F3", "F1"},
		{"factorycode=F2", "F3", "F2"},
		{"FACTORYCODE=F2", "F3", "F2"},
		{"factoryCode=++", "F3", "F3"},
		{"", "F3", "F3"},
		{"", "", ""},
	}
	for _, tc := range cases {
		values, err := url.ParseQuery(tc.rawQuery)
		if err != nil {
			t.Fatalf("parse %q: %v", tc.rawQuery, err)
		}
		if got := ResolveFactoryCode(values, tc.fallback); got != tc.want {
			t.Errorf("query %q fallback %q: expected %q, got %q", tc.rawQuery, tc.fallback, got, tc.want)
		}
	}
}
