package commands

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"notion-trade-sync/internal/grid"
	"notion-trade-sync/internal/interfaces"
	"notion-trade-sync/internal/page"
	"notion-trade-sync/internal/syncer"
	"notion-trade-sync/internal/types"
)

const validID = "0123456789abcdef0123456789abcdef"

type memSettings struct {
	mu sync.Mutex
	s  types.Settings
}

func (m *memSettings) Load(context.Context) (types.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.s, nil
}

func (m *memSettings) Save(_ context.Context, s types.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s = s
	return nil
}

type describeStore struct {
	summary types.DatabaseSummary
	err     error
}

func (d *describeStore) Create(context.Context, types.Trade) (string, error) { return "", nil }
func (d *describeStore) Query(context.Context, types.Filter, int) ([]types.Record, error) {
	return nil, nil
}
func (d *describeStore) Describe(context.Context) (types.DatabaseSummary, error) {
	return d.summary, d.err
}

func factory(s interfaces.RemoteStore) interfaces.RemoteStoreFactory {
	return func(types.Settings) interfaces.RemoteStore { return s }
}

type recordingSyncer struct {
	mu       sync.Mutex
	triggers []string
	panics   bool
}

func (r *recordingSyncer) Run(_ context.Context, _ *goquery.Document, trigger string) (types.SyncResult, error) {
	if r.panics {
		panic("boom")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.triggers = append(r.triggers, trigger)
	return types.SyncResult{Success: true, SuccessCount: 1, Message: "1 synced, 0 duplicates skipped"}, nil
}

func (r *recordingSyncer) count(trigger string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, t := range r.triggers {
		if t == trigger {
			n++
		}
	}
	return n
}

type htmlSource struct {
	mu   sync.Mutex
	html string
	err  error
}

func (h *htmlSource) set(html string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.html = html
}

func (h *htmlSource) Fetch(context.Context) (*goquery.Document, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.err != nil {
		return nil, h.err
	}
	return goquery.NewDocumentFromReader(strings.NewReader(h.html))
}

func TestTestConnection(t *testing.T) {
	settings := &memSettings{s: types.Settings{Token: "secret_x", StoreID: validID}}
	c := New(settings, factory(&describeStore{summary: types.DatabaseSummary{ID: validID, Title: "Trades"}}), nil, nil)

	res := c.TestConnection(context.Background())
	if !res.Success || res.Database == nil || res.Database.Title != "Trades" {
		t.Errorf("Expected success with database title, got %+v", res)
	}
}

func TestTestConnectionErrors(t *testing.T) {
	c := New(&memSettings{}, factory(&describeStore{}), nil, nil)
	res := c.TestConnection(context.Background())
	if res.Success || !strings.Contains(res.Error, "Notion token") {
		t.Errorf("Expected missing settings error, got %+v", res)
	}

	settings := &memSettings{s: types.Settings{Token: "secret_x", StoreID: validID}}
	c = New(settings, factory(&describeStore{err: errors.New("HTTP 401 unauthorized")}), nil, nil)
	res = c.TestConnection(context.Background())
	if res.Success || !strings.Contains(res.Error, "401") {
		t.Errorf("Expected remote error, got %+v", res)
	}
}

func TestTestConnectionRecoversPanic(t *testing.T) {
	settings := &memSettings{s: types.Settings{Token: "secret_x", StoreID: validID}}
	c := New(settings, func(types.Settings) interfaces.RemoteStore { panic("bad store") }, nil, nil)
	res := c.TestConnection(context.Background())
	if res.Success || !strings.Contains(res.Error, "bad store") {
		t.Errorf("Expected panic converted to result, got %+v", res)
	}
}

func TestManualSync(t *testing.T) {
	s := &recordingSyncer{}
	c := New(&memSettings{}, nil, s, &htmlSource{html: "<html></html>"})

	res := c.ManualSync(context.Background())
	if !res.Success || res.SuccessCount != 1 {
		t.Errorf("Expected successful result, got %+v", res)
	}
	if s.count(syncer.TriggerManual) != 1 {
		t.Errorf("Expected one manual run, got %d", s.count(syncer.TriggerManual))
	}
}

func TestManualSyncFailures(t *testing.T) {
	c := New(&memSettings{}, nil, &recordingSyncer{}, &htmlSource{err: errors.New("page gone")})
	res := c.ManualSync(context.Background())
	if res.Success || res.Error != "page gone" {
		t.Errorf("Expected page error, got %+v", res)
	}

	c = New(&memSettings{}, nil, &recordingSyncer{panics: true}, &htmlSource{html: "<html></html>"})
	res = c.ManualSync(context.Background())
	if res.Success || !strings.Contains(res.Error, "boom") {
		t.Errorf("Expected panic converted to result, got %+v", res)
	}
}

func TestSaveSettings(t *testing.T) {
	settings := &memSettings{}
	c := New(settings, nil, nil, nil)

	res := c.SaveSettings(context.Background(), types.Settings{Token: "bad", StoreID: "short"})
	if res.Success {
		t.Error("Expected invalid settings to be rejected")
	}
	if got, _ := settings.Load(context.Background()); got.Token != "" {
		t.Errorf("Expected nothing persisted, got %+v", got)
	}

	want := types.Settings{Token: "ntn_abc", StoreID: validID, AutoSyncEnabled: true}
	res = c.SaveSettings(context.Background(), want)
	if !res.Success {
		t.Fatalf("Expected success, got %+v", res)
	}
	if got, _ := settings.Load(context.Background()); got != want {
		t.Errorf("Expected %+v persisted, got %+v", want, got)
	}
}

const watchPage = `<html><body>
<div data-testid="account-selector">PRACTICE S1</div>
<div role="tabpanel"><div class="MuiDataGrid-columnHeaderTitle">Symbol</div>
<div class="MuiDataGrid-columnHeaderTitle">Exit Time</div>
<div class="MuiDataGrid-virtualScrollerRenderZone">%ROWS%</div></div>
</body></html>`

func watchRows(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteString(`<div class="MuiDataGrid-row" data-id="r"><div data-field="symbolName">/MNQ</div>` +
			`<div data-field="exitPrice">` + strings.Repeat("1", i+1) + `</div></div>`)
	}
	return strings.Replace(watchPage, "%ROWS%", b.String(), 1)
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Timed out waiting for %s", what)
}

func TestWatchRunsChangePassesAndFollowsToggle(t *testing.T) {
	settings := &memSettings{s: types.Settings{RealTimeMonitoringEnabled: true}}
	src := &htmlSource{html: watchRows(1)}
	s := &recordingSyncer{}
	c := New(settings, nil, s, src)
	w := page.NewWatcher(src, 10*time.Millisecond, grid.Selectors{}, "")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Watch(ctx, w, WatchConfig{Debounce: 30 * time.Millisecond, SettingsPoll: 10 * time.Millisecond}) }()

	waitFor(t, "first change pass", func() bool { return s.count(syncer.TriggerChange) == 1 })

	src.set(watchRows(2))
	waitFor(t, "second change pass", func() bool { return s.count(syncer.TriggerChange) == 2 })

	settings.Save(ctx, types.Settings{RealTimeMonitoringEnabled: false})
	waitFor(t, "observer to stop", func() bool { return !w.Running() })

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Expected nil error on shutdown, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Expected Watch to return after cancel")
	}
}
