package tui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/theirongolddev/demandcast/internal/forecast"
	"github.com/theirongolddev/demandcast/internal/pipeline"
	"github.com/theirongolddev/demandcast/internal/tui/components"
)

const halfYear = "Month,Sales\nJan,100\nFeb,120\nMar,140\nApr,160\nMay,180\nJun,200\n"

func newTestApp(t *testing.T, csv string) App {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "store.csv")
	if err := os.WriteFile(path, []byte(csv), 0o600); err != nil {
		t.Fatal(err)
	}
	seed := uint64(3)
	return NewApp(Options{
		Path:     path,
		Forecast: pipeline.Options{Model: forecast.ARIMA, Seed: &seed},
	})
}

// loaded runs the initial forecast synchronously and feeds it to the app.
func loaded(t *testing.T, a App) App {
	t.Helper()
	msg := runCmd(a.path, a.opts, a.catalog)()
	m, _ := a.Update(msg)
	m, _ = m.(App).Update(tea.WindowSizeMsg{Width: 140, Height: 50})
	return m.(App)
}

func TestForecastMsgPopulatesTabs(t *testing.T) {
	a := loaded(t, newTestApp(t, halfYear))
	if a.err != nil {
		t.Fatalf("unexpected error: %v", a.err)
	}
	if a.rec.Result.PredictedUnits == 0 || len(a.comparisons) != len(forecast.All()) {
		t.Fatalf("rec=%+v comparisons=%d", a.rec.Result, len(a.comparisons))
	}
	if a.running {
		t.Error("running should be cleared after the result arrives")
	}

	checks := map[int]string{
		tabForecast: "Predicted units",
		tabMetrics:  "Confusion matrix",
		tabCompare:  "All models on",
		tabHistory:  "history is disabled",
	}
	for tab, want := range checks {
		a.activeTab = tab
		if view := a.View(); !strings.Contains(view, want) {
			t.Errorf("tab %d view missing %q", tab, want)
		}
	}
}

func TestErrorView(t *testing.T) {
	a := loaded(t, newTestApp(t, "Month,Sales\nJan,10\nFeb,oops\n"))
	var de *forecast.DataError
	if !errors.As(a.err, &de) {
		t.Fatalf("err = %v, want DataError", a.err)
	}
	view := a.View()
	if !strings.Contains(view, "Cannot forecast") || !strings.Contains(view, "line 3") {
		t.Errorf("error view missing details")
	}
}

func TestModelCycle(t *testing.T) {
	a := loaded(t, newTestApp(t, halfYear))

	m, cmd := a.updateKey("m")
	next := m.(App)
	if next.opts.Model != forecast.Prophet || cmd == nil || !next.running {
		t.Fatalf("m: model=%v running=%v cmd=%v", next.opts.Model, next.running, cmd != nil)
	}

	// A second press while running is ignored.
	m, _ = next.updateKey("m")
	if m.(App).opts.Model != forecast.Prophet {
		t.Error("model changed while a run was in flight")
	}

	a.opts.Model = forecast.XGBoost
	m, _ = a.updateKey("m")
	if got := m.(App).opts.Model; got != forecast.ARIMA {
		t.Errorf("m from XGBoost = %v, want ARIMA", got)
	}
	a.opts.Model = forecast.ARIMA
	m, _ = a.updateKey("M")
	if got := m.(App).opts.Model; got != forecast.XGBoost {
		t.Errorf("M from ARIMA = %v, want XGBoost", got)
	}
}

func TestReseed(t *testing.T) {
	a := loaded(t, newTestApp(t, halfYear))
	m, cmd := a.updateKey("r")
	next := m.(App)
	if cmd == nil || next.opts.Seed == nil || !next.running {
		t.Fatal("r should start a seeded re-run")
	}
	if next.opts.Seed == a.opts.Seed {
		t.Error("reseed should allocate a new seed")
	}
}

func TestTabKeys(t *testing.T) {
	a := loaded(t, newTestApp(t, halfYear))
	tests := []struct {
		key  string
		want int
	}{
		{"c", tabCompare},
		{"e", tabMetrics},
		{"4", tabHistory},
		{"right", tabForecast},
		{"left", tabHistory},
		{"f", tabForecast},
	}
	for _, tt := range tests {
		m, _ := a.updateKey(tt.key)
		a = m.(App)
		if a.activeTab != tt.want {
			t.Fatalf("after %q activeTab = %d, want %d", tt.key, a.activeTab, tt.want)
		}
	}
}

func TestTabAtXMatchesTabWidths(t *testing.T) {
	for active := range components.Tabs {
		a := App{activeTab: active}
		pos := 0
		for i, tab := range components.Tabs {
			w := components.TabVisualWidth(tab, i == active)
			if got := a.tabAtX(pos + w/2); got != i {
				t.Fatalf("active=%d x=%d -> tab=%d, want %d", active, pos+w/2, got, i)
			}
			pos += w + 1
		}
		if got := a.tabAtX(pos + 50); got != -1 {
			t.Errorf("x past the last tab = %d, want -1", got)
		}
	}
}

func TestSaveAndHistory(t *testing.T) {
	a := loaded(t, newTestApp(t, halfYear))
	a.historyPath = filepath.Join(t.TempDir(), "history.db")

	m, cmd := a.updateKey("s")
	if cmd == nil {
		t.Fatal("s should save when history is enabled")
	}
	m, cmd = m.(App).Update(cmd())
	a = m.(App)
	if !a.saved || a.rec.ID == "" {
		t.Fatalf("saved=%v id=%q notice=%q", a.saved, a.rec.ID, a.notice)
	}

	m, _ = a.Update(cmd())
	a = m.(App)
	if a.historyErr != nil || len(a.history) != 1 || a.history[0].ID != a.rec.ID {
		t.Fatalf("history = %d records, err %v", len(a.history), a.historyErr)
	}

	a.activeTab = tabHistory
	if view := a.View(); !strings.Contains(view, "History (1/1)") {
		t.Error("history tab should list the saved forecast")
	}

	if _, cmd := a.updateKey("s"); cmd != nil {
		t.Error("saving the same run twice should be a no-op")
	}
}
