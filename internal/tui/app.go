// Package tui provides the interactive Bubble Tea dashboard for one input file.
package tui

import (
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/demandcast/internal/cli"
	"github.com/theirongolddev/demandcast/internal/config"
	"github.com/theirongolddev/demandcast/internal/forecast"
	"github.com/theirongolddev/demandcast/internal/model"
	"github.com/theirongolddev/demandcast/internal/pipeline"
	"github.com/theirongolddev/demandcast/internal/source"
	"github.com/theirongolddev/demandcast/internal/store"
	"github.com/theirongolddev/demandcast/internal/tui/components"
	"github.com/theirongolddev/demandcast/internal/tui/theme"
)

const (
	tabForecast = iota
	tabMetrics
	tabCompare
	tabHistory
)

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180
	minContentHeight = 5
	historyLimit     = 100
)

// forecastMsg carries the result of one engine run.
type forecastMsg struct {
	rec         model.ForecastRecord
	profile     model.DataProfile
	comparisons []pipeline.Comparison
	took        time.Duration
	err         error
}

// historyMsg carries stored forecasts read from the history database.
type historyMsg struct {
	records []model.ForecastRecord
	err     error
}

// savedMsg reports the outcome of saving the current forecast.
type savedMsg struct {
	id  string
	err error
}

// Options configures the dashboard.
type Options struct {
	Path        string
	Forecast    pipeline.Options
	Catalog     []config.Benchmark
	HistoryPath string // empty disables the history tab and saving
	NeedSetup   bool
}

// App is the root Bubble Tea model.
type App struct {
	path        string
	opts        pipeline.Options
	catalog     []config.Benchmark
	historyPath string

	// Current run
	rec         model.ForecastRecord
	profile     model.DataProfile
	comparisons []pipeline.Comparison
	took        time.Duration
	err         error
	loaded      bool
	running     bool
	saved       bool
	notice      string

	// History tab
	history    []model.ForecastRecord
	historyErr error
	histCursor int

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	spinner   spinner.Model

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals SetupValues
	needSetup bool
}

// NewApp creates the dashboard model.
func NewApp(o Options) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	catalog := o.Catalog
	if catalog == nil {
		catalog = config.Catalog(config.DefaultConfig())
	}
	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}

	return App{
		path:        o.Path,
		opts:        o.Forecast,
		catalog:     catalog,
		historyPath: o.HistoryPath,
		needSetup:   o.NeedSetup,
		setupVals:   SetupValuesFrom(cfg),
		spinner:     sp,
		running:     true,
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		a.spinner.Tick,
		runCmd(a.path, a.opts, a.catalog),
		historyCmd(a.historyPath),
	)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		return a.updateMouse(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.needSetup && a.setupForm != nil {
			return a.updateSetupForm(msg)
		}
		return a.updateKey(msg.String())

	case forecastMsg:
		a.running = false
		a.loaded = true
		a.profile = msg.profile
		a.err = msg.err
		if msg.err == nil {
			a.rec = msg.rec
			a.comparisons = msg.comparisons
			a.took = msg.took
			a.saved = false
		}
		if a.needSetup && a.setupForm == nil {
			a.setupForm = NewSetupForm(&a.setupVals)
			if a.width > 0 {
				a.setupForm = a.setupForm.WithWidth(a.width).WithHeight(a.height)
			}
			return a, a.setupForm.Init()
		}
		return a, nil

	case historyMsg:
		a.history = msg.records
		a.historyErr = msg.err
		if a.histCursor >= len(a.history) {
			a.histCursor = max(0, len(a.history)-1)
		}
		return a, nil

	case savedMsg:
		if msg.err != nil {
			a.notice = "save failed: " + msg.err.Error()
			return a, nil
		}
		a.saved = true
		a.rec.ID = msg.id
		a.notice = "saved " + cli.ShortID(msg.id)
		return a, historyCmd(a.historyPath)

	case spinner.TickMsg:
		if a.running {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	return a, nil
}

func (a App) updateKey(key string) (tea.Model, tea.Cmd) {
	if !a.loaded {
		if key == "q" {
			return a, tea.Quit
		}
		return a, nil
	}
	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	if a.activeTab == tabHistory {
		switch key {
		case "j", "down":
			if a.histCursor < len(a.history)-1 {
				a.histCursor++
			}
			return a, nil
		case "k", "up":
			if a.histCursor > 0 {
				a.histCursor--
			}
			return a, nil
		case "g":
			a.histCursor = 0
			return a, nil
		case "G":
			a.histCursor = max(0, len(a.history)-1)
			return a, nil
		}
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "m", "M":
		step := 1
		if key == "M" {
			step = len(forecast.All()) - 1
		}
		a.opts.Model = forecast.All()[(int(a.opts.Model)+step)%len(forecast.All())]
		return a.rerun()
	case "r":
		seed := rand.Uint64()
		a.opts.Seed = &seed
		return a.rerun()
	case "s":
		if a.historyPath == "" {
			a.notice = "history is disabled"
			return a, nil
		}
		if a.err != nil || a.saved {
			return a, nil
		}
		return a, saveCmd(a.historyPath, a.rec)
	case "left", "shift+tab":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
	case "1", "2", "3", "4":
		a.activeTab = int(key[0] - '1')
	default:
		if len(key) == 1 {
			if idx := components.TabIdxByKey(rune(key[0])); idx >= 0 {
				a.activeTab = idx
			}
		}
	}
	return a, nil
}

func (a App) rerun() (tea.Model, tea.Cmd) {
	if a.running {
		return a, nil
	}
	a.running = true
	a.notice = ""
	return a, tea.Batch(a.spinner.Tick, runCmd(a.path, a.opts, a.catalog))
}

func (a App) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if !a.loaded || a.showHelp || a.setupForm != nil {
		return a, nil
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if a.activeTab == tabHistory && a.histCursor > 0 {
			a.histCursor--
		}
	case tea.MouseButtonWheelDown:
		if a.activeTab == tabHistory && a.histCursor < len(a.history)-1 {
			a.histCursor++
		}
	case tea.MouseButtonLeft:
		if msg.Action == tea.MouseActionPress && msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.activeTab = tab
			}
		}
	}
	return a, nil
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		if err := a.saveSetupConfig(); err != nil {
			a.notice = "could not save config: " + err.Error()
		}
		a.needSetup = false
		a.setupForm = nil
		return a.rerun()
	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}
	return a, cmd
}

// tabAtX returns the tab index at column x of the tab bar, or -1.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		w := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+w {
			return i
		}
		pos += w + 1
	}
	return -1
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	switch {
	case a.width == 0:
		return ""
	case a.width < minTerminalWidth:
		return fmt.Sprintf("\n  Terminal too narrow (%d cols)\n\n  demandcast needs at least %d columns.\n", a.width, minTerminalWidth)
	case !a.loaded:
		return a.viewLoading()
	case a.needSetup && a.setupForm != nil:
		return a.setupForm.View()
	case a.showHelp:
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewLoading() string {
	t := theme.Active
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)
	logo := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sub := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	body := logo.Render("◈ demandcast") + sub.Render(" · sales forecasting") + "\n\n" +
		a.spinner.View() + sub.Render(" Forecasting "+filepath.Base(a.path)+" with "+a.opts.Model.String())

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card.Render(body),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	title := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	desc := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	bindings := []struct{ key, desc string }{
		{"f e c h", "Jump to tab"},
		{"1-4 ← →", "Jump / previous / next tab"},
		{"m M", "Next / previous model"},
		{"r", "Re-run with a new random seed"},
		{"s", "Save forecast to history"},
		{"j k g G", "Move through history"},
		{"?", "Toggle help"},
		{"q", "Quit"},
	}

	var b strings.Builder
	b.WriteString(title.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")
	for _, bind := range bindings {
		fmt.Fprintf(&b, "%s  %s\n", keyStyle.Render(fmt.Sprintf("%-10s", bind.key)), desc.Render(bind.desc))
	}
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w, cw, h := a.width, a.contentWidth(), a.height

	info := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	accent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	line := info.Render(" ") + accent.Render(filepath.Base(a.path)) +
		info.Render(" │ ") + accent.Render(a.opts.Model.String())
	if a.opts.Seed != nil {
		line += info.Render(fmt.Sprintf(" │ seed %d", *a.opts.Seed))
	}
	if a.running {
		line += info.Render(" │ ") + a.spinner.View()
	}
	if a.notice != "" {
		line += info.Render(" │ " + a.notice)
	}
	header := components.RenderTabBar(a.activeTab, w) + "\n" +
		lipgloss.NewStyle().Background(t.Surface).Width(w).Render(line)

	status := ""
	if a.err == nil {
		status = fmt.Sprintf("%s · %d rows · %s", a.rec.Model, a.rec.Rows, a.took.Round(time.Microsecond))
	}
	statusBar := components.RenderStatusBar(w, status)

	contentH := max(minContentHeight, h-lipgloss.Height(header)-lipgloss.Height(statusBar))

	var content string
	switch {
	case a.activeTab == tabHistory:
		content = a.renderHistoryTab(cw, contentH)
	case a.err != nil:
		content = a.renderError(cw)
	case a.activeTab == tabForecast:
		content = a.renderForecastTab(cw)
	case a.activeTab == tabMetrics:
		content = a.renderMetricsTab(cw)
	case a.activeTab == tabCompare:
		content = a.renderCompareTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	out := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, out,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) renderError(cw int) string {
	t := theme.Active
	errStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).Bold(true)
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var b strings.Builder
	b.WriteString(errStyle.Render(a.err.Error()))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "%s", muted.Render(fmt.Sprintf("%d data lines, %d usable, %d discarded",
		a.profile.DataLines, len(a.profile.Valid), len(a.profile.Dropped))))
	for i, d := range a.profile.Dropped {
		if i == 10 {
			b.WriteString("\n" + muted.Render(fmt.Sprintf("... %d more", len(a.profile.Dropped)-i)))
			break
		}
		b.WriteString("\n" + muted.Render(fmt.Sprintf("line %d: %s (%s)", d.Line, truncStr(d.Raw, 40), d.Reason)))
	}
	return components.ContentCard("Cannot forecast "+filepath.Base(a.path), b.String(), cw)
}

// ─── Commands ───────────────────────────────────────────────────

func runCmd(path string, opts pipeline.Options, catalog []config.Benchmark) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		ds, err := source.ReadPath(path)
		if err != nil {
			return forecastMsg{err: err}
		}
		msg := forecastMsg{profile: forecast.Profile(ds.CSV)}
		rec, err := pipeline.ForecastDataset(ds, opts)
		if err != nil {
			msg.err = err
			return msg
		}
		msg.rec = rec
		msg.took = time.Since(start)
		msg.comparisons = pipeline.Compare(ds.CSV, opts, catalog)
		return msg
	}
}

func historyCmd(path string) tea.Cmd {
	if path == "" {
		return nil
	}
	return func() tea.Msg {
		st, err := store.Open(path)
		if err != nil {
			return historyMsg{err: err}
		}
		defer func() { _ = st.Close() }()
		records, err := st.ListForecasts(store.ListOptions{Limit: historyLimit})
		return historyMsg{records: records, err: err}
	}
}

func saveCmd(path string, rec model.ForecastRecord) tea.Cmd {
	return func() tea.Msg {
		st, err := store.Open(path)
		if err != nil {
			return savedMsg{err: err}
		}
		defer func() { _ = st.Close() }()
		rec.ID = ""
		if err := st.SaveForecast(&rec); err != nil {
			return savedMsg{err: err}
		}
		return savedMsg{id: rec.ID}
	}
}

// ─── Helpers ────────────────────────────────────────────────────

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with the background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(w, lipgloss.Left, line, lipgloss.WithWhitespaceBackground(bg))
	}
	return strings.Join(lines, "\n")
}
