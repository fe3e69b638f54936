package tui

import (
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/theirongolddev/demandcast/internal/config"
	"github.com/theirongolddev/demandcast/internal/forecast"
	"github.com/theirongolddev/demandcast/internal/tui/theme"
)

// SetupValues holds the answers of the first-run form.
type SetupValues struct {
	Model       string
	LabelMode   string
	Theme       string
	APIKey      string
	KeepHistory bool
}

// SetupValuesFrom pre-fills the form from an existing config.
func SetupValuesFrom(cfg config.Config) SetupValues {
	return SetupValues{
		Model:       cfg.General.Model().String(),
		LabelMode:   string(cfg.General.Labels()),
		Theme:       theme.ByName(cfg.Appearance.Theme).Name,
		APIKey:      cfg.Gemini.APIKey,
		KeepHistory: cfg.General.KeepHistory,
	}
}

// Apply writes the answers into cfg.
func (v SetupValues) Apply(cfg *config.Config) {
	cfg.General.DefaultModel = v.Model
	cfg.General.LabelMode = v.LabelMode
	cfg.General.KeepHistory = v.KeepHistory
	cfg.Appearance.Theme = v.Theme
	if key := strings.TrimSpace(v.APIKey); key != "" {
		cfg.Gemini.APIKey = key
	}
}

// NewSetupForm builds the first-run form bound to vals.
func NewSetupForm(vals *SetupValues) *huh.Form {
	modelOpts := make([]huh.Option[string], 0, len(forecast.All()))
	for _, m := range forecast.All() {
		p := m.Preset()
		modelOpts = append(modelOpts, huh.NewOption(p.Label+" ("+p.Confidence+" confidence)", p.Label))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to demandcast").
				Description("Pick the defaults used by predict, batch and serve.\nRun `demandcast setup` anytime to change them."),
			huh.NewSelect[string]().
				Title("Default model").
				Options(modelOpts...).
				Value(&vals.Model),
			huh.NewSelect[string]().
				Title("Forecast period labels").
				Options(
					huh.NewOption("Continue from the last label (Jun -> Jul, 2024-06 -> 2024-07)", string(forecast.LabelContinue)),
					huh.NewOption("Always Jul to Dec", string(forecast.LabelFixed)),
				).
				Value(&vals.LabelMode),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Color theme").
				Options(huh.NewOptions(theme.Names()...)...).
				Value(&vals.Theme),
			huh.NewConfirm().
				Title("Keep forecast history?").
				Description("Stores every forecast in a local SQLite database.").
				Value(&vals.KeepHistory),
			huh.NewInput().
				Title("Gemini API key").
				Description("Optional, used by `demandcast narrate`. Leave blank to skip.").
				EchoMode(huh.EchoModePassword).
				Value(&vals.APIKey),
		),
	).WithTheme(huh.ThemeCharm())
}

func (a *App) saveSetupConfig() error {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}
	a.setupVals.Apply(&cfg)
	theme.Apply(cfg.Appearance.Theme)
	a.opts.Model = cfg.General.Model()
	a.opts.LabelMode = cfg.General.Labels()
	return config.Save(cfg)
}
