package forecast

import (
	"fmt"
	"strings"
)

// Model selects a preset. The names are labels only; every model runs the
// same trend-plus-seasonal projection with different constants.
type Model int

const (
	ARIMA Model = iota
	Prophet
	LSTM
	RandomForest
	XGBoost
)

// Confidence levels reported with a forecast.
const (
	ConfidenceHigh   = "High"
	ConfidenceMedium = "Medium"
)

// Preset holds the constants a model contributes to a run.
type Preset struct {
	Label       string
	NoiseFactor float64
	Confidence  string
}

var presets = [...]Preset{
	ARIMA:        {Label: "ARIMA", NoiseFactor: 0.10, Confidence: ConfidenceMedium},
	Prophet:      {Label: "Prophet", NoiseFactor: 0.08, Confidence: ConfidenceHigh},
	LSTM:         {Label: "LSTM", NoiseFactor: 0.12, Confidence: ConfidenceMedium},
	RandomForest: {Label: "Random Forest", NoiseFactor: 0.06, Confidence: ConfidenceHigh},
	XGBoost:      {Label: "XGBoost", NoiseFactor: 0.05, Confidence: ConfidenceHigh},
}

// All returns every model in display order.
func All() []Model {
	return []Model{ARIMA, Prophet, LSTM, RandomForest, XGBoost}
}

// Valid reports whether m is one of the known models.
func (m Model) Valid() bool {
	return m >= ARIMA && m <= XGBoost
}

// Preset returns the constants for m. Unknown values fall back to ARIMA.
func (m Model) Preset() Preset {
	if !m.Valid() {
		return presets[ARIMA]
	}
	return presets[m]
}

func (m Model) String() string {
	if !m.Valid() {
		return fmt.Sprintf("Model(%d)", int(m))
	}
	return presets[m].Label
}

// MarshalText encodes the display label.
func (m Model) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("unknown model %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText accepts anything ParseModel does.
func (m *Model) UnmarshalText(b []byte) error {
	parsed, err := ParseModel(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ParseModel resolves a user-supplied label. Case, spaces, dashes and
// underscores are ignored, so "Random Forest", "RandomForest" and
// "random-forest" all name the same model.
func ParseModel(s string) (Model, error) {
	key := normalizeModelKey(s)
	if key == "" {
		return 0, fmt.Errorf("empty model name")
	}
	for _, m := range All() {
		if normalizeModelKey(m.String()) == key {
			return m, nil
		}
	}
	switch key {
	case "rf":
		return RandomForest, nil
	case "xgb":
		return XGBoost, nil
	}
	return 0, fmt.Errorf("unknown model %q (want one of %s)", s, strings.Join(Labels(), ", "))
}

// Labels returns the display labels of all models.
func Labels() []string {
	out := make([]string, 0, len(presets))
	for _, m := range All() {
		out = append(out, m.String())
	}
	return out
}

func normalizeModelKey(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch r {
		case ' ', '-', '_', '.':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
