package narrative

import "time"

// Narrative is a plain-language reading of a stored forecast.
type Narrative struct {
	Headline    string    `json:"headline" yaml:"headline"`
	Narrative   string    `json:"narrative" yaml:"narrative"`
	Drivers     []string  `json:"drivers" yaml:"drivers"`
	Actions     []string  `json:"actions" yaml:"actions"`
	Model       string    `json:"model,omitempty" yaml:"model,omitempty"`
	ForecastID  string    `json:"forecastId,omitempty" yaml:"forecastId,omitempty"`
	GeneratedAt time.Time `json:"generatedAt" yaml:"generatedAt"`
	Repaired    bool      `json:"repaired,omitempty" yaml:"repaired,omitempty"`
}
