package narrative

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/theirongolddev/demandcast/internal/model"
)

type fakeGen struct {
	reply  string
	err    error
	prompt string
}

func (f *fakeGen) Generate(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.reply, f.err
}

func sampleRecord() model.ForecastRecord {
	return model.ForecastRecord{
		ID:     "abc123",
		Source: "store.csv",
		Result: model.ForecastResult{
			ModelUsed:        "XGBoost",
			Confidence:       "High",
			SalesTrend:       model.TrendIncreasing,
			PredictedUnits:   1688,
			PeakDemandPeriod: "Dec",
			Accuracy:         0.93,
			ChartData: []model.ChartRow{
				{Month: "May", Historical: 180},
				{Month: "Jun", Historical: 200, Predicted: 200},
				{Month: "Jul", Predicted: 220},
			},
			Forecast: []model.ForecastPoint{{Month: "Jul", Predicted: 220}},
		},
	}
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt(sampleRecord())
	for _, want := range []string{"store.csv", "XGBoost", "increasing", "1688", "Dec", "93.0%", "- Jun: 200 units", "- Jul: 220 units", `"headline"`} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(p, "- Jul: 0 units") {
		t.Error("forecast rows leaked into the history section")
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		headline string
		drivers  int
		repaired bool
	}{
		{"plain", `{"headline":"Up","narrative":"n","drivers":["a"],"actions":[]}`, "Up", 1, false},
		{"fenced", "```json\n{\"headline\":\"Fenced\",\"narrative\":\"n\",\"drivers\":[],\"actions\":[\"x\"]}\n```", "Fenced", 0, false},
		{"chatter", `Sure! Here it is: {"headline":"Chatty","narrative":"n"} Hope that helps.`, "Chatty", 0, false},
		{"trailing comma", `{"headline":"Fixed","narrative":"n","drivers":["a","b",],}`, "Fixed", 2, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := Parse(tt.raw)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if n.Headline != tt.headline || len(n.Drivers) != tt.drivers || n.Repaired != tt.repaired {
				t.Errorf("Parse = %+v", n)
			}
		})
	}
}

func TestParse_Rejects(t *testing.T) {
	for _, raw := range []string{"", "no json here", `{"drivers":["a"]}`} {
		if _, err := Parse(raw); err == nil {
			t.Errorf("Parse(%q) should fail", raw)
		}
	}
}

func TestNarrate(t *testing.T) {
	gen := &fakeGen{reply: `{"headline":"Demand climbs into December","narrative":"n","drivers":["seasonality"],"actions":["stock up"]}`}
	n, err := Narrate(context.Background(), gen, sampleRecord())
	if err != nil {
		t.Fatalf("Narrate: %v", err)
	}
	if n.ForecastID != "abc123" || n.GeneratedAt.IsZero() || n.Headline == "" {
		t.Errorf("Narrate = %+v", n)
	}
	if !strings.Contains(gen.prompt, "store.csv") {
		t.Error("generator did not receive the forecast prompt")
	}

	gen = &fakeGen{err: ErrEmptyResponse}
	if _, err := Narrate(context.Background(), gen, sampleRecord()); !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("err = %v, want ErrEmptyResponse", err)
	}
}

func TestNewClient(t *testing.T) {
	if _, err := NewClient("  ", ""); !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("err = %v, want ErrNoAPIKey", err)
	}
	c, err := NewClient("key", "")
	if err != nil || c.Model() == "" {
		t.Errorf("NewClient = %+v, %v", c, err)
	}
}
