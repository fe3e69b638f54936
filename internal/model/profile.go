package model

// Reasons a CSV row is left out of the usable history.
const (
	DropTooFewColumns = "fewer than 2 columns"
	DropUnparsable    = "sales value is not an integer"
	DropNonPositive   = "sales value is not positive"
)

// DroppedRow records one discarded input line.
type DroppedRow struct {
	Line   int    `json:"line" yaml:"line"`
	Raw    string `json:"raw" yaml:"raw"`
	Reason string `json:"reason" yaml:"reason"`
}

// DataProfile describes an input file before it is forecast.
type DataProfile struct {
	Header      []string          `json:"header" yaml:"header"`
	DataLines   int               `json:"dataLines" yaml:"dataLines"`
	Valid       []HistoricalPoint `json:"valid" yaml:"valid"`
	Dropped     []DroppedRow      `json:"dropped" yaml:"dropped"`
	MinSales    int               `json:"minSales" yaml:"minSales"`
	MaxSales    int               `json:"maxSales" yaml:"maxSales"`
	MeanSales   float64           `json:"meanSales" yaml:"meanSales"`
	MedianSales float64           `json:"medianSales" yaml:"medianSales"`
	TotalSales  int64             `json:"totalSales" yaml:"totalSales"`
	TrainSize   int               `json:"trainSize" yaml:"trainSize"`
	TestSize    int               `json:"testSize" yaml:"testSize"`
	Ready       bool              `json:"ready" yaml:"ready"`
}

// FirstLabel returns the label of the first usable row, or "".
func (p DataProfile) FirstLabel() string {
	if len(p.Valid) == 0 {
		return ""
	}
	return p.Valid[0].Month
}

// LastLabel returns the label of the last usable row, or "".
func (p DataProfile) LastLabel() string {
	if len(p.Valid) == 0 {
		return ""
	}
	return p.Valid[len(p.Valid)-1].Month
}
