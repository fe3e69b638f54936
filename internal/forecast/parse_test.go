package forecast

import (
	"testing"

	"github.com/theirongolddev/demandcast/internal/model"
)

func TestParse_DropsInvalidRows(t *testing.T) {
	csv := "Month,Sales\nJan,100\nFeb\nMar,abc\nApr,0\nMay,-5\nJun,1200.75\nJul, 85 units \n\nAug,90"
	got := Parse(csv)
	want := []model.HistoricalPoint{
		{Month: "Jan", Sales: 100},
		{Month: "Jun", Sales: 1200},
		{Month: "Jul", Sales: 85},
		{Month: "Aug", Sales: 90},
	}
	if len(got) != len(want) {
		t.Fatalf("Parse returned %d rows, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestProfile(t *testing.T) {
	csv := "Month, Sales\nJan,100\nFeb\nMar,abc\nApr,0\nMay,300\nJun,200\nJul,400"
	p := Profile(csv)

	if len(p.Header) != 2 || p.Header[1] != "Sales" {
		t.Errorf("Header = %q, want [Month Sales]", p.Header)
	}
	if p.DataLines != 7 {
		t.Errorf("DataLines = %d, want 7", p.DataLines)
	}
	if len(p.Valid) != 4 {
		t.Fatalf("len(Valid) = %d, want 4", len(p.Valid))
	}
	wantDropped := []model.DroppedRow{
		{Line: 3, Raw: "Feb", Reason: model.DropTooFewColumns},
		{Line: 4, Raw: "Mar,abc", Reason: model.DropUnparsable},
		{Line: 5, Raw: "Apr,0", Reason: model.DropNonPositive},
	}
	if len(p.Dropped) != len(wantDropped) {
		t.Fatalf("Dropped = %+v, want %+v", p.Dropped, wantDropped)
	}
	for i := range wantDropped {
		if p.Dropped[i] != wantDropped[i] {
			t.Errorf("Dropped[%d] = %+v, want %+v", i, p.Dropped[i], wantDropped[i])
		}
	}
	if p.MinSales != 100 || p.MaxSales != 400 {
		t.Errorf("Min/Max = %d/%d, want 100/400", p.MinSales, p.MaxSales)
	}
	if p.TotalSales != 1000 || p.MeanSales != 250 || p.MedianSales != 250 {
		t.Errorf("Total/Mean/Median = %d/%v/%v, want 1000/250/250", p.TotalSales, p.MeanSales, p.MedianSales)
	}
	if p.TrainSize != 3 || p.TestSize != 1 {
		t.Errorf("split = %d/%d, want 3/1", p.TrainSize, p.TestSize)
	}
	if !p.Ready {
		t.Error("Ready = false, want true")
	}
	if p.FirstLabel() != "Jan" || p.LastLabel() != "Jul" {
		t.Errorf("labels = %s..%s, want Jan..Jul", p.FirstLabel(), p.LastLabel())
	}
}

func TestProfile_Empty(t *testing.T) {
	p := Profile("   ")
	if p.Ready || len(p.Valid) != 0 || p.DataLines != 0 {
		t.Errorf("Profile(blank) = %+v, want zero", p)
	}
}

func TestParseLeadingInt(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"42", 42, true},
		{"+7", 7, true},
		{"-3", -3, true},
		{"12.9", 12, true},
		{"", 0, false},
		{"abc", 0, false},
		{"-", 0, false},
		{"99999999999999999999", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseLeadingInt(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("parseLeadingInt(%q) = (%d, %v), want (%d, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
