package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestWindow_DateKey(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	w := Window{From: time.Date(2025, 3, 14, 0, 0, 0, 0, loc), To: time.Date(2025, 3, 15, 0, 0, 0, 0, loc)}
	if got := w.DateKey(); got != "2025-03-14" {
		t.Fatalf("DateKey()=%q", got)
	}
}

func TestDipRecord_WireNames(t *testing.T) {
	b, err := json.Marshal(DipRecord{Ticker: "Y", CurrentPrice: 85, AllTimeHigh: 100, PercentDip: 15})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"ticker":"Y","currentPrice":85,"allTimeHigh":100,"percentDip":15}`
	if string(b) != want {
		t.Fatalf("got %s want %s", b, want)
	}
}
