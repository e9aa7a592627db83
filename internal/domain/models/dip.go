package models

import "time"

// DipRecord is one ticker whose current price sits more than the configured
// threshold below (or away from) its 52-week high.
//
// Fields:
//   - Ticker: The ticker symbol (e.g., "NVDA").
//   - CurrentPrice: Latest adjusted close for the run date.
//   - AllTimeHigh: The 52-week high reported by the price provider.
//   - PercentDip: |CurrentPrice - AllTimeHigh| / AllTimeHigh * 100.
//
// Records live for a single run; they are serialized into the outbound
// notification and the archive and then discarded.
//
// swagger:model DipRecord
type DipRecord struct {
	Ticker       string  `json:"ticker" example:"NVDA"`
	CurrentPrice float64 `json:"currentPrice" example:"85"`
	AllTimeHigh  float64 `json:"allTimeHigh" example:"100"`
	PercentDip   float64 `json:"percentDip" example:"15"`
}

// Window is the [From, To) date range used to ask for the day's price points.
type Window struct {
	From time.Time
	To   time.Time
}

// DateKey formats the window start as YYYY-MM-DD.
func (w Window) DateKey() string {
	return w.From.Format("2006-01-02")
}

// Notification is the payload handed to a notification backend.
type Notification struct {
	Sender     string      `json:"sender"`
	Recipients []string    `json:"recipients"`
	Subject    string      `json:"subject"`
	Body       string      `json:"body"`
	Date       string      `json:"date"`
	Dips       []DipRecord `json:"dips"`
}
