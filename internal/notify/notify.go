package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/guttosm/dipwatch/internal/domain/models"
)

// Notifier delivers a rendered dip report.
type Notifier interface {
	Notify(ctx context.Context, n models.Notification) error
}

// Message is the rendered subject and body of a dip report.
type Message struct {
	Subject string
	Body    string
	// Dips is the JSON encoding embedded in Body; it is also the archived dip list.
	Dips []byte
}

// Render produces the report subject and body for date.
func Render(threshold float64, date string, dips []models.DipRecord) (Message, error) {
	if dips == nil {
		dips = []models.DipRecord{}
	}
	raw, err := json.Marshal(dips)
	if err != nil {
		return Message{}, fmt.Errorf("encode dips: %w", err)
	}
	pct := strconv.FormatFloat(threshold, 'f', -1, 64)
	return Message{
		Subject: fmt.Sprintf("Stocks changed more than %s%% detected on %s", pct, date),
		Body: fmt.Sprintf("Below are the stocks that changed more than %s%% from their 52 week high: \n\n%s \n\n-from dipwatch",
			pct, raw),
		Dips: raw,
	}, nil
}
