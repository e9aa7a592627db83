package dip

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/guttosm/dipwatch/internal/domain/models"
	"github.com/guttosm/dipwatch/internal/logger"
)

// PriceSource is the price-data collaborator the evaluator depends on.
//
// Implementations must return an error wrapping models.ErrDataUnavailable
// when the requested point or field does not exist.
type PriceSource interface {
	LatestAdjClose(ctx context.Context, symbol string, window models.Window) (float64, error)
	FiftyTwoWeekHigh(ctx context.Context, symbol string) (float64, error)
}

// PercentDip returns |current - high| / high * 100.
//
// A non-positive high, or any input that would make the result NaN or Inf,
// yields models.ErrInvalidHigh instead of a value.
func PercentDip(current, high float64) (float64, error) {
	if high <= 0 || math.IsNaN(high) || math.IsInf(high, 0) {
		return 0, fmt.Errorf("%w: %v", models.ErrInvalidHigh, high)
	}
	pct := math.Abs(current-high) / high * 100
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return 0, fmt.Errorf("%w: dip of %v against %v is not finite", models.ErrInvalidHigh, current, high)
	}
	return pct, nil
}

// Exceeds reports whether pct is strictly above threshold. Ties are excluded.
func Exceeds(pct, threshold float64) bool {
	return pct > threshold
}

// Evaluator fetches prices for a fixed symbol list and keeps the ones that dipped.
type Evaluator struct {
	source   PriceSource
	parallel int
	log      zerolog.Logger
}

// NewEvaluator builds an Evaluator.
//
// Parameters:
//   - source: price-data collaborator.
//   - parallel: how many symbols to look up at once; values below 1 mean sequential.
func NewEvaluator(source PriceSource, parallel int) *Evaluator {
	if parallel < 1 {
		parallel = 1
	}
	return &Evaluator{source: source, parallel: parallel, log: logger.With("dip")}
}

// Evaluate returns a DipRecord for every ticker whose dip exceeds threshold,
// in the order the tickers were given.
//
// Behavior:
//   - For each ticker: latest adjusted close for window, then the 52-week high,
//     then PercentDip.
//   - The first failing ticker aborts the whole evaluation: lookups not yet
//     started are skipped, in-flight ones see a cancelled context, and the
//     error is returned wrapped with the ticker.
//   - Completion order never affects output order.
func (e *Evaluator) Evaluate(ctx context.Context, tickers []string, window models.Window, threshold float64) ([]models.DipRecord, error) {
	results := make([]*models.DipRecord, len(tickers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.parallel)

	for i, ticker := range tickers {
		if gctx.Err() != nil {
			break
		}
		// Go blocks while the limit is reached; a sibling may fail meanwhile.
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec, err := e.evaluateOne(gctx, ticker, window, threshold)
			if err != nil {
				return fmt.Errorf("%s: %w", ticker, err)
			}
			results[i] = rec
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		e.log.Error().Err(err).Str("date", window.DateKey()).Msg("evaluation aborted")
		return nil, err
	}

	out := make([]models.DipRecord, 0, len(tickers))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	e.log.Info().
		Str("date", window.DateKey()).
		Int("tickers", len(tickers)).
		Int("dips", len(out)).
		Float64("threshold", threshold).
		Msg("evaluation done")
	return out, nil
}

// evaluateOne returns nil, nil when the ticker did not dip past threshold.
func (e *Evaluator) evaluateOne(ctx context.Context, ticker string, window models.Window, threshold float64) (*models.DipRecord, error) {
	price, err := e.source.LatestAdjClose(ctx, ticker, window)
	if err != nil {
		return nil, fmt.Errorf("latest adjusted close: %w", err)
	}
	high, err := e.source.FiftyTwoWeekHigh(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("52-week high: %w", err)
	}
	pct, err := PercentDip(price, high)
	if err != nil {
		return nil, err
	}

	e.log.Debug().
		Str("ticker", ticker).
		Float64("current_price", price).
		Float64("high", high).
		Float64("percent_dip", pct).
		Msg("ticker evaluated")

	if !Exceeds(pct, threshold) {
		return nil, nil
	}
	return &models.DipRecord{
		Ticker:       ticker,
		CurrentPrice: price,
		AllTimeHigh:  high,
		PercentDip:   pct,
	}, nil
}
