package dip

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/guttosm/dipwatch/internal/domain/models"
)

type quote struct {
	price float64
	high  float64
	delay time.Duration
	err   error
}

// fakeSource serves canned quotes and counts calls.
type fakeSource struct {
	quotes map[string]quote
	mu       sync.Mutex
	calls    []string
	canceled []string
}

func (f *fakeSource) LatestAdjClose(ctx context.Context, symbol string, _ models.Window) (float64, error) {
	f.mu.Lock()
	f.calls = append(f.calls, symbol)
	f.mu.Unlock()
	q, ok := f.quotes[symbol]
	if !ok {
		return 0, fmt.Errorf("no history: %w", models.ErrDataUnavailable)
	}
	if q.delay > 0 {
		select {
		case <-time.After(q.delay):
		case <-ctx.Done():
			f.mu.Lock()
			f.canceled = append(f.canceled, symbol)
			f.mu.Unlock()
			return 0, ctx.Err()
		}
	}
	if q.err != nil {
		return 0, q.err
	}
	return q.price, nil
}

func (f *fakeSource) FiftyTwoWeekHigh(_ context.Context, symbol string) (float64, error) {
	q, ok := f.quotes[symbol]
	if !ok || q.high < 0 {
		return 0, fmt.Errorf("no summary: %w", models.ErrDataUnavailable)
	}
	return q.high, nil
}

func testWindow() models.Window {
	d := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	return models.Window{From: d, To: d.AddDate(0, 0, 1)}
}

func TestPercentDip(t *testing.T) {
	cases := []struct {
		name    string
		current float64
		high    float64
		want    float64
		wantErr bool
	}{
		{name: "ten percent", current: 90, high: 100, want: 10},
		{name: "fifteen percent", current: 85, high: 100, want: 15},
		{name: "above high uses absolute value", current: 110, high: 100, want: 10},
		{name: "at high", current: 100, high: 100, want: 0},
		{name: "zero high", current: 10, high: 0, wantErr: true},
		{name: "negative high", current: 10, high: -5, wantErr: true},
		{name: "nan high", current: 10, high: math.NaN(), wantErr: true},
		{name: "inf current", current: math.Inf(1), high: 100, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := PercentDip(tc.current, tc.high)
			if tc.wantErr {
				if !errors.Is(err, models.ErrInvalidHigh) {
					t.Fatalf("want ErrInvalidHigh, got %v (value %v)", err, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("PercentDip(%v,%v)=%v want %v", tc.current, tc.high, got, tc.want)
			}
		})
	}
}

func TestExceeds_StrictInequality(t *testing.T) {
	if Exceeds(10.0, 10.0) {
		t.Fatal("a tie must be excluded")
	}
	if !Exceeds(10.0000001, 10.0) {
		t.Fatal("just above threshold must be included")
	}
}

func TestEvaluate_FiltersByThreshold(t *testing.T) {
	src := &fakeSource{quotes: map[string]quote{
		"X": {price: 90, high: 100},
		"Y": {price: 85, high: 100},
		"Z": {price: 99, high: 100},
	}}
	ev := NewEvaluator(src, 1)

	out, err := ev.Evaluate(context.Background(), []string{"X", "Y", "Z"}, testWindow(), 10.0)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("want exactly one record, got %+v", out)
	}
	want := models.DipRecord{Ticker: "Y", CurrentPrice: 85, AllTimeHigh: 100, PercentDip: 15}
	if out[0].Ticker != want.Ticker || out[0].CurrentPrice != want.CurrentPrice || out[0].AllTimeHigh != want.AllTimeHigh ||
		math.Abs(out[0].PercentDip-want.PercentDip) > 1e-9 {
		t.Fatalf("got %+v want %+v", out[0], want)
	}
}

func TestEvaluate_EmptyWhenNothingDips(t *testing.T) {
	src := &fakeSource{quotes: map[string]quote{"A": {price: 100, high: 100}}}
	out, err := NewEvaluator(src, 1).Evaluate(context.Background(), []string{"A"}, testWindow(), 10.0)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if out == nil || len(out) != 0 {
		t.Fatalf("want empty non-nil slice, got %#v", out)
	}
}

func TestEvaluate_ZeroHighFailsRun(t *testing.T) {
	src := &fakeSource{quotes: map[string]quote{
		"A": {price: 50, high: 100},
		"B": {price: 10, high: 0},
	}}
	out, err := NewEvaluator(src, 1).Evaluate(context.Background(), []string{"A", "B"}, testWindow(), 10.0)
	if !errors.Is(err, models.ErrInvalidHigh) {
		t.Fatalf("want ErrInvalidHigh, got %v", err)
	}
	if out != nil {
		t.Fatalf("no records must be emitted on failure, got %+v", out)
	}
}

func TestEvaluate_FailFastOnMissingData(t *testing.T) {
	src := &fakeSource{quotes: map[string]quote{
		"A": {price: 50, high: 100},
		"C": {price: 50, high: 100},
	}}
	_, err := NewEvaluator(src, 1).Evaluate(context.Background(), []string{"A", "B", "C"}, testWindow(), 10.0)
	if !errors.Is(err, models.ErrDataUnavailable) {
		t.Fatalf("want ErrDataUnavailable, got %v", err)
	}
	if got := err.Error(); len(got) < 2 || got[:2] != "B:" {
		t.Fatalf("error should name the ticker, got %q", got)
	}
	for _, c := range src.calls {
		if c == "C" {
			t.Fatalf("sequential run must stop at the first failing ticker, calls=%v", src.calls)
		}
	}
}

func TestEvaluate_FailFastSkipsPendingTickers(t *testing.T) {
	missing := fmt.Errorf("no history: %w", models.ErrDataUnavailable)

	cases := []struct {
		name         string
		parallel     int
		quotes       map[string]quote
		tickers      []string
		wantCanceled []string
	}{
		{
			name:     "sequential",
			parallel: 1,
			quotes: map[string]quote{
				"A": {price: 50, high: 100},
				"C": {price: 50, high: 100},
				"D": {price: 50, high: 100},
			},
			tickers: []string{"A", "B", "C", "D"},
		},
		{
			name:     "parallel cancels in-flight sibling",
			parallel: 2,
			quotes: map[string]quote{
				"A": {price: 50, high: 100, delay: 2 * time.Second},
				"B": {delay: 20 * time.Millisecond, err: missing},
				"C": {price: 50, high: 100},
				"D": {price: 50, high: 100},
			},
			tickers:      []string{"A", "B", "C", "D"},
			wantCanceled: []string{"A"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src := &fakeSource{quotes: tc.quotes}
			start := time.Now()
			out, err := NewEvaluator(src, tc.parallel).Evaluate(context.Background(), tc.tickers, testWindow(), 10.0)
			if !errors.Is(err, models.ErrDataUnavailable) {
				t.Fatalf("want ErrDataUnavailable, got %v", err)
			}
			if out != nil {
				t.Fatalf("no records on failure, got %+v", out)
			}
			if time.Since(start) > time.Second {
				t.Fatalf("evaluation waited for the slow sibling")
			}

			src.mu.Lock()
			defer src.mu.Unlock()
			for _, c := range src.calls {
				if c == "C" || c == "D" {
					t.Fatalf("ticker %s queried after B failed, calls=%v", c, src.calls)
				}
			}
			if fmt.Sprint(src.canceled) != fmt.Sprint(tc.wantCanceled) {
				t.Fatalf("canceled=%v want %v", src.canceled, tc.wantCanceled)
			}
		})
	}
}

func TestEvaluate_MissingHighIsDataUnavailable(t *testing.T) {
	src := &fakeSource{quotes: map[string]quote{"A": {price: 50, high: -1}}}
	_, err := NewEvaluator(src, 1).Evaluate(context.Background(), []string{"A"}, testWindow(), 10.0)
	if !errors.Is(err, models.ErrDataUnavailable) {
		t.Fatalf("want ErrDataUnavailable, got %v", err)
	}
}

func TestEvaluate_ParallelPreservesOrder(t *testing.T) {
	// Earlier tickers finish last.
	src := &fakeSource{quotes: map[string]quote{
		"A": {price: 50, high: 100, delay: 60 * time.Millisecond},
		"B": {price: 60, high: 100, delay: 30 * time.Millisecond},
		"C": {price: 70, high: 100},
	}}
	out, err := NewEvaluator(src, 3).Evaluate(context.Background(), []string{"A", "B", "C"}, testWindow(), 10.0)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(out) != 3 || out[0].Ticker != "A" || out[1].Ticker != "B" || out[2].Ticker != "C" {
		t.Fatalf("unexpected order: %+v", out)
	}
}

// countingSource tracks peak concurrency.
type countingSource struct {
	inflight atomic.Int32
	peak     atomic.Int32
}

func (c *countingSource) LatestAdjClose(context.Context, string, models.Window) (float64, error) {
	n := c.inflight.Add(1)
	defer c.inflight.Add(-1)
	for {
		p := c.peak.Load()
		if n <= p || c.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(10 * time.Millisecond)
	return 1, nil
}

func (c *countingSource) FiftyTwoWeekHigh(context.Context, string) (float64, error) { return 1, nil }

func TestEvaluate_RespectsParallelLimit(t *testing.T) {
	src := &countingSource{}
	tickers := []string{"A", "B", "C", "D", "E", "F"}
	if _, err := NewEvaluator(src, 2).Evaluate(context.Background(), tickers, testWindow(), 10.0); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if p := src.peak.Load(); p > 2 {
		t.Fatalf("peak concurrency %d exceeds limit 2", p)
	}
}

func TestNewEvaluator_ClampsParallel(t *testing.T) {
	if ev := NewEvaluator(&fakeSource{}, 0); ev.parallel != 1 {
		t.Fatalf("parallel=%d, want 1", ev.parallel)
	}
}
