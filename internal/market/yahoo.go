package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/guttosm/dipwatch/internal/dip"
	"github.com/guttosm/dipwatch/internal/domain/models"
	"github.com/guttosm/dipwatch/internal/logger"
)

var _ dip.PriceSource = (*YahooClient)(nil)

// YahooClient reads daily history and summary details from the Yahoo Finance
// query API. It performs exactly one request per call; there is no retry.
type YahooClient struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewYahooClient builds a client for baseURL (e.g. https://query1.finance.yahoo.com).
func NewYahooClient(baseURL, userAgent string, timeout time.Duration) *YahooClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &YahooClient{
		baseURL:    baseURL,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.With("market"),
	}
}

// chartResponse mirrors the subset of /v8/finance/chart we consume.
// Individual points may be null when the exchange has no print for them.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *apiError `json:"error"`
	} `json:"chart"`
}

// summaryResponse mirrors the subset of /v10/finance/quoteSummary we consume.
type summaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			SummaryDetail *struct {
				FiftyTwoWeekHigh *struct {
					Raw *float64 `json:"raw"`
				} `json:"fiftyTwoWeekHigh"`
			} `json:"summaryDetail"`
		} `json:"result"`
		Error *apiError `json:"error"`
	} `json:"quoteSummary"`
}

type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (e *apiError) Error() string {
	return e.Code + ": " + e.Description
}

// LatestAdjClose returns the most recent non-null adjusted close inside window.
// An empty history yields models.ErrDataUnavailable.
func (c *YahooClient) LatestAdjClose(ctx context.Context, symbol string, window models.Window) (float64, error) {
	q := url.Values{}
	q.Set("period1", strconv.FormatInt(window.From.Unix(), 10))
	q.Set("period2", strconv.FormatInt(window.To.Unix(), 10))
	q.Set("interval", "1d")
	q.Set("events", "history")
	q.Set("includeAdjustedClose", "true")

	var data chartResponse
	status, err := c.getJSON(ctx, "/v8/finance/chart/"+url.PathEscape(symbol), q, &data)
	if err != nil {
		return 0, fmt.Errorf("chart %s: %w", symbol, err)
	}
	if status == http.StatusNotFound {
		return 0, fmt.Errorf("chart %s: not found: %w", symbol, models.ErrDataUnavailable)
	}
	if data.Chart.Error != nil {
		return 0, fmt.Errorf("chart %s: %v: %w", symbol, data.Chart.Error, models.ErrDataUnavailable)
	}
	if len(data.Chart.Result) == 0 || len(data.Chart.Result[0].Indicators.AdjClose) == 0 {
		return 0, fmt.Errorf("chart %s: no price points for %s: %w", symbol, window.DateKey(), models.ErrDataUnavailable)
	}

	points := data.Chart.Result[0].Indicators.AdjClose[0].AdjClose
	for i := len(points) - 1; i >= 0; i-- {
		if points[i] != nil {
			c.log.Debug().Str("symbol", symbol).Float64("adj_close", *points[i]).Msg("history fetched")
			return *points[i], nil
		}
	}
	return 0, fmt.Errorf("chart %s: no price points for %s: %w", symbol, window.DateKey(), models.ErrDataUnavailable)
}

// FiftyTwoWeekHigh returns summaryDetail.fiftyTwoWeekHigh for symbol.
// A missing field yields models.ErrDataUnavailable.
func (c *YahooClient) FiftyTwoWeekHigh(ctx context.Context, symbol string) (float64, error) {
	q := url.Values{}
	q.Set("modules", "summaryDetail")

	var data summaryResponse
	status, err := c.getJSON(ctx, "/v10/finance/quoteSummary/"+url.PathEscape(symbol), q, &data)
	if err != nil {
		return 0, fmt.Errorf("summary %s: %w", symbol, err)
	}
	if status == http.StatusNotFound {
		return 0, fmt.Errorf("summary %s: not found: %w", symbol, models.ErrDataUnavailable)
	}
	if data.QuoteSummary.Error != nil {
		return 0, fmt.Errorf("summary %s: %v: %w", symbol, data.QuoteSummary.Error, models.ErrDataUnavailable)
	}
	res := data.QuoteSummary.Result
	if len(res) == 0 || res[0].SummaryDetail == nil || res[0].SummaryDetail.FiftyTwoWeekHigh == nil ||
		res[0].SummaryDetail.FiftyTwoWeekHigh.Raw == nil {
		return 0, fmt.Errorf("summary %s: fiftyTwoWeekHigh missing: %w", symbol, models.ErrDataUnavailable)
	}

	high := *res[0].SummaryDetail.FiftyTwoWeekHigh.Raw
	c.log.Debug().Str("symbol", symbol).Float64("fifty_two_week_high", high).Msg("summary fetched")
	return high, nil
}

// getJSON performs a GET and decodes the body into out. 200 and 404 are
// decoded (Yahoo reports unknown symbols as a 404 with an error body); every
// other status is an error.
func (c *YahooClient) getJSON(ctx context.Context, path string, q url.Values, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	c.log.Debug().Str("path", path).Int("status", resp.StatusCode).Dur("elapsed", time.Since(start)).Msg("market request")

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return resp.StatusCode, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if resp.StatusCode == http.StatusNotFound {
			return resp.StatusCode, nil
		}
		return resp.StatusCode, fmt.Errorf("decode: %w", err)
	}
	return resp.StatusCode, nil
}
