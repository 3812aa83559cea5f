package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"PowerPrice/internal/httputil"
)

// ExchangeRateAPI implements RateFetcher against exchangerate-api.com v6.
type ExchangeRateAPI struct {
	BaseURL string
	Token   string
	Client  *http.Client
	Retry   httputil.RetryConfig
	log     *slog.Logger
}

// NewExchangeRateAPI creates a client for the v6 API rooted at baseURL.
func NewExchangeRateAPI(baseURL, token string, client *http.Client, log *slog.Logger) *ExchangeRateAPI {
	return &ExchangeRateAPI{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		Client:  client,
		Retry:   httputil.DefaultRetry,
		log:     log,
	}
}

// Name identifies the provider in logs.
func (e *ExchangeRateAPI) Name() string { return "exchangerate-api" }

// latestResponse is the subset of /latest/{code} we read.
type latestResponse struct {
	Result          string                     `json:"result"`
	ErrorType       string                     `json:"error-type"`
	ConversionRates map[string]decimal.Decimal `json:"conversion_rates"`
}

// FetchRate returns how many units of target one unit of source buys.
func (e *ExchangeRateAPI) FetchRate(ctx context.Context, source, target string) (decimal.Decimal, error) {
	endpoint := fmt.Sprintf("%s/%s/latest/%s", e.BaseURL, url.PathEscape(e.Token), url.PathEscape(strings.ToUpper(source)))

	resp, err := httputil.Do(ctx, e.Client, e.Retry, e.log, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("fetch rate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decimal.Zero, fmt.Errorf("fetch rate: status %d", resp.StatusCode)
	}

	var body latestResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Zero, fmt.Errorf("decode rate: %w", err)
	}
	if body.Result != "" && body.Result != "success" {
		return decimal.Zero, fmt.Errorf("rate api error: %s", body.ErrorType)
	}
	rate, ok := body.ConversionRates[strings.ToUpper(target)]
	if !ok {
		return decimal.Zero, fmt.Errorf("rate api: no %s in conversion_rates", target)
	}
	if !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("rate api: invalid %s rate %s", target, rate)
	}
	return rate, nil
}
