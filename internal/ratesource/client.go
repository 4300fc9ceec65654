package ratesource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/fintru/wallet-ledger/internal/domain"
)

// Client resolves rates from an exchangerate-api style endpoint that serves
// the latest rates for a base currency at {baseURL}/{currency}.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient returns a Client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type latestResponse struct {
	Rates map[string]decimal.Decimal `json:"rates"`
}

// Rate fetches the latest rates for the source currency and picks out the
// destination. Any transport or decoding failure surfaces as
// domain.ErrRateUnavailable; nothing is retried here.
func (c *Client) Rate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	l := zerolog.Ctx(ctx)

	url := fmt.Sprintf("%s/%s", c.baseURL, from)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return decimal.Decimal{}, domain.ErrRateUnavailable
	}

	resp, err := c.client.Do(req)
	if err != nil {
		l.Warn().Err(err).Str("url", url).Msg("rate lookup failed")
		return decimal.Decimal{}, domain.ErrRateUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		l.Warn().Int("status", resp.StatusCode).Str("url", url).Msg("rate lookup failed")
		return decimal.Decimal{}, domain.ErrRateUnavailable
	}

	var latest latestResponse
	if err := json.NewDecoder(resp.Body).Decode(&latest); err != nil {
		l.Warn().Err(err).Str("url", url).Msg("rate response decoding failed")
		return decimal.Decimal{}, domain.ErrRateUnavailable
	}

	rate, ok := latest.Rates[to]
	if !ok || rate.LessThanOrEqual(decimal.Zero) {
		return decimal.Decimal{}, domain.ErrRateUnavailable
	}

	return rate, nil
}
