// Package ratesource resolves conversion rates between currencies.
//
// A Source may be a static table or a network lookup; the ledger treats both
// uniformly and must tolerate absence of a pair. Rate lookups are read only
// and are the only operations retried, by trying the configured sources in
// order until one succeeds.
package ratesource

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/fintru/wallet-ledger/internal/domain"
)

// Source resolves the conversion rate from one currency to another.
// Implementations return domain.ErrRateUnavailable when the pair cannot be
// resolved.
type Source interface {
	Rate(ctx context.Context, from, to string) (decimal.Decimal, error)
}

// Static is a fixed in-memory rate table.
type Static struct {
	rates map[string]map[string]decimal.Decimal
}

// NewStatic builds a Static source from a table of decimal rate strings keyed
// by source then destination currency. Unparseable rates are dropped.
func NewStatic(table map[string]map[string]string) *Static {
	rates := make(map[string]map[string]decimal.Decimal, len(table))

	for from, row := range table {
		parsed := make(map[string]decimal.Decimal, len(row))

		for to, rate := range row {
			d, err := decimal.NewFromString(rate)
			if err != nil || d.LessThanOrEqual(decimal.Zero) {
				continue
			}

			parsed[to] = d
		}

		rates[from] = parsed
	}

	return &Static{rates: rates}
}

// Rate returns the table rate for the pair.
func (s *Static) Rate(_ context.Context, from, to string) (decimal.Decimal, error) {
	if from == to {
		return decimal.NewFromInt(1), nil
	}

	rate, ok := s.rates[from][to]
	if !ok {
		return decimal.Decimal{}, domain.ErrRateUnavailable
	}

	return rate, nil
}

// Chain tries each source in order until one resolves the pair. Lookups are
// idempotent reads, so falling through to the next source is safe.
type Chain struct {
	sources []Source
}

// NewChain returns a Chain over the given sources.
func NewChain(sources ...Source) *Chain {
	return &Chain{sources: sources}
}

// Rate resolves the pair through the first source that succeeds.
func (c *Chain) Rate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	for _, s := range c.sources {
		rate, err := s.Rate(ctx, from, to)
		if err == nil {
			return rate, nil
		}

		if ctx.Err() != nil {
			break
		}
	}

	return decimal.Decimal{}, domain.ErrRateUnavailable
}
