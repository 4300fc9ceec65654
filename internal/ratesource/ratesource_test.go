package ratesource

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/fintru/wallet-ledger/internal/domain"
)

type sourceFunc func(ctx context.Context, from, to string) (decimal.Decimal, error)

func (f sourceFunc) Rate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	return f(ctx, from, to)
}

func TestStaticRate(t *testing.T) {
	static := NewStatic(map[string]map[string]string{
		"USD": {"EUR": "0.92", "JPY": "149.50", "XXX": "not a number", "GBP": "-1"},
	})

	testCases := []struct {
		name     string
		from, to string
		want     string
		wantErr  error
	}{
		{name: "Known pair", from: "USD", to: "EUR", want: "0.92"},
		{name: "Same currency", from: "USD", to: "USD", want: "1"},
		{name: "Unknown pair", from: "EUR", to: "USD", wantErr: domain.ErrRateUnavailable},
		{name: "Unparseable rate dropped", from: "USD", to: "XXX", wantErr: domain.ErrRateUnavailable},
		{name: "Non positive rate dropped", from: "USD", to: "GBP", wantErr: domain.ErrRateUnavailable},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			rate, err := static.Rate(context.Background(), tc.from, tc.to)

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.want, rate.String())
		})
	}
}

func TestChainRate(t *testing.T) {
	failing := sourceFunc(func(ctx context.Context, from, to string) (decimal.Decimal, error) {
		return decimal.Decimal{}, domain.ErrRateUnavailable
	})

	fixed := sourceFunc(func(ctx context.Context, from, to string) (decimal.Decimal, error) {
		return decimal.RequireFromString("0.92"), nil
	})

	t.Run("Falls through to the next source", func(t *testing.T) {
		chain := NewChain(failing, fixed)

		rate, err := chain.Rate(context.Background(), "USD", "EUR")
		require.NoError(t, err)
		require.Equal(t, "0.92", rate.String())
	})

	t.Run("First success wins", func(t *testing.T) {
		second := sourceFunc(func(ctx context.Context, from, to string) (decimal.Decimal, error) {
			t.Fatal("second source should not be consulted")
			return decimal.Decimal{}, nil
		})

		chain := NewChain(fixed, second)

		rate, err := chain.Rate(context.Background(), "USD", "EUR")
		require.NoError(t, err)
		require.Equal(t, "0.92", rate.String())
	})

	t.Run("All sources exhausted", func(t *testing.T) {
		chain := NewChain(failing, failing)

		_, err := chain.Rate(context.Background(), "USD", "EUR")
		require.ErrorIs(t, err, domain.ErrRateUnavailable)
	})

	t.Run("Stops on canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())

		canceling := sourceFunc(func(ctx context.Context, from, to string) (decimal.Decimal, error) {
			cancel()
			return decimal.Decimal{}, domain.ErrRateUnavailable
		})

		next := sourceFunc(func(ctx context.Context, from, to string) (decimal.Decimal, error) {
			t.Fatal("source consulted after cancellation")
			return decimal.Decimal{}, nil
		})

		chain := NewChain(canceling, next)

		_, err := chain.Rate(ctx, "USD", "EUR")
		require.ErrorIs(t, err, domain.ErrRateUnavailable)
	})
}
