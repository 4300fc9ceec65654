package ratesource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fintru/wallet-ledger/internal/domain"
)

func TestClientRate(t *testing.T) {
	testCases := []struct {
		name    string
		handler http.HandlerFunc
		from    string
		to      string
		want    string
		wantErr bool
	}{
		{
			name: "OK",
			handler: func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, "/USD", r.URL.Path)
				w.Write([]byte(`{"base":"USD","rates":{"EUR":0.92,"JPY":149.5}}`))
			},
			from: "USD",
			to:   "EUR",
			want: "0.92",
		},
		{
			name: "Destination missing",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"rates":{"JPY":149.5}}`))
			},
			from:    "USD",
			to:      "EUR",
			wantErr: true,
		},
		{
			name: "Non positive rate",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"rates":{"EUR":0}}`))
			},
			from:    "USD",
			to:      "EUR",
			wantErr: true,
		},
		{
			name: "Upstream error status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
			from:    "USD",
			to:      "EUR",
			wantErr: true,
		},
		{
			name: "Malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"rates":`))
			},
			from:    "USD",
			to:      "EUR",
			wantErr: true,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(tc.handler)
			defer server.Close()

			client := NewClient(server.URL, time.Second)

			rate, err := client.Rate(context.Background(), tc.from, tc.to)

			if tc.wantErr {
				require.ErrorIs(t, err, domain.ErrRateUnavailable)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.want, rate.String())
		})
	}
}

func TestClientRateServerDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(server.URL, time.Second)

	_, err := client.Rate(context.Background(), "USD", "EUR")
	require.ErrorIs(t, err, domain.ErrRateUnavailable)
}
