package quote_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"bullion_market/internal/infrastructure/quote"
)

func TestFetchOuncePrice(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		price  string
		err    error
	}{
		{name: "goldprice shape", status: http.StatusOK, body: `{"ts":1,"items":[{"curr":"USD","xauPrice":2345.67}]}`, price: "2345.67"},
		{name: "flat shape", status: http.StatusOK, body: `{"price":"2100.5"}`, price: "2100.5"},
		{name: "bad status", status: http.StatusBadGateway, body: `{}`, err: quote.ErrUnexpectedStatus},
		{name: "not json", status: http.StatusOK, body: `<html>`, err: quote.ErrMalformedQuote},
		{name: "no price", status: http.StatusOK, body: `{"items":[]}`, err: quote.ErrMalformedQuote},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rq := require.New(t)

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				rq.Equal(http.MethodGet, r.Method)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			price, err := quote.NewClient(srv.URL, time.Second).FetchOuncePrice(context.Background())
			if tt.err != nil {
				rq.ErrorIs(err, tt.err)
				return
			}

			rq.NoError(err)
			rq.True(decimal.RequireFromString(tt.price).Equal(price), "got %s", price)
		})
	}
}

func TestFetchOuncePriceTimeout(t *testing.T) {
	rq := require.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	_, err := quote.NewClient(srv.URL, 50*time.Millisecond).FetchOuncePrice(context.Background())
	rq.Error(err)
}
