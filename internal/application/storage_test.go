package application

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestParseBuyers(t *testing.T) {
	tests := []struct {
		name    string
		raw     []string
		want    map[int64]string
		wantErr bool
	}{
		{name: "empty", raw: nil, want: map[int64]string{}},
		{name: "two buyers", raw: []string{"7:5000", " 8:125.50"}, want: map[int64]string{7: "5000", 8: "125.5"}},
		{name: "missing balance", raw: []string{"7"}, wantErr: true},
		{name: "bad id", raw: []string{"x:10"}, wantErr: true},
		{name: "bad balance", raw: []string{"7:ten"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rq := require.New(t)

			buyers, err := parseBuyers(tt.raw)
			if tt.wantErr {
				rq.Error(err)
				return
			}

			rq.NoError(err)
			rq.Len(buyers, len(tt.want))

			for _, b := range buyers {
				rq.True(b.Balance.Equal(decimal.RequireFromString(tt.want[b.ID])), b.Balance.String())
			}
		})
	}
}
