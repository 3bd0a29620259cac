package pricing_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"bullion_market/internal/domain"
	"bullion_market/internal/domain/entity"
	"bullion_market/internal/domain/service/pricing"
	"bullion_market/internal/domain/value"
	"bullion_market/pkg/errcodes"
)

type staticSource decimal.Decimal

func (s staticSource) ReferencePrice(context.Context) decimal.Decimal { return decimal.Decimal(s) }

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestUnitPrice(t *testing.T) {
	rq := require.New(t)

	testCases := []struct {
		name       string
		reference  string
		purity     string
		adjustment string
		want       string
	}{
		{name: "Discount", reference: "1000", purity: "1", adjustment: "10", want: "900"},
		{name: "Premium", reference: "1000", purity: "1", adjustment: "-10", want: "1100"},
		{name: "No adjustment", reference: "1000", purity: "0.75", adjustment: "0", want: "750"},
		{name: "Rounded to cents", reference: "75123.456", purity: "0.9999", adjustment: "2.5", want: "73238.05"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(*testing.T) {
			got := pricing.UnitPrice(d(tc.reference), d(tc.purity), d(tc.adjustment))
			rq.True(d(tc.want).Equal(got), "want %s, got %s", tc.want, got)
		})
	}
}

func TestUnitPriceDeterministic(t *testing.T) {
	rq := require.New(t)

	first := pricing.UnitPrice(d("74211.31"), d("0.916"), d("3.3"))
	second := pricing.UnitPrice(d("74211.31"), d("0.916"), d("3.3"))

	rq.True(first.Equal(second))
	rq.Equal(first.String(), second.String())
}

func TestImpliedAdjustment(t *testing.T) {
	rq := require.New(t)

	adj, err := pricing.ImpliedAdjustment(d("1100"), d("1000"))
	rq.NoError(err)
	rq.True(d("-10").Equal(adj), "got %s", adj)

	adj, err = pricing.ImpliedAdjustment(d("900"), d("1000"))
	rq.NoError(err)
	rq.True(d("10").Equal(adj), "got %s", adj)

	// цена, полученная из корректировки, восстанавливается обратно
	base := pricing.BaseValue(d("1000"), d("1"))
	rq.True(d("900").Equal(pricing.UnitPrice(d("1000"), d("1"), adj)))
	rq.True(d("1000").Equal(base))

	_, err = pricing.ImpliedAdjustment(d("1100"), decimal.Zero)
	rq.True(domain.HasCode(err, errcodes.InvalidPricing))
}

func TestResolve(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()
	src := staticSource(d("2000"))

	fixed := &entity.Deal{PricingMode: value.PricingFixed, UnitPrice: d("1234.5"), Purity: d("0.5")}
	price, err := pricing.Resolve(ctx, fixed, src)
	rq.NoError(err)
	rq.True(d("1234.5").Equal(price))

	dynamic := &entity.Deal{PricingMode: value.PricingDynamic, Purity: d("0.5"), Adjustment: d("-5")}
	price, err = pricing.Resolve(ctx, dynamic, src)
	rq.NoError(err)
	rq.True(d("1050").Equal(price))

	unset := &entity.Deal{PricingMode: value.PricingFixed}
	_, err = pricing.Resolve(ctx, unset, src)
	rq.True(domain.HasCode(err, errcodes.InvalidPricing))

	unknown := &entity.Deal{PricingMode: "AUCTION"}
	_, err = pricing.Resolve(ctx, unknown, src)
	rq.Error(err)
}

func TestTotalPrice(t *testing.T) {
	rq := require.New(t)

	rq.True(d("2701.50").Equal(pricing.TotalPrice(d("3"), d("900.5"))))
	rq.True(d("0.34").Equal(pricing.TotalPrice(d("0.333"), d("1"))))
	rq.True(d("0.01").Equal(pricing.TotalPrice(d("0.0001"), d("0.5"))))
	rq.True(d("0.0045").LessThanOrEqual(pricing.TotalPrice(d("0.000005"), d("900"))))
}
