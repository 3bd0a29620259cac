package server_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"bullion_market/internal/domain/entity"
	"bullion_market/pkg/logx"
	"bullion_market/pkg/middlewarex"
	"bullion_market/pkg/rest"
	"bullion_market/pkg/tests"
)

func TestConcurrentPurchasesOverHTTP(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()
	f := newFixture(t)

	masker := logx.NewSensitiveDataMasker()
	handler := middlewarex.TraceID(
		middlewarex.Logger(
			middlewarex.RequestLogging(masker, 1024)(
				middlewarex.ResponseLogging(masker, 1024)(
					middlewarex.Recovery(f.handler),
				),
			),
		),
	)

	ts := httptest.NewServer(handler)
	defer ts.Close()

	client := tests.NewAPIClient(ts.URL, ts.Client())

	var created rest.DealIngestResult

	resp, err := client.WithHeader("X-Api-Key", testAPIKey).Put(ctx, "/v1/ingest/deals", rest.DealIngest{
		ExternalID:  "lot-e2e",
		Commodity:   "Gold",
		Company:     "Acme Mining",
		Grade:       "BULLION",
		Quantity:    decimal.NewFromInt(20),
		PricingMode: "FIXED",
		UnitPrice:   decimal.NewFromInt(100),
	}, &created, nil)
	rq.NoError(err)
	rq.Equal(http.StatusCreated, resp.StatusCode)

	const buyers = 12

	random := tests.NewRandomizer()
	quantities := make([]decimal.Decimal, buyers)

	for i := range buyers {
		f.store.Buyers().Put(&entity.Buyer{
			ID:      int64(100 + i),
			Name:    "buyer-" + strconv.Itoa(i),
			Balance: decimal.NewFromInt(1000),
		})
		quantities[i] = random.Quantity(4)
	}

	path := "/v1/deals/" + strconv.FormatInt(created.Deal.ID, 10) + "/purchases"

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		sold = decimal.Zero
	)

	for i := range buyers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			var (
				result  rest.PurchaseResult
				failure rest.Error
			)

			resp, err := client.As(int64(100+i), "buyer").
				Post(ctx, path, rest.PurchaseRequest{Quantity: quantities[i]}, &result, &failure)
			if err != nil {
				t.Errorf("purchase %d: %v", i, err)
				return
			}

			switch resp.StatusCode {
			case http.StatusCreated:
				mu.Lock()
				sold = sold.Add(quantities[i])
				mu.Unlock()
			case http.StatusUnprocessableEntity:
				if failure.Code != "InsufficientInventory" && failure.Code != "DealUnavailable" {
					t.Errorf("purchase %d: unexpected code %s", i, failure.Code)
				}
			default:
				t.Errorf("purchase %d: unexpected status %d", i, resp.StatusCode)
			}
		}()
	}

	wg.Wait()

	var current rest.Deal

	resp, err = client.As(1, "admin").Get(ctx, "/v1/deals/"+strconv.FormatInt(created.Deal.ID, 10), &current, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)

	rq.False(current.AvailableQuantity.IsNegative())
	rq.True(sold.Add(current.AvailableQuantity).Equal(decimal.NewFromInt(20)),
		"sold %s + available %s", sold, current.AvailableQuantity)

	if current.AvailableQuantity.IsZero() {
		rq.Equal("CLOSED", current.Status)
		rq.NotNil(current.OwnerID)
	} else {
		rq.Equal("OPEN", current.Status)
	}
}
