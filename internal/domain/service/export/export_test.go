package export_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"bullion_market/internal/domain"
	"bullion_market/internal/domain/entity"
	"bullion_market/internal/domain/service/export"
	"bullion_market/internal/domain/value"
	"bullion_market/internal/infrastructure/persistence/memory"
	"bullion_market/pkg/errcodes"
)

type syndicatorMock struct {
	mu      sync.Mutex
	keys    []string
	err     error
	project string
}

func (m *syndicatorMock) CreateProject(_ context.Context, key string, _ entity.ExportParams) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.keys = append(m.keys, key)
	if m.err != nil {
		return "", m.err
	}

	return m.project, nil
}

func (m *syndicatorMock) UpdateShipmentStatus(context.Context, string, string) error {
	return nil
}

func (m *syndicatorMock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.keys)
}

type notifierMock struct {
	queued []int64
}

func (n *notifierMock) NotifyExportQueued(_ context.Context, e *entity.PendingExport) error {
	n.queued = append(n.queued, e.ID)
	return errors.New("telegram is down")
}

var now = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC) //nolint:gochecknoglobals

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newService(syndicator *syndicatorMock) (*export.Service, *memory.Store) {
	store := memory.New()
	svc := export.NewService(store.Exports(), syndicator).WithClock(func() time.Time { return now })

	return svc, store
}

func fixtureDeal(frequency value.Frequency) *entity.Deal {
	return &entity.Deal{
		ID:              7,
		Commodity:       "Gold",
		Company:         "Acme Mining",
		Form:            "bar",
		Purity:          d("0.9999"),
		Origin:          "Accra",
		Destination:     "Zurich",
		TransportMethod: "air",
		Frequency:       frequency,
	}
}

func fixturePurchase(id int64, total, location string) *entity.Purchase {
	return &entity.Purchase{
		ID:               id,
		DealID:           7,
		Quantity:         d("2"),
		TotalPrice:       d(total),
		DeliveryLocation: location,
	}
}

func TestSnapshot(t *testing.T) {
	tests := []struct {
		name          string
		frequency     value.Frequency
		total         string
		location      string
		duration      int
		minInvestment string
		destination   string
	}{
		{"spot large", value.FrequencySpot, "150000", "", 3, "1000", "Zurich"},
		{"monthly small", value.FrequencyMonthly, "640.50", "Dubai", 1, "640.50", "Dubai"},
		{"weekly", value.FrequencyWeekly, "5000", "", 1, "1000", "Zurich"},
		{"quarterly", value.FrequencyQuarterly, "5000", "", 3, "1000", "Zurich"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rq := require.New(t)

			params := export.Snapshot(fixtureDeal(tt.frequency), fixturePurchase(42, tt.total, tt.location))

			rq.Equal("Gold – Acme Mining #42", params.Name)
			rq.Equal(value.RiskMedium, params.RiskTier)
			rq.True(d("8").Equal(params.TargetYield))
			rq.Equal(tt.duration, params.DurationMonths)
			rq.True(d(tt.minInvestment).Equal(params.MinInvestment))
			rq.True(d(tt.total).Equal(params.AmountRequired))
			rq.Equal(tt.destination, params.Destination)
			rq.Equal("Accra", params.Origin)
			rq.Equal("bar", params.MaterialForm)
			rq.True(d("99.99").Equal(params.PurityPercent))
		})
	}
}

func TestEnqueueNotifiesBestEffort(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	notifier := &notifierMock{}
	svc, _ := newService(&syndicatorMock{})
	svc.WithNotifier(notifier)

	exp, err := svc.Enqueue(ctx, fixtureDeal(value.FrequencySpot), fixturePurchase(1, "100", ""))
	rq.NoError(err)
	rq.Equal(value.ExportPending, exp.Status)
	rq.Equal([]int64{exp.ID}, notifier.queued)

	_, err = svc.Enqueue(ctx, fixtureDeal(value.FrequencySpot), fixturePurchase(1, "100", ""))
	rq.Error(err, "one export per purchase")
}

func TestApproveIdempotent(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	syndicator := &syndicatorMock{project: "proj-1"}
	svc, _ := newService(syndicator)

	exp, err := svc.Enqueue(ctx, fixtureDeal(value.FrequencySpot), fixturePurchase(1, "100", ""))
	rq.NoError(err)

	approved, err := svc.Approve(ctx, exp.ID, 99)
	rq.NoError(err)
	rq.Equal(value.ExportExported, approved.Status)
	rq.Equal("proj-1", approved.ExternalID)
	rq.Equal(int64(99), *approved.ReviewedBy)
	rq.Equal(now, *approved.ReviewedAt)

	_, err = svc.Approve(ctx, exp.ID, 99)
	rq.Error(err)
	rq.True(domain.HasCode(err, errcodes.AlreadyProcessed))
	rq.Equal(1, syndicator.Calls())
	rq.Equal([]string{exp.IdempotencyKey}, syndicator.keys)

	_, err = svc.Reject(ctx, exp.ID, 99, "late")
	rq.True(domain.HasCode(err, errcodes.AlreadyProcessed))
}

func TestApproveUpstreamFailureKeepsPending(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	syndicator := &syndicatorMock{err: errors.New("503")}
	svc, _ := newService(syndicator)

	exp, err := svc.Enqueue(ctx, fixtureDeal(value.FrequencySpot), fixturePurchase(1, "100", ""))
	rq.NoError(err)

	_, err = svc.Approve(ctx, exp.ID, 1)
	rq.Error(err)
	rq.True(domain.HasCode(err, errcodes.UpstreamUnavailable))

	appErr, ok := domain.AsAppError(err)
	rq.True(ok)
	rq.Equal(domain.KindUpstream, appErr.Kind)

	stored, err := svc.Get(ctx, exp.ID)
	rq.NoError(err)
	rq.Equal(value.ExportPending, stored.Status)
	rq.Empty(stored.ExternalID)

	syndicator.err = nil
	syndicator.project = "proj-2"

	approved, err := svc.Approve(ctx, exp.ID, 1)
	rq.NoError(err)
	rq.Equal("proj-2", approved.ExternalID)
	rq.Equal([]string{exp.IdempotencyKey, exp.IdempotencyKey}, syndicator.keys)
}

func TestConcurrentApproveSingleTransition(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	syndicator := &syndicatorMock{project: "proj-1"}
	svc, _ := newService(syndicator)

	exp, err := svc.Enqueue(ctx, fixtureDeal(value.FrequencySpot), fixturePurchase(1, "100", ""))
	rq.NoError(err)

	const workers = 8

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			if _, err := svc.Approve(ctx, exp.ID, 1); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			} else if !domain.HasCode(err, errcodes.AlreadyProcessed) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}

	wg.Wait()

	rq.Equal(1, wins)

	for _, key := range syndicator.keys {
		rq.Equal(exp.IdempotencyKey, key)
	}
}

func TestReject(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	syndicator := &syndicatorMock{}
	svc, _ := newService(syndicator)

	exp, err := svc.Enqueue(ctx, fixtureDeal(value.FrequencySpot), fixturePurchase(1, "100", ""))
	rq.NoError(err)

	_, err = svc.Reject(ctx, exp.ID, 5, "   ")
	rq.True(domain.HasCode(err, errcodes.RejectionReason))

	rejected, err := svc.Reject(ctx, exp.ID, 5, "documents missing")
	rq.NoError(err)
	rq.Equal(value.ExportRejected, rejected.Status)
	rq.Equal("documents missing", rejected.RejectionReason)
	rq.Zero(syndicator.Calls())

	_, err = svc.Approve(ctx, exp.ID, 5)
	rq.True(domain.HasCode(err, errcodes.AlreadyProcessed))

	pending, err := svc.List(ctx, value.ExportPending, 10, 0)
	rq.NoError(err)
	rq.Empty(pending)

	all, err := svc.List(ctx, "", 10, 0)
	rq.NoError(err)
	rq.Len(all, 1)
}

func TestUpdateParams(t *testing.T) {
	ctx := context.Background()

	name := "Renamed"
	risk := value.RiskHigh
	badRisk := value.RiskTier("EXTREME")
	amount := d("1")
	form := "dore"
	purity := d("90")
	zero := 0
	tooMuch := d("5000")

	tests := []struct {
		name  string
		patch export.ParamsPatch
		code  string
	}{
		{"amount required is immutable", export.ParamsPatch{AmountRequired: &amount}, string(errcodes.ImmutableField)},
		{"material form is immutable", export.ParamsPatch{MaterialForm: &form}, string(errcodes.ImmutableField)},
		{"purity percent is immutable", export.ParamsPatch{PurityPercent: &purity}, string(errcodes.ImmutableField)},
		{"unknown risk tier", export.ParamsPatch{RiskTier: &badRisk}, string(errcodes.ValidationError)},
		{"zero duration", export.ParamsPatch{DurationMonths: &zero}, string(errcodes.ValidationError)},
		{"min investment over amount", export.ParamsPatch{MinInvestment: &tooMuch}, string(errcodes.ValidationError)},
		{"mutable fields", export.ParamsPatch{Name: &name, RiskTier: &risk}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rq := require.New(t)

			svc, _ := newService(&syndicatorMock{})

			exp, err := svc.Enqueue(ctx, fixtureDeal(value.FrequencySpot), fixturePurchase(1, "2000", ""))
			rq.NoError(err)

			updated, err := svc.UpdateParams(ctx, exp.ID, tt.patch)
			if tt.code != "" {
				rq.Error(err)

				code, ok := domain.GetCode(err)
				rq.True(ok)
				rq.Equal(tt.code, string(code))

				return
			}

			rq.NoError(err)
			rq.Equal(name, updated.Params.Name)
			rq.Equal(risk, updated.Params.RiskTier)

			stored, err := svc.Get(ctx, exp.ID)
			rq.NoError(err)
			rq.Equal(name, stored.Params.Name)
			rq.True(d("2000").Equal(stored.Params.AmountRequired))
		})
	}
}

func TestUpdateParamsAfterExport(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	svc, _ := newService(&syndicatorMock{project: "p"})

	exp, err := svc.Enqueue(ctx, fixtureDeal(value.FrequencySpot), fixturePurchase(1, "2000", ""))
	rq.NoError(err)

	_, err = svc.Approve(ctx, exp.ID, 1)
	rq.NoError(err)

	name := "late"
	_, err = svc.UpdateParams(ctx, exp.ID, export.ParamsPatch{Name: &name})
	rq.True(domain.HasCode(err, errcodes.AlreadyProcessed))
}
