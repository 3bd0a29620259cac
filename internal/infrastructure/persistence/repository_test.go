package persistence_test

import (
	"context"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"bullion_market/internal/domain"
	"bullion_market/internal/domain/entity"
	"bullion_market/internal/domain/repository"
	"bullion_market/internal/domain/value"
	"bullion_market/internal/infrastructure/persistence"
	"bullion_market/pkg/dbtest"
	"bullion_market/pkg/errcodes"
)

func connect(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := os.Getenv("TEST_PG_DSN")
	if dsn == "" {
		t.Skip("TEST_PG_DSN is not set")
	}

	rq := require.New(t)

	db, err := sqlx.Connect("pgx", dsn)
	rq.NoError(err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`DROP TABLE IF EXISTS agreements, pending_exports, purchases, deals, buyers CASCADE`)
	rq.NoError(err)
	rq.NoError(dbtest.MigrateFromFile(db, "../../../migrations/001_init.sql"))

	return db
}

func seedBuyer(t *testing.T, db *sqlx.DB, balance string) int64 {
	t.Helper()

	var id int64
	require.NoError(t, db.Get(&id, `INSERT INTO buyers (name, balance) VALUES ('buyer', $1) RETURNING id`, balance))

	return id
}

func newDeal(externalID string) *entity.Deal {
	now := time.Now().UTC().Truncate(time.Microsecond)

	return &entity.Deal{
		ExternalID:        externalID,
		Commodity:         "Gold",
		Company:           "Acme",
		Quantity:          decimal.NewFromInt(10),
		AvailableQuantity: decimal.NewFromInt(10),
		Purity:            decimal.RequireFromString("0.9999"),
		PricingMode:       value.PricingFixed,
		UnitPrice:         decimal.NewFromInt(100),
		Frequency:         value.FrequencyMonthly,
		Status:            value.DealOpen,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func TestDealRepository(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()
	db := connect(t)

	repo := persistence.NewDealRepository(db)

	deal := newDeal("ext-1")
	rq.NoError(repo.Create(ctx, deal))
	rq.NotZero(deal.ID)

	err := repo.Create(ctx, newDeal("ext-1"))
	rq.True(domain.HasCode(err, errcodes.AlreadyExists))

	got, err := repo.GetByExternalID(ctx, "ext-1")
	rq.NoError(err)
	rq.Equal(deal.ID, got.ID)
	rq.True(deal.Purity.Equal(got.Purity))
	rq.Equal(value.FrequencyMonthly, got.Frequency)

	got.Adjustment = decimal.NewFromInt(5)
	got.AvailableQuantity = decimal.NewFromInt(1)
	rq.NoError(repo.UpdateCommercial(ctx, got))

	updated, err := repo.GetByID(ctx, deal.ID)
	rq.NoError(err)
	rq.True(decimal.NewFromInt(5).Equal(updated.Adjustment))
	rq.True(decimal.NewFromInt(10).Equal(updated.AvailableQuantity))

	open, err := repo.ListOpen(ctx, 10, 0)
	rq.NoError(err)
	rq.Len(open, 1)

	_, err = repo.GetByID(ctx, deal.ID+100)
	rq.True(domain.HasCode(err, errcodes.DealNotFound))
}

func TestSettlementTransaction(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()
	db := connect(t)

	deals := persistence.NewDealRepository(db)
	buyers := persistence.NewBuyerRepository(db)
	tx := persistence.NewTransactor(db)

	deal := newDeal("ext-tx")
	rq.NoError(deals.Create(ctx, deal))
	buyerID := seedBuyer(t, db, "500")

	var purchaseID int64

	err := tx.WithinSettlement(ctx, func(ctx context.Context, tx repository.SettlementTx) error {
		locked, err := tx.DealForUpdate(ctx, deal.ID)
		if err != nil {
			return err
		}

		buyer, err := tx.BuyerForUpdate(ctx, buyerID)
		if err != nil {
			return err
		}

		if err := tx.SetBalance(ctx, buyerID, buyer.Balance.Sub(decimal.NewFromInt(200))); err != nil {
			return err
		}

		now := time.Now().UTC()
		purchase := &entity.Purchase{
			DealID: locked.ID, BuyerID: buyerID,
			Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(100), TotalPrice: decimal.NewFromInt(200),
			Status: value.LogisticsConfirmed, CreatedAt: now, UpdatedAt: now,
		}
		if err := tx.CreatePurchase(ctx, purchase); err != nil {
			return err
		}
		purchaseID = purchase.ID

		locked.Fill(decimal.NewFromInt(2), buyerID, now)

		return tx.SaveInventory(ctx, locked)
	})
	rq.NoError(err)
	rq.NotZero(purchaseID)

	buyer, err := buyers.GetByID(ctx, buyerID)
	rq.NoError(err)
	rq.True(decimal.NewFromInt(300).Equal(buyer.Balance))

	stored, err := deals.GetByID(ctx, deal.ID)
	rq.NoError(err)
	rq.True(decimal.NewFromInt(8).Equal(stored.AvailableQuantity))

	err = tx.WithinSettlement(ctx, func(ctx context.Context, tx repository.SettlementTx) error {
		if err := tx.SetBalance(ctx, buyerID, decimal.Zero); err != nil {
			return err
		}

		return domain.NewError(domain.KindUnprocessable, errcodes.InsufficientFunds, "abort")
	})
	rq.True(domain.HasCode(err, errcodes.InsufficientFunds))

	buyer, err = buyers.GetByID(ctx, buyerID)
	rq.NoError(err)
	rq.True(decimal.NewFromInt(300).Equal(buyer.Balance), "rolled back")
}

func TestExportRepositoryConditionalUpdates(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()
	db := connect(t)

	deals := persistence.NewDealRepository(db)
	purchases := persistence.NewPurchaseRepository(db)
	exports := persistence.NewExportRepository(db)

	deal := newDeal("ext-export")
	rq.NoError(deals.Create(ctx, deal))
	buyerID := seedBuyer(t, db, "0")

	now := time.Now().UTC()
	purchase := &entity.Purchase{
		DealID: deal.ID, BuyerID: buyerID,
		Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(100), TotalPrice: decimal.NewFromInt(100),
		Status: value.LogisticsConfirmed, CreatedAt: now, UpdatedAt: now,
	}
	rq.NoError(purchases.Create(ctx, purchase))

	export := &entity.PendingExport{
		PurchaseID:     purchase.ID,
		DealID:         deal.ID,
		Params:         entity.ExportParams{Name: "Gold", AmountRequired: decimal.NewFromInt(100)},
		IdempotencyKey: "0b6c3e1e-8d4a-4f7e-9a55-5a3c1f0e2d11",
		Status:         value.ExportPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	rq.NoError(exports.Create(ctx, export))

	reviewer := int64(7)
	export.ExternalID = "proj-1"
	export.ReviewedBy = &reviewer
	export.ReviewedAt = &now
	rq.NoError(exports.MarkExported(ctx, export))

	err := exports.MarkExported(ctx, export)
	rq.True(domain.HasCode(err, errcodes.AlreadyProcessed))

	err = exports.UpdateParams(ctx, export.ID, entity.ExportParams{Name: "late"})
	rq.True(domain.HasCode(err, errcodes.AlreadyProcessed))

	stored, err := exports.GetByPurchaseID(ctx, purchase.ID)
	rq.NoError(err)
	rq.Equal(value.ExportExported, stored.Status)
	rq.Equal("proj-1", stored.ExternalID)
	rq.Equal("Gold", stored.Params.Name)

	listed, err := exports.List(ctx, value.ExportExported, 10, 0)
	rq.NoError(err)
	rq.Len(listed, 1)

	err = exports.MarkRejected(ctx, &entity.PendingExport{ID: export.ID + 100})
	rq.True(domain.HasCode(err, errcodes.ExportNotFound))
}

func TestPurchaseRepositoryConditionalLogistics(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()
	db := connect(t)

	deals := persistence.NewDealRepository(db)
	purchases := persistence.NewPurchaseRepository(db)

	deal := newDeal("ext-logistics")
	rq.NoError(deals.Create(ctx, deal))
	buyerID := seedBuyer(t, db, "0")

	now := time.Now().UTC().Truncate(time.Microsecond)
	purchase := &entity.Purchase{
		DealID: deal.ID, BuyerID: buyerID,
		Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(100), TotalPrice: decimal.NewFromInt(100),
		Status: value.LogisticsShipped, CreatedAt: now, UpdatedAt: now,
	}
	rq.NoError(purchases.Create(ctx, purchase))

	delivered := *purchase
	delivered.Status = value.LogisticsDelivered
	delivered.DeliveredAt = &now
	rq.NoError(purchases.UpdateLogistics(ctx, &delivered, value.LogisticsShipped))

	err := purchases.UpdateLogistics(ctx, &delivered, value.LogisticsShipped)
	rq.True(domain.HasCode(err, errcodes.LogisticsConflict))

	err = purchases.UpdateLogistics(ctx, &entity.Purchase{ID: purchase.ID + 100}, value.LogisticsShipped)
	rq.True(domain.HasCode(err, errcodes.PurchaseNotFound))

	stored, err := purchases.GetByID(ctx, purchase.ID)
	rq.NoError(err)
	rq.Equal(value.LogisticsDelivered, stored.Status)
	rq.NotNil(stored.DeliveredAt)
}
