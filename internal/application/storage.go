package application

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"bullion_market/internal/config"
	"bullion_market/internal/domain/entity"
	"bullion_market/internal/domain/repository"
	"bullion_market/internal/infrastructure/persistence"
	"bullion_market/internal/infrastructure/persistence/memory"
	"bullion_market/pkg/application/connectors"
)

type storage struct {
	deals      repository.DealRepository
	purchases  repository.PurchaseRepository
	exports    repository.ExportRepository
	agreements repository.AgreementRepository
	tx         repository.Transactor
}

func openStorage(ctx context.Context, cfg config.Config) (storage, func(), error) {
	if cfg.App.Storage == config.StoragePostgres {
		pg := &connectors.Postgres{
			DSN:             cfg.Postgres.DSN,
			MaxOpenConns:    cfg.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Postgres.MaxIdleConns,
			ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
		}
		db := pg.Client(ctx)

		return storage{
			deals:      persistence.NewDealRepository(db),
			purchases:  persistence.NewPurchaseRepository(db),
			exports:    persistence.NewExportRepository(db),
			agreements: persistence.NewAgreementRepository(db),
			tx:         persistence.NewTransactor(db),
		}, func() { pg.Close(ctx) }, nil
	}

	store := memory.New()

	buyers, err := parseBuyers(cfg.App.MemoryBuyers)
	if err != nil {
		return storage{}, nil, err
	}

	for _, b := range buyers {
		store.Buyers().Put(b)
	}

	logger(ctx).Warn("in-memory storage is used, data is lost on restart", "buyers", len(buyers))

	return storage{
		deals:      store.Deals(),
		purchases:  store.Purchases(),
		exports:    store.Exports(),
		agreements: store.Agreements(),
		tx:         store,
	}, func() {}, nil
}

// parseBuyers разбирает записи вида "7:5000".
func parseBuyers(raw []string) ([]*entity.Buyer, error) {
	buyers := make([]*entity.Buyer, 0, len(raw))

	for _, item := range raw {
		idRaw, balanceRaw, ok := strings.Cut(strings.TrimSpace(item), ":")
		if !ok {
			return nil, fmt.Errorf("buyer %q: expected id:balance", item)
		}

		id, err := strconv.ParseInt(idRaw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("buyer %q: strconv.ParseInt: %w", item, err)
		}

		balance, err := decimal.NewFromString(balanceRaw)
		if err != nil {
			return nil, fmt.Errorf("buyer %q: decimal.NewFromString: %w", item, err)
		}

		buyers = append(buyers, &entity.Buyer{
			ID:      id,
			Name:    "buyer-" + idRaw,
			Balance: balance,
		})
	}

	return buyers, nil
}
