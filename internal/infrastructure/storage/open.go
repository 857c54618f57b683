// Package storage abre el EventStore elegido por STORE_DRIVER y expone sus puertos.
package storage

import (
	"context"
	"fmt"

	"github.com/jhoicas/gestion-escolar/internal/domain/repository"
	"github.com/jhoicas/gestion-escolar/internal/infrastructure/badgerstore"
	"github.com/jhoicas/gestion-escolar/internal/infrastructure/memory"
	"github.com/jhoicas/gestion-escolar/internal/infrastructure/postgres"
	"github.com/jhoicas/gestion-escolar/pkg/config"
	"github.com/jhoicas/gestion-escolar/pkg/logger"
)

// Stores agrupa los puertos de persistencia de un mismo backend.
type Stores struct {
	Receipts     repository.ReceiptRepository
	Movements    repository.InventoryMovementRepository
	Contracts    repository.ContractRepository
	Transfers    repository.TransferRepository
	Consumptions repository.ConsumptionRepository
	Schools      repository.SchoolRepository
	close        func() error
}

// Close libera el backend.
func (s *Stores) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// Open construye los repositorios según cfg.Store.Driver. Con postgres aplica el esquema.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Stores, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		log.Info().Msg("almacenamiento PostgreSQL listo")
		return &Stores{
			Receipts:     postgres.NewReceiptRepository(pool),
			Movements:    postgres.NewInventoryMovementRepository(pool),
			Contracts:    postgres.NewContractRepository(pool),
			Transfers:    postgres.NewTransferRepository(pool),
			Consumptions: postgres.NewConsumptionRepository(pool),
			Schools:      postgres.NewSchoolRepository(pool),
			close:        func() error { pool.Close(); return nil },
		}, nil

	case config.StoreDriverBadger:
		db, err := badgerstore.Open(cfg.Store.BadgerPath)
		if err != nil {
			return nil, err
		}
		log.Info().Str("ruta", cfg.Store.BadgerPath).Msg("almacenamiento Badger listo")
		return &Stores{
			Receipts:     db.Receipts(),
			Movements:    db,
			Contracts:    db,
			Transfers:    db.Transfers(),
			Consumptions: db.Consumptions(),
			Schools:      db,
			close:        db.Close,
		}, nil

	case config.StoreDriverMemory:
		mem := memory.New()
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		return &Stores{
			Receipts:     mem.Receipts(),
			Movements:    mem,
			Contracts:    mem,
			Transfers:    mem.Transfers(),
			Consumptions: mem.Consumptions(),
			Schools:      mem,
		}, nil
	}
	return nil, fmt.Errorf("STORE_DRIVER desconocido: %q", cfg.Store.Driver)
}
