package repository

import (
	"context"

	"github.com/jhoicas/gestion-escolar/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ContractRepository define el puerto de persistencia para contratos y sus ítems.
type ContractRepository interface {
	CreateContract(ctx context.Context, contract *entity.Contract) error
	// GetItem devuelve (nil, nil) si el ítem no existe.
	GetItem(ctx context.Context, id string) (*entity.ContractItem, error)
	ListItemsBySchool(ctx context.Context, schoolID string) ([]*entity.ContractItem, error)
	// UpdateItemBalance escribe el nuevo saldo solo si la versión almacenada es expectedVersion;
	// si no, devuelve domain.ErrConflict. Incrementa la versión.
	UpdateItemBalance(ctx context.Context, id string, newBalance decimal.Decimal, expectedVersion int64) error
	DeleteItem(ctx context.Context, id string) error
}
