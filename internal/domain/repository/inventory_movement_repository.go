package repository

import (
	"context"

	"github.com/jhoicas/gestion-escolar/internal/domain/entity"
)

// InventoryMovementRepository define el puerto de persistencia para movimientos de inventario.
// Append es atómico y asigna ID (si falta) y Sequence. Los movimientos se agrupan por (SchoolID, Key).
type InventoryMovementRepository interface {
	Append(ctx context.Context, movement *entity.InventoryMovement) error
	ListByProduct(ctx context.Context, schoolID string, key entity.ProductKey) ([]*entity.InventoryMovement, error)
}
