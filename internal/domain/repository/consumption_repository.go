package repository

import (
	"context"

	"github.com/jhoicas/gestion-escolar/internal/domain/entity"
)

// ConsumptionRepository persiste el historial de consumos directos (solo inserción).
type ConsumptionRepository interface {
	// Append asigna ID (si falta) y Sequence.
	Append(ctx context.Context, record *entity.ConsumptionRecord) error
	ListByItem(ctx context.Context, contractItemID string) ([]*entity.ConsumptionRecord, error)
}
