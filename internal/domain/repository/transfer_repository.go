package repository

import (
	"context"

	"github.com/jhoicas/gestion-escolar/internal/domain/entity"
)

// TransferRepository persiste el historial de traslados (solo inserción).
type TransferRepository interface {
	Append(ctx context.Context, record *entity.TransferRecord) error
	ListByItem(ctx context.Context, contractItemID string) ([]*entity.TransferRecord, error)
	// ListBySchool lista traslados donde la escuela es origen o destino.
	ListBySchool(ctx context.Context, schoolID string) ([]*entity.TransferRecord, error)
}
