package repository

import (
	"context"

	"github.com/jhoicas/gestion-escolar/internal/domain/entity"
)

// ReceiptRepository expone las recepciones derivadas de facturas aprobadas y activas.
// ListByProduct solo devuelve recepciones de facturas de schoolID.
// SaveInvoice guarda la factura y sus líneas de forma atómica y asigna Sequence a cada línea.
type ReceiptRepository interface {
	SaveInvoice(ctx context.Context, invoice *entity.Invoice) error
	ListByProduct(ctx context.Context, schoolID string, key entity.ProductKey) ([]entity.ReceiptEvent, error)
}
