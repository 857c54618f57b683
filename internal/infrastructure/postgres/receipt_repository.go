package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/gestion-escolar/internal/domain/entity"
	"github.com/jhoicas/gestion-escolar/internal/domain/repository"
)

var _ repository.ReceiptRepository = (*ReceiptRepo)(nil)

// ReceiptRepo guarda facturas de compra y deriva sus recepciones.
type ReceiptRepo struct {
	pool *pgxpool.Pool
	tx   *TxRunner
}

// NewReceiptRepository construye el adaptador.
func NewReceiptRepository(pool *pgxpool.Pool) *ReceiptRepo {
	return &ReceiptRepo{pool: pool, tx: NewTxRunner(pool)}
}

// SaveInvoice inserta cabecera y líneas en una sola transacción.
func (r *ReceiptRepo) SaveInvoice(ctx context.Context, inv *entity.Invoice) error {
	return r.tx.Run(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO invoices (id, school_id, supplier_name, number, issued_at, status, active, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			inv.ID, inv.SchoolID, inv.SupplierName, inv.Number, inv.IssuedAt, inv.Status, inv.Active, inv.CreatedAt)
		if err != nil {
			return mapWriteErr("insert invoice", err)
		}
		for i := range inv.Items {
			it := &inv.Items[i]
			key := entity.NewProductKey(it.Description, it.UnitMeasure)
			err := tx.QueryRow(ctx, `
				INSERT INTO invoice_items (id, invoice_id, product_key, description, unit_measure, quantity, unit_price)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				RETURNING seq`,
				it.ID, inv.ID, key.String(), it.Description, it.UnitMeasure, it.Quantity, it.UnitPrice,
			).Scan(&it.Sequence)
			if err != nil {
				return mapWriteErr("insert invoice item", err)
			}
		}
		return nil
	})
}

// ListByProduct devuelve las recepciones del producto en facturas aprobadas y activas de la escuela.
func (r *ReceiptRepo) ListByProduct(ctx context.Context, schoolID string, key entity.ProductKey) ([]entity.ReceiptEvent, error) {
	query := `
		SELECT ii.id, ii.invoice_id, ii.quantity, ii.unit_price, i.issued_at, ii.seq
		FROM invoice_items ii
		JOIN invoices i ON i.id = ii.invoice_id
		WHERE i.school_id = $1 AND ii.product_key = $2 AND i.active AND i.status = $3
			AND ii.quantity > 0 AND ii.unit_price >= 0
		ORDER BY i.issued_at, ii.seq`
	rows, err := r.pool.Query(ctx, query, schoolID, key.String(), entity.InvoiceStatusApproved)
	if err != nil {
		return nil, fmt.Errorf("list receipts by product: %w", err)
	}
	defer rows.Close()
	var list []entity.ReceiptEvent
	for rows.Next() {
		ev := entity.ReceiptEvent{SchoolID: schoolID, Key: key}
		if err := rows.Scan(&ev.ID, &ev.InvoiceID, &ev.Quantity, &ev.UnitPrice, &ev.OccurredAt, &ev.Sequence); err != nil {
			return nil, fmt.Errorf("scan receipt: %w", err)
		}
		list = append(list, ev)
	}
	return list, rows.Err()
}
