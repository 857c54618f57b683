package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/gestion-escolar/internal/domain/entity"
	"github.com/jhoicas/gestion-escolar/internal/domain/repository"
)

var _ repository.InventoryMovementRepository = (*InventoryMovementRepo)(nil)

// InventoryMovementRepo implementación sobre PostgreSQL (usable con pool o tx).
type InventoryMovementRepo struct {
	q Querier
}

// NewInventoryMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryMovementRepository(q Querier) *InventoryMovementRepo {
	return &InventoryMovementRepo{q: q}
}

// Append persiste el movimiento y toma su Sequence de ledger_event_seq.
func (r *InventoryMovementRepo) Append(ctx context.Context, m *entity.InventoryMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	query := `
		INSERT INTO inventory_movements (id, product_key, description, unit_measure, type, quantity, unit_cost,
			total_cost, occurred_at, origin, destination, reason, school_id, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING seq`
	err := r.q.QueryRow(ctx, query,
		m.ID, m.Key.String(), m.Key.Description, m.Key.UnitMeasure, m.Type, m.Quantity, m.UnitCost,
		m.TotalCost, m.OccurredAt, m.Origin, nullable(m.Destination), nullable(m.Reason), m.SchoolID,
		m.CreatedAt, nullable(m.CreatedBy),
	).Scan(&m.Sequence)
	if err != nil {
		return mapWriteErr("append inventory movement", err)
	}
	return nil
}

// ListByProduct lista los movimientos del producto en la escuela ordenados por fecha y secuencia.
func (r *InventoryMovementRepo) ListByProduct(ctx context.Context, schoolID string, key entity.ProductKey) ([]*entity.InventoryMovement, error) {
	query := `
		SELECT id, seq, description, unit_measure, type, quantity, unit_cost, total_cost, occurred_at,
			origin, destination, reason, school_id, created_at, created_by
		FROM inventory_movements WHERE school_id = $1 AND product_key = $2
		ORDER BY occurred_at, seq`
	rows, err := r.q.Query(ctx, query, schoolID, key.String())
	if err != nil {
		return nil, fmt.Errorf("list movements by product: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryMovement
	for rows.Next() {
		var m entity.InventoryMovement
		var destination, reason, createdBy *string
		if err := rows.Scan(&m.ID, &m.Sequence, &m.Key.Description, &m.Key.UnitMeasure, &m.Type,
			&m.Quantity, &m.UnitCost, &m.TotalCost, &m.OccurredAt, &m.Origin, &destination, &reason,
			&m.SchoolID, &m.CreatedAt, &createdBy); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		m.Destination, m.Reason, m.CreatedBy = deref(destination), deref(reason), deref(createdBy)
		list = append(list, &m)
	}
	return list, rows.Err()
}
