package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/gestion-escolar/internal/domain/entity"
	"github.com/jhoicas/gestion-escolar/internal/domain/repository"
)

var _ repository.ConsumptionRepository = (*ConsumptionRepo)(nil)

// ConsumptionRepo persiste los consumos directos de saldo.
type ConsumptionRepo struct {
	q Querier
}

// NewConsumptionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewConsumptionRepository(q Querier) *ConsumptionRepo {
	return &ConsumptionRepo{q: q}
}

// Append inserta el registro y toma su Sequence de ledger_event_seq.
func (r *ConsumptionRepo) Append(ctx context.Context, c *entity.ConsumptionRecord) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	err := r.q.QueryRow(ctx, `
		INSERT INTO contract_consumptions (id, contract_item_id, school_id, quantity, reason, actor, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING seq`,
		c.ID, c.ContractItemID, c.SchoolID, c.Quantity, c.Reason, c.Actor, c.CreatedAt,
	).Scan(&c.Sequence)
	if err != nil {
		return mapWriteErr("append consumption", err)
	}
	return nil
}

// ListByItem lista los consumos del ítem en orden de registro.
func (r *ConsumptionRepo) ListByItem(ctx context.Context, contractItemID string) ([]*entity.ConsumptionRecord, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, seq, contract_item_id, school_id, quantity, reason, actor, created_at
		FROM contract_consumptions WHERE contract_item_id = $1 ORDER BY seq`, contractItemID)
	if err != nil {
		return nil, fmt.Errorf("list consumptions: %w", err)
	}
	defer rows.Close()
	var list []*entity.ConsumptionRecord
	for rows.Next() {
		var c entity.ConsumptionRecord
		if err := rows.Scan(&c.ID, &c.Sequence, &c.ContractItemID, &c.SchoolID, &c.Quantity,
			&c.Reason, &c.Actor, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan consumption: %w", err)
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}
