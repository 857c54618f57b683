package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/gestion-escolar/internal/domain/entity"
	"github.com/jhoicas/gestion-escolar/internal/domain/repository"
)

var _ repository.TransferRepository = (*TransferRepo)(nil)

// TransferRepo persiste el historial de traslados; solo inserta y consulta.
type TransferRepo struct {
	q Querier
}

// NewTransferRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransferRepository(q Querier) *TransferRepo {
	return &TransferRepo{q: q}
}

const transferColumns = `id, seq, contract_item_id, from_school_id, to_school_id, quantity, justification, actor, created_at`

// Append inserta el registro y toma su Sequence.
func (r *TransferRepo) Append(ctx context.Context, t *entity.TransferRecord) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	err := r.q.QueryRow(ctx, `
		INSERT INTO transfers (id, contract_item_id, from_school_id, to_school_id, quantity, justification, actor, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING seq`,
		t.ID, t.ContractItemID, t.FromSchoolID, t.ToSchoolID, t.Quantity, t.Justification, t.Actor, t.CreatedAt,
	).Scan(&t.Sequence)
	if err != nil {
		return mapWriteErr("append transfer", err)
	}
	return nil
}

// ListByItem lista los traslados de un ítem.
func (r *TransferRepo) ListByItem(ctx context.Context, contractItemID string) ([]*entity.TransferRecord, error) {
	return r.list(ctx, `SELECT `+transferColumns+` FROM transfers WHERE contract_item_id = $1 ORDER BY seq`, contractItemID)
}

// ListBySchool lista traslados donde la escuela es origen o destino.
func (r *TransferRepo) ListBySchool(ctx context.Context, schoolID string) ([]*entity.TransferRecord, error) {
	return r.list(ctx, `SELECT `+transferColumns+` FROM transfers
		WHERE from_school_id = $1 OR to_school_id = $1 ORDER BY seq`, schoolID)
}

func (r *TransferRepo) list(ctx context.Context, query string, arg string) ([]*entity.TransferRecord, error) {
	rows, err := r.q.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	defer rows.Close()
	var list []*entity.TransferRecord
	for rows.Next() {
		var t entity.TransferRecord
		if err := rows.Scan(&t.ID, &t.Sequence, &t.ContractItemID, &t.FromSchoolID, &t.ToSchoolID,
			&t.Quantity, &t.Justification, &t.Actor, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transfer: %w", err)
		}
		list = append(list, &t)
	}
	return list, rows.Err()
}
