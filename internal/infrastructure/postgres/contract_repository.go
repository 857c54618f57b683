package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/gestion-escolar/internal/domain"
	"github.com/jhoicas/gestion-escolar/internal/domain/entity"
	"github.com/jhoicas/gestion-escolar/internal/domain/repository"
)

var _ repository.ContractRepository = (*ContractRepo)(nil)

// ContractRepo persiste contratos y el saldo versionado de sus ítems.
type ContractRepo struct {
	pool *pgxpool.Pool
	tx   *TxRunner
}

// NewContractRepository construye el adaptador.
func NewContractRepository(pool *pgxpool.Pool) *ContractRepo {
	return &ContractRepo{pool: pool, tx: NewTxRunner(pool)}
}

const itemColumns = `id, contract_id, school_id, description, unit_measure, unit_price,
	contracted_quantity, available_balance, version, created_at, updated_at`

// selectItems trae la vigencia desde el contrato; el ítem no la duplica en la tabla.
const selectItems = `SELECT ci.id, ci.contract_id, ci.school_id, ci.description, ci.unit_measure, ci.unit_price,
	ci.contracted_quantity, ci.available_balance, ci.version, ci.created_at, ci.updated_at,
	c.valid_from, c.valid_until
	FROM contract_items ci JOIN contracts c ON c.id = ci.contract_id`

// CreateContract inserta el contrato y sus ítems en una transacción.
func (r *ContractRepo) CreateContract(ctx context.Context, c *entity.Contract) error {
	return r.tx.Run(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO contracts (id, school_id, supplier_name, number, valid_from, valid_until, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			c.ID, c.SchoolID, c.SupplierName, c.Number, c.ValidFrom, c.ValidUntil, c.CreatedAt)
		if err != nil {
			return mapWriteErr("insert contract", err)
		}
		for i := range c.Items {
			it := &c.Items[i]
			_, err := tx.Exec(ctx, `
				INSERT INTO contract_items (`+itemColumns+`)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
				it.ID, c.ID, it.SchoolID, it.Description, it.UnitMeasure, it.UnitPrice,
				it.ContractedQuantity, it.AvailableBalance, it.Version, it.CreatedAt, it.UpdatedAt)
			if err != nil {
				return mapWriteErr("insert contract item", err)
			}
		}
		return nil
	})
}

func scanItem(row pgx.Row) (*entity.ContractItem, error) {
	var it entity.ContractItem
	err := row.Scan(&it.ID, &it.ContractID, &it.SchoolID, &it.Description, &it.UnitMeasure, &it.UnitPrice,
		&it.ContractedQuantity, &it.AvailableBalance, &it.Version, &it.CreatedAt, &it.UpdatedAt,
		&it.ValidFrom, &it.ValidUntil)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// GetItem obtiene un ítem por ID; (nil, nil) si no existe.
func (r *ContractRepo) GetItem(ctx context.Context, id string) (*entity.ContractItem, error) {
	it, err := scanItem(r.pool.QueryRow(ctx, selectItems+` WHERE ci.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get contract item: %w", err)
	}
	return it, nil
}

// ListItemsBySchool lista los ítems cuyo saldo pertenece a la escuela.
func (r *ContractRepo) ListItemsBySchool(ctx context.Context, schoolID string) ([]*entity.ContractItem, error) {
	rows, err := r.pool.Query(ctx,
		selectItems+` WHERE ci.school_id = $1 ORDER BY ci.created_at, ci.id`, schoolID)
	if err != nil {
		return nil, fmt.Errorf("list contract items: %w", err)
	}
	defer rows.Close()
	var list []*entity.ContractItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contract item: %w", err)
		}
		list = append(list, it)
	}
	return list, rows.Err()
}

// UpdateItemBalance hace compare-and-swap sobre version.
func (r *ContractRepo) UpdateItemBalance(ctx context.Context, id string, newBalance decimal.Decimal, expectedVersion int64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE contract_items
		SET available_balance = $2, version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $3`,
		id, newBalance, expectedVersion)
	if err != nil {
		return fmt.Errorf("update item balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM contract_items WHERE id = $1)`, id).Scan(&exists); err != nil {
			return fmt.Errorf("check item: %w", err)
		}
		if !exists {
			return domain.ErrNotFound
		}
		return domain.ErrConflict
	}
	return nil
}

// DeleteItem elimina el ítem.
func (r *ContractRepo) DeleteItem(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM contract_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete contract item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
