package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/gestion-escolar/internal/domain/entity"
	"github.com/jhoicas/gestion-escolar/internal/domain/repository"
)

var _ repository.SchoolRepository = (*SchoolRepo)(nil)

// SchoolRepo es el directorio de escuelas y grupos de compras.
type SchoolRepo struct {
	q Querier
}

// NewSchoolRepository construye el adaptador.
func NewSchoolRepository(q Querier) *SchoolRepo {
	return &SchoolRepo{q: q}
}

// Save inserta o actualiza la escuela.
func (r *SchoolRepo) Save(ctx context.Context, s *entity.School) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO schools (id, name, purchasing_group_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, purchasing_group_id = EXCLUDED.purchasing_group_id, updated_at = EXCLUDED.updated_at`,
		s.ID, s.Name, nullable(s.PurchasingGroupID), s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save school: %w", err)
	}
	return nil
}

// GetByID obtiene la escuela; (nil, nil) si no existe.
func (r *SchoolRepo) GetByID(ctx context.Context, id string) (*entity.School, error) {
	var s entity.School
	var group *string
	err := r.q.QueryRow(ctx,
		`SELECT id, name, purchasing_group_id, created_at, updated_at FROM schools WHERE id = $1`, id,
	).Scan(&s.ID, &s.Name, &group, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get school: %w", err)
	}
	s.PurchasingGroupID = deref(group)
	return &s, nil
}

// SharesPurchasingGroup indica si ambas escuelas pertenecen al mismo grupo (no nulo).
func (r *SchoolRepo) SharesPurchasingGroup(ctx context.Context, schoolA, schoolB string) (bool, error) {
	var shared bool
	err := r.q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM schools a JOIN schools b ON a.purchasing_group_id = b.purchasing_group_id
			WHERE a.id = $1 AND b.id = $2 AND a.purchasing_group_id IS NOT NULL
		)`, schoolA, schoolB).Scan(&shared)
	if err != nil {
		return false, fmt.Errorf("shares purchasing group: %w", err)
	}
	return shared, nil
}

// ListGroupMembers devuelve las escuelas del grupo de schoolID, incluida ella.
func (r *SchoolRepo) ListGroupMembers(ctx context.Context, schoolID string) ([]*entity.School, error) {
	rows, err := r.q.Query(ctx, `
		SELECT s.id, s.name, s.purchasing_group_id, s.created_at, s.updated_at
		FROM schools s JOIN schools me ON me.id = $1
		WHERE s.id = me.id OR (me.purchasing_group_id IS NOT NULL AND s.purchasing_group_id = me.purchasing_group_id)
		ORDER BY s.id`, schoolID)
	if err != nil {
		return nil, fmt.Errorf("list group members: %w", err)
	}
	defer rows.Close()
	var list []*entity.School
	for rows.Next() {
		var s entity.School
		var group *string
		if err := rows.Scan(&s.ID, &s.Name, &group, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan school: %w", err)
		}
		s.PurchasingGroupID = deref(group)
		list = append(list, &s)
	}
	return list, rows.Err()
}
