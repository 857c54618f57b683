package repository

import (
	"context"

	"github.com/jhoicas/gestion-escolar/internal/domain/entity"
)

// SchoolDirectory resuelve la pertenencia de escuelas a grupos de compras (colaborador externo).
type SchoolDirectory interface {
	SharesPurchasingGroup(ctx context.Context, schoolA, schoolB string) (bool, error)
	// ListGroupMembers devuelve las escuelas del grupo de schoolID (incluida ella misma).
	ListGroupMembers(ctx context.Context, schoolID string) ([]*entity.School, error)
}

// SchoolRepository agrega el alta de escuelas al directorio.
type SchoolRepository interface {
	SchoolDirectory
	Save(ctx context.Context, school *entity.School) error
	GetByID(ctx context.Context, id string) (*entity.School, error)
}
