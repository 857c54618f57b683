// Package school administra el directorio de escuelas y grupos de compras.
package school

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/gestion-escolar/internal/application/dto"
	"github.com/jhoicas/gestion-escolar/internal/domain"
	"github.com/jhoicas/gestion-escolar/internal/domain/entity"
	"github.com/jhoicas/gestion-escolar/internal/domain/repository"
)

// Directory registra y consulta escuelas.
type Directory struct {
	repo repository.SchoolRepository
	now  func() time.Time
}

// NewDirectory construye el servicio.
func NewDirectory(repo repository.SchoolRepository) *Directory {
	return &Directory{repo: repo, now: time.Now}
}

// Register crea o actualiza una escuela; conserva la fecha de alta original.
func (d *Directory) Register(ctx context.Context, id string, in dto.RegisterSchoolRequest) (*entity.School, error) {
	id = strings.TrimSpace(id)
	name := strings.TrimSpace(in.Name)
	if id == "" || name == "" {
		return nil, domain.ErrInvalidInput
	}
	now := d.now()
	s := &entity.School{
		ID:                id,
		Name:              name,
		PurchasingGroupID: strings.TrimSpace(in.PurchasingGroupID),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	prev, err := d.repo.GetByID(ctx, id)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "obtener escuela", Err: err}
	}
	if prev != nil {
		s.CreatedAt = prev.CreatedAt
	}
	if err := d.repo.Save(ctx, s); err != nil {
		return nil, &domain.PersistenceError{Op: "guardar escuela", Err: err}
	}
	return s, nil
}

// Get devuelve la escuela o domain.ErrNotFound.
func (d *Directory) Get(ctx context.Context, id string) (*entity.School, error) {
	s, err := d.repo.GetByID(ctx, id)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "obtener escuela", Err: err}
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

// ToResponse convierte la escuela al DTO.
func ToResponse(s *entity.School) dto.SchoolResponse {
	return dto.SchoolResponse{ID: s.ID, Name: s.Name, PurchasingGroupID: s.PurchasingGroupID}
}
