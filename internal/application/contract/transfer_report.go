package contract

import (
	"context"
	"errors"
	"time"

	"github.com/jhoicas/gestion-escolar/internal/domain"
	"github.com/jhoicas/gestion-escolar/internal/domain/entity"
	"github.com/jhoicas/gestion-escolar/internal/domain/repository"
)

// TransferReportGenerator produce el documento (PDF) del reporte de traslados.
type TransferReportGenerator interface {
	GenerateTransferReport(ctx context.Context, report *TransferReport) ([]byte, error)
}

// TransferReportLine traslado con el producto del ítem resuelto.
type TransferReportLine struct {
	Record      *entity.TransferRecord
	Description string
	UnitMeasure string
	Outgoing    bool // true si la escuela del reporte es el origen
}

// TransferReport traslados enviados y recibidos por una escuela.
type TransferReport struct {
	School        *entity.School
	GeneratedAt   time.Time
	Lines         []TransferReportLine
	SentCount     int
	ReceivedCount int
}

// TransferReporter arma el reporte de auditoría de traslados de una escuela.
type TransferReporter struct {
	coordinator *TransferCoordinator
	schools     repository.SchoolRepository
	generator   TransferReportGenerator
	now         func() time.Time
}

// NewTransferReporter construye el servicio de reportes.
func NewTransferReporter(coordinator *TransferCoordinator, schools repository.SchoolRepository, generator TransferReportGenerator) *TransferReporter {
	return &TransferReporter{coordinator: coordinator, schools: schools, generator: generator, now: time.Now}
}

// Build reúne los datos del reporte sin generar el documento.
func (r *TransferReporter) Build(ctx context.Context, schoolID string) (*TransferReport, error) {
	school, err := r.schools.GetByID(ctx, schoolID)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "obtener escuela", Err: err}
	}
	if school == nil {
		return nil, domain.ErrNotFound
	}
	records, err := r.coordinator.ListTransfersBySchool(ctx, schoolID)
	if err != nil {
		return nil, err
	}

	report := &TransferReport{School: school, GeneratedAt: r.now(), Lines: make([]TransferReportLine, 0, len(records))}
	items := make(map[string]*entity.ContractItem)
	for _, rec := range records {
		line := TransferReportLine{Record: rec, Description: rec.ContractItemID, Outgoing: rec.FromSchoolID == schoolID}
		it, ok := items[rec.ContractItemID]
		if !ok {
			it, err = r.coordinator.balances.GetItem(ctx, rec.ContractItemID)
			if err != nil && !errors.Is(err, domain.ErrNotFound) {
				return nil, err
			}
			items[rec.ContractItemID] = it
		}
		if it != nil {
			line.Description, line.UnitMeasure = it.Description, it.UnitMeasure
		}
		if line.Outgoing {
			report.SentCount++
		} else {
			report.ReceivedCount++
		}
		report.Lines = append(report.Lines, line)
	}
	return report, nil
}

// Render genera el documento del reporte.
func (r *TransferReporter) Render(ctx context.Context, schoolID string) ([]byte, error) {
	report, err := r.Build(ctx, schoolID)
	if err != nil {
		return nil, err
	}
	return r.generator.GenerateTransferReport(ctx, report)
}
