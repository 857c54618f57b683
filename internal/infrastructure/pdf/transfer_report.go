// Package pdf genera el reporte de auditoría de traslados de saldo en PDF.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Escuela + grupo de compras │ Fecha de emisión      │
//	│  RESUMEN: enviados / recibidos                              │
//	│  TABLA: Fecha | Producto | Cant. | Origen → Destino | Actor │
//	│  JUSTIFICACIÓN bajo cada fila                               │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/gestion-escolar/internal/application/contract"
)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// MarotoReportGenerator implementa contract.TransferReportGenerator con Maroto v2.
type MarotoReportGenerator struct{}

var _ contract.TransferReportGenerator = (*MarotoReportGenerator)(nil)

// NewMarotoReportGenerator construye el generador.
func NewMarotoReportGenerator() *MarotoReportGenerator { return &MarotoReportGenerator{} }

// GenerateTransferReport genera el PDF y devuelve sus bytes.
func (g *MarotoReportGenerator) GenerateTransferReport(_ context.Context, report *contract.TransferReport) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Traslados de saldo", true).
		WithAuthor(report.School.Name, true).
		Build()

	m := maroto.New(cfg)
	m.AddRows(headerRow(report))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(summaryRow(report))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(tableHeaderRow())
	if len(report.Lines) == 0 {
		m.AddRows(row.New(8).Add(col.New(12).Add(
			text.New("Sin traslados registrados.", props.Text{Size: 8, Top: 2, Color: colorGray, Align: align.Center}),
		)))
	}
	for _, l := range report.Lines {
		m.AddRows(transferRows(l)...)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar reporte: %w", err)
	}
	return doc.GetBytes(), nil
}

func headerRow(report *contract.TransferReport) core.Row {
	group := nonEmpty(report.School.PurchasingGroupID, "sin grupo")
	return row.New(16).Add(
		col.New(8).Add(
			text.New(report.School.Name, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
			text.New("Escuela "+report.School.ID+"  |  Grupo de compras: "+group, props.Text{Size: 8, Top: 9, Color: colorGray}),
		),
		col.New(4).Add(
			text.New("REPORTE DE TRASLADOS", props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1}),
			text.New("Emitido: "+report.GeneratedAt.Format("02/01/2006 15:04"), props.Text{Size: 8, Align: align.Right, Top: 9, Color: colorGray}),
		),
	)
}

func summaryRow(report *contract.TransferReport) core.Row {
	return row.New(8).Add(
		col.New(6).Add(text.New(fmt.Sprintf("Enviados: %d", report.SentCount), props.Text{Style: fontstyle.Bold, Size: 9, Top: 2})),
		col.New(6).Add(text.New(fmt.Sprintf("Recibidos: %d", report.ReceivedCount), props.Text{Style: fontstyle.Bold, Size: 9, Top: 2, Align: align.Right})),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Fecha", 2, align.Left),
		h("Producto", 4, align.Left),
		h("Cant.", 1, align.Right),
		h("Origen → Destino", 3, align.Left),
		h("Actor", 2, align.Left),
	)
}

// transferRows: fila principal y la justificación debajo.
func transferRows(l contract.TransferReportLine) []core.Row {
	rec := l.Record
	product := l.Description
	if l.UnitMeasure != "" {
		product += " (" + l.UnitMeasure + ")"
	}
	dir := rec.FromSchoolID + " → " + rec.ToSchoolID
	if l.Outgoing {
		dir = "→ " + rec.ToSchoolID
	}
	cell := func(s string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(s, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1}))
	}
	return []core.Row{
		row.New(6).Add(
			cell(rec.CreatedAt.Format("02/01/2006"), 2, align.Left),
			cell(product, 4, align.Left),
			cell(rec.Quantity.String(), 1, align.Right),
			cell(dir, 3, align.Left),
			cell(nonEmpty(rec.Actor, "-"), 2, align.Left),
		),
		row.New(5).Add(col.New(12).Add(
			text.New(rec.Justification, props.Text{Size: 7, Color: colorGray, Left: 3}),
		)),
	}
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
