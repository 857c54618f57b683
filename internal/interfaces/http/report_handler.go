package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/gestion-escolar/internal/application/contract"
	"github.com/jhoicas/gestion-escolar/pkg/logger"
)

// ReportHandler expone los reportes descargables.
type ReportHandler struct {
	reports *contract.TransferReporter
	log     *logger.Logger
}

// NewReportHandler construye el handler.
func NewReportHandler(reports *contract.TransferReporter, log *logger.Logger) *ReportHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &ReportHandler{reports: reports, log: log.Component("http_report")}
}

// TransferReport godoc
// @Summary      Reporte PDF de traslados de la escuela
// @Tags         schools
// @Security     Bearer
// @Produce      application/pdf
// @Param        schoolId  path  string  true  "ID de la escuela (debe coincidir con el token)"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/schools/{schoolId}/transfers/report [get]
func (h *ReportHandler) TransferReport(c *fiber.Ctx) error {
	schoolID := c.Params("schoolId")
	out, err := h.reports.Render(c.Context(), schoolID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="traslados-`+schoolID+`.pdf"`)
	return c.Send(out)
}
