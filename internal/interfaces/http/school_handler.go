package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/gestion-escolar/internal/application/dto"
	"github.com/jhoicas/gestion-escolar/internal/application/school"
	"github.com/jhoicas/gestion-escolar/pkg/logger"
)

// SchoolHandler expone el directorio de escuelas.
type SchoolHandler struct {
	dir *school.Directory
	log *logger.Logger
}

// NewSchoolHandler construye el handler.
func NewSchoolHandler(dir *school.Directory, log *logger.Logger) *SchoolHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &SchoolHandler{dir: dir, log: log.Component("http_school")}
}

// Register godoc
// @Summary      Registrar o actualizar una escuela y su grupo de compras
// @Tags         schools
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        schoolId  path  string                     true  "ID de la escuela"
// @Param        body      body  dto.RegisterSchoolRequest  true  "nombre y grupo"
// @Success      200  {object}  dto.SchoolResponse
// @Router       /api/schools/{schoolId} [put]
func (h *SchoolHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterSchoolRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	s, err := h.dir.Register(c.Context(), c.Params("schoolId"), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(school.ToResponse(s))
}

// Get godoc
// @Summary      Obtener una escuela
// @Tags         schools
// @Security     Bearer
// @Produce      json
// @Param        schoolId  path  string  true  "ID de la escuela"
// @Success      200  {object}  dto.SchoolResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/schools/{schoolId} [get]
func (h *SchoolHandler) Get(c *fiber.Ctx) error {
	s, err := h.dir.Get(c.Context(), c.Params("schoolId"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(school.ToResponse(s))
}
