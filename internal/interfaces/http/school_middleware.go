package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/gestion-escolar/internal/application/dto"
	"github.com/jhoicas/gestion-escolar/pkg/jwt"
)

// RequireSchool exige que el token traiga school_id. Debe usarse DESPUÉS de AuthMiddleware.
// Las operaciones de stock y saldo siempre actúan en nombre de una escuela.
//
// Comportamiento:
//   - 401 Unauthorized → token sin school_id.
//   - 403 Forbidden    → la ruta nombra otra escuela en el parámetro param.
func RequireSchool(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		schoolID := GetSchoolID(c)
		if schoolID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:    "MISSING_SCHOOL",
				Message: "school_id no encontrado en el token",
			})
		}
		if param != "" {
			if target := c.Params(param); target != "" && target != schoolID {
				return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
					Code:    "FORBIDDEN",
					Message: "la escuela '" + target + "' no corresponde al token",
				})
			}
		}
		return c.Next()
	}
}

// RequireSchoolOrAdmin deja pasar al rol admin para cualquier escuela; el resto se comporta como
// RequireSchool(param). Protege los datos del directorio que deciden la elegibilidad de traslados.
func RequireSchoolOrAdmin(param string) fiber.Handler {
	same := RequireSchool(param)
	return func(c *fiber.Ctx) error {
		if GetRole(c) == jwt.RoleAdmin {
			return c.Next()
		}
		return same(c)
	}
}
