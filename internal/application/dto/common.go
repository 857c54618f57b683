package dto

// ErrorResponse cuerpo de error HTTP.
// Available acompaña los rechazos por stock o saldo para que el usuario corrija sin otra consulta.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Available string `json:"available,omitempty"`
}
