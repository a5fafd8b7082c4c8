package dto

// maxPageSize tope de página para listados (movimientos, órdenes, auditoría).
const maxPageSize = 100

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit" validate:"min=1,max=100"`
	Offset int `query:"offset" validate:"min=0"`
}

// DefaultPage normaliza la página: aplica el default si Limit es cero o
// negativo y recorta pedidos por encima del tope.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Limit > maxPageSize {
		p.Limit = maxPageSize
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total,omitempty"`
}

// NewPage arma los metadatos de página de una respuesta paginada.
func NewPage(p PageRequest, total int) PageResponse {
	return PageResponse{Limit: p.Limit, Offset: p.Offset, Total: total}
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
