package dto

// PageRequest paginación para listados (page empieza en 1).
type PageRequest struct {
	Page    int `query:"page"`
	PerPage int `query:"per_page"`
}

// DefaultPage aplica valores por defecto si Page/PerPage son cero o negativos.
func (p *PageRequest) DefaultPage() {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PerPage <= 0 {
		p.PerPage = 100
	}
	if p.PerPage > 100 {
		p.PerPage = 100
	}
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Page         int `json:"page"`
	PerPage      int `json:"per_page"`
	TotalPages   int `json:"total_pages,omitempty"`
	TotalEntries int `json:"total_entries,omitempty"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
