package entity

// Pagination metadatos de página que devuelve la API remota en los listados.
type Pagination struct {
	Page         int
	PerPage      int
	TotalPages   int
	TotalEntries int
}

// InvoicePage una página de facturas.
type InvoicePage struct {
	Invoices   []Invoice
	Pagination Pagination
}
