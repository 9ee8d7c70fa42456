package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")
)

// Errores de facturación. Envuelven a los genéricos para que los handlers
// puedan decidir el código HTTP con errors.Is.
var (
	ErrNoCustomer    = fmt.Errorf("%w: no se ha seleccionado cliente", ErrInvalidInput)
	ErrInvoiceLocked = fmt.Errorf("%w: la factura está pagada o finalizada", ErrConflict)
)

// ErrUpstream la API de facturación remota no respondió o devolvió un error no clasificado.
var ErrUpstream = errors.New("error en la API de facturación")

// UpstreamError respuesta no 2xx de la API remota que no corresponde a ningún error de dominio.
// Body va recortado.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: HTTP %d: %s", ErrUpstream, e.Status, e.Body)
}

// Unwrap permite errors.Is(err, ErrUpstream).
func (e *UpstreamError) Unwrap() error { return ErrUpstream }
