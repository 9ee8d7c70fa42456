package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/invoice-gateway/internal/application/dto"
	"github.com/jhoicas/invoice-gateway/internal/domain"
	"github.com/jhoicas/invoice-gateway/pkg/logger"
)

// writeError traduce los errores de dominio a código HTTP + dto.ErrorResponse.
// Los 401/403 de la API remota son un problema de configuración del gateway
// (token X-SESSION), no del usuario; por eso salen como 502.
func writeError(c *fiber.Ctx, log *logger.Logger, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "factura o recurso no encontrado"})
	case errors.Is(err, domain.ErrInvoiceLocked), errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVOICE_LOCKED", Message: err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		log.Error().Err(err).Msg("la API de facturación rechazó las credenciales")
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "UPSTREAM_AUTH", Message: "credenciales de la API de facturación inválidas"})
	case errors.Is(err, context.DeadlineExceeded):
		return c.Status(fiber.StatusGatewayTimeout).JSON(dto.ErrorResponse{Code: "UPSTREAM_TIMEOUT", Message: "la API de facturación no respondió a tiempo"})
	case errors.Is(err, domain.ErrUpstream):
		log.Warn().Err(err).Msg("error de la API de facturación")
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "UPSTREAM", Message: "error en la API de facturación"})
	default:
		log.Error().Err(err).Str("path", c.Path()).Msg("error interno")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
	}
}
