package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"github.com/jhoicas/invoice-gateway/pkg/logger"
)

// httpObserver contrato mínimo para registrar métricas de cada petición.
// Lo implementa *metrics.Metrics.
type httpObserver interface {
	ObserveHTTP(method, route string, status int, elapsed time.Duration)
}

// RequestID asigna X-Request-ID (uuid) si el cliente no lo envía.
func RequestID() fiber.Handler {
	return requestid.New(requestid.Config{
		Header:    fiber.HeaderXRequestID,
		Generator: uuid.NewString,
	})
}

// RequestLogger registra cada petición con zerolog y, si observer no es nil, sus métricas.
// Las rutas se etiquetan con la plantilla (/api/invoices/:id), no con la URL real.
func RequestLogger(log *logger.Logger, observer httpObserver) fiber.Handler {
	if log == nil {
		log = logger.Nop()
	}
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		elapsed := time.Since(start)

		status := c.Response().StatusCode()
		if err != nil {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := c.Route().Path
		if observer != nil {
			observer.ObserveHTTP(c.Method(), route, status, elapsed)
		}

		ev := log.Info()
		switch {
		case status >= 500:
			ev = log.Error().Err(err)
		case status >= 400:
			ev = log.Warn()
		}
		ev.Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Str("route", route).
			Int("status", status).
			Dur("elapsed", elapsed).
			Str("user_id", GetUserID(c)).
			Msg("http")
		return err
	}
}
