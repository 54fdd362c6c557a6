package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	appledger "github.com/jpinedac/comercio-api/internal/application/ledger"
	"github.com/jpinedac/comercio-api/internal/application/dto"
	"github.com/jpinedac/comercio-api/internal/domain"
	"github.com/jpinedac/comercio-api/pkg/logger"
)

// SaleHandler maneja creación y anulación de ventas (protegido).
type SaleHandler struct {
	createUC *appledger.CreateSaleUseCase
	annulUC  *appledger.AnnulSaleUseCase
	log      *logger.Logger
}

// NewSaleHandler construye el handler de ventas.
func NewSaleHandler(createUC *appledger.CreateSaleUseCase, annulUC *appledger.AnnulSaleUseCase, log *logger.Logger) *SaleHandler {
	return &SaleHandler{createUC: createUC, annulUC: annulUC, log: log}
}

// Create registra una venta: asignación FIFO, descuento de lotes, movimiento de
// caja y cabecera, todo en una transacción.
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.createUC.CreateSale(c.Context(), userID, in)
	if err != nil {
		if errors.Is(err, domain.ErrConsistencyViolation) {
			h.log.Error().Err(err).Str("user_id", userID).Msg("venta: violación de consistencia del ledger")
		}
		return respondDomainError(c, err)
	}
	h.log.Info().Str("sale_id", out.ID).Str("user_id", userID).Str("total", out.Total.String()).Msg("venta registrada")
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Annul anula una venta: movimientos compensatorios, restauración de lotes y
// salida de caja. La venta queda ANULADA, nada se borra.
func (h *SaleHandler) Annul(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	saleID := c.Params("id")
	if saleID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id de venta requerido"})
	}
	if err := h.annulUC.AnnulSale(c.Context(), saleID, userID); err != nil {
		if errors.Is(err, domain.ErrConsistencyViolation) {
			h.log.Error().Err(err).Str("sale_id", saleID).Msg("anulación de venta: violación de consistencia del ledger")
		}
		return respondDomainError(c, err)
	}
	h.log.Info().Str("sale_id", saleID).Str("user_id", userID).Msg("venta anulada")
	return c.JSON(fiber.Map{"message": "venta anulada"})
}
