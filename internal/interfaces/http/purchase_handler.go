package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	appledger "github.com/jpinedac/comercio-api/internal/application/ledger"
	"github.com/jpinedac/comercio-api/internal/application/dto"
	"github.com/jpinedac/comercio-api/internal/domain"
	"github.com/jpinedac/comercio-api/pkg/logger"
)

// PurchaseHandler maneja recepción, anulación y edición de compras (protegido).
type PurchaseHandler struct {
	receiveUC *appledger.ReceivePurchaseUseCase
	annulUC   *appledger.AnnulPurchaseUseCase
	editUC    *appledger.EditPurchaseLineUseCase
	log       *logger.Logger
}

// NewPurchaseHandler construye el handler de compras.
func NewPurchaseHandler(
	receiveUC *appledger.ReceivePurchaseUseCase,
	annulUC *appledger.AnnulPurchaseUseCase,
	editUC *appledger.EditPurchaseLineUseCase,
	log *logger.Logger,
) *PurchaseHandler {
	return &PurchaseHandler{receiveUC: receiveUC, annulUC: annulUC, editUC: editUC, log: log}
}

// Receive registra una compra: un lote nuevo por línea, movimiento ENTRADA/COMPRA
// por lote y salida de caja si el pago fue inmediato.
func (h *PurchaseHandler) Receive(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.ReceivePurchaseRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.receiveUC.ReceivePurchase(c.Context(), userID, in)
	if err != nil {
		return respondDomainError(c, err)
	}
	h.log.Info().Str("purchase_id", out.ID).Str("user_id", userID).Int("lots", len(out.LotIDs)).Msg("compra recibida")
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Annul anula una compra completa. Solo procede si ningún lote de la compra
// tiene unidades consumidas; en caso contrario responde 409 sin tocar nada.
func (h *PurchaseHandler) Annul(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	purchaseID := c.Params("id")
	if purchaseID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id de compra requerido"})
	}
	if err := h.annulUC.AnnulPurchase(c.Context(), purchaseID, userID); err != nil {
		if errors.Is(err, domain.ErrConsistencyViolation) {
			h.log.Error().Err(err).Str("purchase_id", purchaseID).Msg("anulación de compra: violación de consistencia del ledger")
		}
		return respondDomainError(c, err)
	}
	h.log.Info().Str("purchase_id", purchaseID).Str("user_id", userID).Msg("compra anulada")
	return c.JSON(fiber.Map{"message": "compra anulada"})
}

// EditLine corrige cantidad/costo de una línea ya recibida. El lote se reescribe
// y el ajuste queda en el log como par de movimientos AJUSTE_COMPRA_EDITADA.
func (h *PurchaseHandler) EditLine(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	purchaseID := c.Params("id")
	if purchaseID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id de compra requerido"})
	}
	var in dto.EditPurchaseLineRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.editUC.EditPurchaseLine(c.Context(), purchaseID, userID, in); err != nil {
		if errors.Is(err, domain.ErrConsistencyViolation) {
			h.log.Error().Err(err).Str("purchase_id", purchaseID).Msg("edición de compra: violación de consistencia del ledger")
		}
		return respondDomainError(c, err)
	}
	h.log.Info().Str("purchase_id", purchaseID).Str("lot_id", in.LotID).Str("user_id", userID).Msg("línea de compra editada")
	return c.JSON(fiber.Map{"message": "línea de compra editada"})
}
