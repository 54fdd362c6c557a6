package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	appledger "github.com/jpinedac/comercio-api/internal/application/ledger"
	"github.com/jpinedac/comercio-api/internal/application/dto"
	"github.com/jpinedac/comercio-api/pkg/logger"
)

// InventoryHandler expone el ledger en modo lectura: lotes, movimientos, saldo
// de caja, verificación de consistencia y kardex PDF (protegido).
type InventoryHandler struct {
	queryUC  *appledger.QueryUseCase
	kardexUC *appledger.KardexUseCase
	log      *logger.Logger
}

// NewInventoryHandler construye el handler de inventario.
func NewInventoryHandler(queryUC *appledger.QueryUseCase, kardexUC *appledger.KardexUseCase, log *logger.Logger) *InventoryHandler {
	return &InventoryHandler{queryUC: queryUC, kardexUC: kardexUC, log: log}
}

// ListLots lista lotes; ?product_id= filtra por producto.
func (h *InventoryHandler) ListLots(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	lots, err := h.queryUC.ListLots(c.Context(), c.Query("product_id"), page)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(lots), "lots": lots})
}

// ListMovements lista movimientos de un producto; product_id es obligatorio,
// from/to (RFC3339) opcionales.
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	filter := dto.MovementFilter{ProductID: c.Query("product_id")}
	if err := c.QueryParser(&filter.PageRequest); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	var err error
	if filter.From, err = parseTimeQuery(c, "from"); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from inválido, usar RFC3339"})
	}
	if filter.To, err = parseTimeQuery(c, "to"); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to inválido, usar RFC3339"})
	}
	movements, err := h.queryUC.ListMovements(c.Context(), filter)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(movements), "movements": movements})
}

// CashBalance devuelve el saldo de caja; ?as_of= (RFC3339) opcional.
func (h *InventoryHandler) CashBalance(c *fiber.Ctx) error {
	asOf, err := parseTimeQuery(c, "as_of")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "as_of inválido, usar RFC3339"})
	}
	out, err := h.queryUC.CashBalance(c.Context(), asOf)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(out)
}

// CheckLotConsistency compara el remaining almacenado de un lote contra la
// proyección de sus movimientos.
func (h *InventoryHandler) CheckLotConsistency(c *fiber.Ctx) error {
	lotID := c.Params("id")
	if lotID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id de lote requerido"})
	}
	out, err := h.queryUC.CheckLotConsistency(c.Context(), lotID)
	if err != nil {
		return respondDomainError(c, err)
	}
	if !out.Consistent {
		h.log.Error().Str("lot_id", lotID).
			Str("stored", out.Stored.String()).
			Str("projected", out.Projected.String()).
			Msg("lote inconsistente: remaining no coincide con la proyección de movimientos")
	}
	return c.JSON(out)
}

// KardexPDF descarga el kardex de un producto como PDF; from/to opcionales.
func (h *InventoryHandler) KardexPDF(c *fiber.Ctx) error {
	productID := c.Params("id")
	if productID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id de producto requerido"})
	}
	from, err := parseTimeQuery(c, "from")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from inválido, usar RFC3339"})
	}
	to, err := parseTimeQuery(c, "to")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to inválido, usar RFC3339"})
	}
	pdfBytes, filename, err := h.kardexUC.DownloadKardexPDF(c.Context(), productID, from, to)
	if err != nil {
		return respondDomainError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdfBytes)
}

// parseTimeQuery lee un query param RFC3339 opcional.
func parseTimeQuery(c *fiber.Ctx, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
