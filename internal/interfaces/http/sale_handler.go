package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/malexa-pos/internal/application/dto"
	"github.com/jhoicas/malexa-pos/internal/application/sales"
)

// SaleHandler consultas del libro de ventas.
type SaleHandler struct {
	uc *sales.LedgerUseCase
}

// NewSaleHandler construye el handler.
func NewSaleHandler(uc *sales.LedgerUseCase) *SaleHandler {
	return &SaleHandler{uc: uc}
}

// List godoc
// @Summary      Listar ventas
// @Description  El admin ve todas; el personal solo las que registró. Más recientes primero.
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        date  query  string  false  "Día local YYYY-MM-DD"
// @Success      200   {object}  dto.SaleListResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/sales [get]
func (h *SaleHandler) List(c *fiber.Ctx) error {
	date := c.Query("date")
	summary, err := h.uc.List(c.UserContext(), GetActor(c), date)
	if err != nil {
		return respondError(c, err)
	}
	items := make([]dto.SaleResponse, 0, len(summary.Sales))
	for _, s := range summary.Sales {
		items = append(items, toSaleResponse(s))
	}
	return c.JSON(dto.SaleListResponse{
		Date:  date,
		Count: len(items),
		Total: summary.Total,
		Items: items,
	})
}

// GetByID godoc
// @Summary      Obtener venta
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [get]
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	id, ok := paramInt64(c, "id")
	if !ok {
		return invalidID(c)
	}
	sale, err := h.uc.GetByID(c.UserContext(), GetActor(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toSaleResponse(sale))
}

// Receipt godoc
// @Summary      Comprobante PDF de la venta
// @Tags         sales
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  int  true  "ID de la venta"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/receipt [get]
func (h *SaleHandler) Receipt(c *fiber.Ctx) error {
	id, ok := paramInt64(c, "id")
	if !ok {
		return invalidID(c)
	}
	pdf, err := h.uc.Receipt(c.UserContext(), GetActor(c), id)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("inline; filename=venta-%d.pdf", id))
	return c.Send(pdf)
}

// Export godoc
// @Summary      Exportar ventas a XML
// @Tags         sales
// @Security     Bearer
// @Produce      application/xml
// @Param        date  query  string  false  "Día local YYYY-MM-DD"
// @Success      200   {file}    binary
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/sales/export.xml [get]
func (h *SaleHandler) Export(c *fiber.Ctx) error {
	date := c.Query("date")
	out, err := h.uc.Export(c.UserContext(), GetActor(c), date)
	if err != nil {
		return respondError(c, err)
	}
	name := "ventas.xml"
	if date != "" {
		name = "ventas-" + date + ".xml"
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationXMLCharsetUTF8)
	c.Set(fiber.HeaderContentDisposition, "attachment; filename="+name)
	return c.Send(out)
}
