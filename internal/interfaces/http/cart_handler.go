package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/malexa-pos/internal/application/dto"
	"github.com/jhoicas/malexa-pos/internal/application/sales"
	"github.com/jhoicas/malexa-pos/internal/domain/entity"
)

// CartHandler carrito de la sesión y checkout.
type CartHandler struct {
	carts    *sales.CartRegistry
	checkout *sales.CheckoutUseCase
}

// NewCartHandler construye el handler.
func NewCartHandler(carts *sales.CartRegistry, checkout *sales.CheckoutUseCase) *CartHandler {
	return &CartHandler{carts: carts, checkout: checkout}
}

func (h *CartHandler) cart(c *fiber.Ctx) *sales.Cart {
	return h.carts.Get(GetSessionID(c))
}

// Get godoc
// @Summary      Ver carrito
// @Tags         cart
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.CartResponse
// @Router       /api/cart [get]
func (h *CartHandler) Get(c *fiber.Ctx) error {
	return c.JSON(toCartResponse(h.cart(c)))
}

// AddItem godoc
// @Summary      Agregar al carrito
// @Description  Congela el precio del pack vigente. Líneas del mismo producto, tipo y precio se suman.
// @Tags         cart
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AddCartItemRequest  true  "Producto, tipo de precio y packs"
// @Success      201   {object}  dto.CartResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/cart/items [post]
func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	var in dto.AddCartItemRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	cart := h.cart(c)
	pricingType := entity.PricingType(strings.ToLower(strings.TrimSpace(in.PricingType)))
	if _, err := cart.AddItem(in.ProductID, pricingType, in.Quantity); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toCartResponse(cart))
}

// ChangeQuantity godoc
// @Summary      Cambiar cantidad de una línea
// @Description  Suma delta packs; la línea nunca baja de 1.
// @Tags         cart
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID de la línea"
// @Param        body  body  dto.ChangeQuantityRequest  true  "Delta de packs"
// @Success      200   {object}  dto.CartResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/cart/items/{id} [patch]
func (h *CartHandler) ChangeQuantity(c *fiber.Ctx) error {
	var in dto.ChangeQuantityRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	cart := h.cart(c)
	if _, err := cart.ChangeQuantity(c.Params("id"), in.Delta); err != nil {
		return respondError(c, err)
	}
	return c.JSON(toCartResponse(cart))
}

// RemoveItem godoc
// @Summary      Quitar una línea
// @Tags         cart
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la línea"
// @Success      200  {object}  dto.CartResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/cart/items/{id} [delete]
func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	cart := h.cart(c)
	if err := cart.RemoveItem(c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(toCartResponse(cart))
}

// Clear godoc
// @Summary      Vaciar carrito
// @Tags         cart
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.CartResponse
// @Router       /api/cart [delete]
func (h *CartHandler) Clear(c *fiber.Ctx) error {
	cart := h.cart(c)
	cart.Clear()
	return c.JSON(toCartResponse(cart))
}

// Checkout godoc
// @Summary      Registrar venta
// @Description  Valida el stock de todo el carrito, descuenta y registra la venta de forma atómica.
// @Description  Si falla no se modifica nada y el carrito queda como estaba.
// @Tags         cart
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CheckoutRequest  true  "Medio de cobro"
// @Success      201   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  StockErrorResponse
// @Router       /api/cart/checkout [post]
func (h *CartHandler) Checkout(c *fiber.Ctx) error {
	var in dto.CheckoutRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	sale, err := h.checkout.Checkout(c.UserContext(), h.cart(c), GetActor(c), entity.PaymentMethod(in.PaymentMethod))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toSaleResponse(sale))
}
