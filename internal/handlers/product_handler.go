package handlers

import (
	"net/http"
	"strings"

	"restaurant_pos/internal/repository"
	"restaurant_pos/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type ProductHandler struct {
	catalogService services.CatalogService
}

func NewProductHandler(catalogService services.CatalogService) *ProductHandler {
	return &ProductHandler{catalogService: catalogService}
}

// ProductRequest is shared by create and update. Prices accept either JSON
// numbers or strings.
type ProductRequest struct {
	Name       string          `json:"name" binding:"required,max=120"`
	Price      decimal.Decimal `json:"price"`
	CostPrice  decimal.Decimal `json:"costPrice"`
	Stock      int             `json:"stock"`
	TrackStock *bool           `json:"trackStock"`
	Category   string          `json:"category" binding:"max=60"`
	Supplier   string          `json:"supplier" binding:"max=120"`
	Active     *bool           `json:"active"`
}

func (r ProductRequest) input() services.ProductInput {
	return services.ProductInput{
		Name:       r.Name,
		Price:      r.Price,
		CostPrice:  r.CostPrice,
		Stock:      r.Stock,
		TrackStock: r.TrackStock,
		Category:   r.Category,
		Supplier:   r.Supplier,
		Active:     r.Active,
	}
}

func (h *ProductHandler) ListProducts(c *gin.Context) {
	filter := repository.ProductFilter{
		ActiveOnly: strings.EqualFold(c.Query("active"), "true"),
		Category:   strings.TrimSpace(c.Query("category")),
	}

	products, err := h.catalogService.ListProducts(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	product, err := h.catalogService.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.catalogService.CreateProduct(c.Request.Context(), req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req ProductRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.catalogService.UpdateProduct(c.Request.Context(), id, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.catalogService.DeleteProduct(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	success(c)
}

func (h *ProductHandler) ListStockMovements(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if _, err := h.catalogService.GetProduct(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	movements, err := h.catalogService.ListStockMovements(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, movements)
}
