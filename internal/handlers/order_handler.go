package handlers

import (
	"net/http"
	"strconv"

	"restaurant_pos/internal/services"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	orderService services.OrderService
}

func NewOrderHandler(orderService services.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

type OpenTableRequest struct {
	TableNumber  int    `json:"tableNumber" binding:"required,min=1"`
	CustomerName string `json:"customerName" binding:"max=100"`
}

type CloseOrderRequest struct {
	OrderID uint `json:"orderId" binding:"required"`
}

type AddItemRequest struct {
	OrderID   uint   `json:"orderId" binding:"required"`
	ProductID uint   `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
	Note      string `json:"note" binding:"max=255"`
}

func (h *OrderHandler) ListOpenOrders(c *gin.Context) {
	orders, err := h.orderService.ListOpenOrders(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) OpenTable(c *gin.Context) {
	var req OpenTableRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.OpenTable(c.Request.Context(), req.TableNumber, req.CustomerName)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) GetOpenOrderByTable(c *gin.Context) {
	tableNumber, err := strconv.Atoi(c.Param("num"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid table number"})
		return
	}

	order, err := h.orderService.GetOpenOrderByTable(c.Request.Context(), tableNumber)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) CloseOrder(c *gin.Context) {
	var req CloseOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.CloseOrder(c.Request.Context(), req.OrderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// ReleaseTable cancels the order behind DELETE /orders/:id.
func (h *OrderHandler) ReleaseTable(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.orderService.ReleaseTable(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	success(c)
}

func (h *OrderHandler) AddItem(c *gin.Context) {
	var req AddItemRequest
	if !bindJSON(c, &req) {
		return
	}

	line, err := h.orderService.AddItem(c.Request.Context(), req.OrderID, req.ProductID, req.Quantity, req.Note)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, line)
}

func (h *OrderHandler) RemoveItem(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.orderService.RemoveItem(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	success(c)
}
