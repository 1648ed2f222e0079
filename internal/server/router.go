package server

import (
	"net/http"
	"time"

	"restaurant_pos/internal/handlers"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	API      *handlers.APIHandler
	Orders   *handlers.OrderHandler
	Products *handlers.ProductHandler
	Reports  *handlers.ReportHandler
	WhatsApp *handlers.WhatsAppHandler
	// Events serves the websocket feed on /ws. Optional.
	Events http.Handler
}

func NewRouter(h Handlers, allowedOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(cors.New(corsConfig(allowedOrigins)))

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Page not found"})
	})

	router.GET("/health", h.API.Health)

	orders := router.Group("/orders")
	{
		orders.GET("", h.Orders.ListOpenOrders)
		orders.POST("", h.Orders.OpenTable)
		orders.GET("/table/:num", h.Orders.GetOpenOrderByTable)
		orders.GET("/:id", h.Orders.GetOrder)
		orders.PUT("/close", h.Orders.CloseOrder)
		orders.DELETE("/:id", h.Orders.ReleaseTable)
	}

	lines := router.Group("/order-lines")
	{
		lines.POST("", h.Orders.AddItem)
		lines.DELETE("/:id", h.Orders.RemoveItem)
	}

	products := router.Group("/products")
	{
		products.GET("", h.Products.ListProducts)
		products.POST("", h.Products.CreateProduct)
		products.GET("/:id", h.Products.GetProduct)
		products.PUT("/:id", h.Products.UpdateProduct)
		products.DELETE("/:id", h.Products.DeleteProduct)
		products.GET("/:id/movements", h.Products.ListStockMovements)
	}

	router.GET("/reports", h.Reports.GetReport)

	if h.WhatsApp != nil {
		router.POST("/whatsapp/webhook", h.WhatsApp.HandleWebhook)
		router.POST("/alerts/low-stock", h.WhatsApp.SendLowStockDigest)
	}

	if h.Events != nil {
		router.GET("/ws", gin.WrapH(h.Events))
	}

	return router
}

func corsConfig(allowedOrigins []string) cors.Config {
	config := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	for _, origin := range allowedOrigins {
		if origin == "*" {
			config.AllowAllOrigins = true
			return config
		}
	}
	if len(allowedOrigins) == 0 {
		config.AllowAllOrigins = true
		return config
	}
	config.AllowOrigins = allowedOrigins
	return config
}
