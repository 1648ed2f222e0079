package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"restaurant_pos/internal/services"
	"restaurant_pos/pkg/whatsapp"

	"github.com/gin-gonic/gin"
)

// WhatsAppHandler answers staff commands sent to the gateway number and
// pushes the low-stock digest on demand.
type WhatsAppHandler struct {
	sender         services.MessageSender
	alerts         *services.StockAlertService
	orderService   services.OrderService
	catalogService services.CatalogService
	reportService  services.ReportService
	staffPhone     string
	threshold      int
	limit          int
	location       *time.Location
}

type WhatsAppOptions struct {
	StaffPhone        string
	LowStockThreshold int
	LowStockLimit     int
	Location          *time.Location
}

func NewWhatsAppHandler(
	sender services.MessageSender,
	alerts *services.StockAlertService,
	orderService services.OrderService,
	catalogService services.CatalogService,
	reportService services.ReportService,
	opts WhatsAppOptions,
) *WhatsAppHandler {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &WhatsAppHandler{
		sender:         sender,
		alerts:         alerts,
		orderService:   orderService,
		catalogService: catalogService,
		reportService:  reportService,
		staffPhone:     whatsapp.NormalizePhone(opts.StaffPhone),
		threshold:      opts.LowStockThreshold,
		limit:          opts.LowStockLimit,
		location:       opts.Location,
	}
}

type WebhookRequest struct {
	SenderID  string `json:"sender_id"`
	ChatID    string `json:"chat_id"`
	From      string `json:"from"`
	Timestamp string `json:"timestamp"`
	Pushname  string `json:"pushname"`
	Message   struct {
		Text string `json:"text"`
		ID   string `json:"id"`
	} `json:"message"`
}

func (h *WhatsAppHandler) HandleWebhook(c *gin.Context) {
	var req WebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	phoneNumber := req.From
	if phoneNumber == "" {
		phoneNumber = req.SenderID
	}
	phoneNumber = whatsapp.NormalizePhone(phoneNumber)

	// Only the staff phone may query the floor.
	if h.sender == nil || h.staffPhone == "" || phoneNumber != h.staffPhone {
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	response := h.processCommand(c.Request.Context(), req.Message.Text)
	if _, err := h.sender.SendTextMessage(c.Request.Context(), phoneNumber, response); err != nil {
		log.Printf("Failed to reply to %s: %v", phoneNumber, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// SendLowStockDigest sends the current low-stock list to the staff phone.
func (h *WhatsAppHandler) SendLowStockDigest(c *gin.Context) {
	products, err := h.catalogService.ListLowStock(c.Request.Context(), h.threshold, h.limit)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.alerts.SendDigest(c.Request.Context(), products); err != nil {
		if errors.Is(err, services.ErrAlertsDisabled) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		log.Printf("Failed to send low stock digest: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to send message"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "products": len(products)})
}

func (h *WhatsAppHandler) processCommand(ctx context.Context, message string) string {
	parts := strings.Fields(strings.TrimSpace(message))
	if len(parts) == 0 {
		return "❌ Empty message. Type /help for available commands."
	}

	command := strings.ToLower(parts[0])
	args := parts[1:]
	switch command {
	case "/help":
		return h.getHelpMessage()
	case "/tables":
		return h.getOpenTables(ctx)
	case "/stock":
		return h.getLowStock(ctx)
	case "/report":
		return h.getReport(ctx, args)
	default:
		return "❓ Unknown command. Type /help for available commands."
	}
}

func (h *WhatsAppHandler) getHelpMessage() string {
	return "🍽️ *Commands*\n" +
		"/tables - open tables and their totals\n" +
		"/stock - products running low\n" +
		"/report [YYYY-MM-DD] - sales summary for a day (today by default)"
}

func (h *WhatsAppHandler) getOpenTables(ctx context.Context) string {
	orders, err := h.orderService.ListOpenOrders(ctx)
	if err != nil {
		return "❌ Failed to get open tables: " + err.Error()
	}
	if len(orders) == 0 {
		return "🪑 No open tables."
	}

	var b strings.Builder
	b.WriteString("🪑 *Open tables*\n")
	for _, order := range orders {
		fmt.Fprintf(&b, "Table %d - %s - %d items - $%s\n",
			order.TableNumber, order.CustomerName, len(order.Lines), order.Total.StringFixed(2))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (h *WhatsAppHandler) getLowStock(ctx context.Context) string {
	products, err := h.catalogService.ListLowStock(ctx, h.threshold, h.limit)
	if err != nil {
		return "❌ Failed to get stock: " + err.Error()
	}
	return services.LowStockDigest(products)
}

func (h *WhatsAppHandler) getReport(ctx context.Context, args []string) string {
	var query services.ReportQuery
	if len(args) > 0 {
		day, err := time.ParseInLocation("2006-01-02", args[0], h.location)
		if err != nil {
			return "❌ Invalid date. Use YYYY-MM-DD."
		}
		start, end := services.DayBounds(day, h.location)
		query.Start, query.End = &start, &end
	}

	report, err := h.reportService.Build(ctx, query)
	if err != nil {
		return "❌ Failed to build report: " + err.Error()
	}

	response := fmt.Sprintf("📊 *Sales %s*\n", report.Start.Format("02/01/2006"))
	response += fmt.Sprintf("Orders: %d\n", report.OrderCount)
	response += fmt.Sprintf("Revenue: $%s\n", report.Revenue.StringFixed(2))
	response += fmt.Sprintf("Average ticket: $%s", report.AverageTicket.StringFixed(2))
	if len(report.TopProducts) > 0 {
		top := report.TopProducts[0]
		response += fmt.Sprintf("\nBest seller: %s (%d)", top.Name, top.Quantity)
	}
	return response
}
