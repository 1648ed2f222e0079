package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"restaurant_pos/internal/config"
	"restaurant_pos/internal/database"
	"restaurant_pos/internal/events"
	"restaurant_pos/internal/handlers"
	"restaurant_pos/internal/migrations"
	"restaurant_pos/internal/redis"
	"restaurant_pos/internal/repository"
	"restaurant_pos/internal/server"
	"restaurant_pos/internal/services"
	"restaurant_pos/pkg/whatsapp"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func main() {
	// Load configuration
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)
	decimal.MarshalJSONWithoutQuotes = true

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL, cfg.DBLogLevel)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := migrations.RunMigrations(db, cfg.SeedDemoData); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Report cache is optional
	var reportCache services.ReportCache
	var cachePinger handlers.Pinger
	if cfg.RedisURL != "" {
		redisClient, err := redis.Initialize(cfg.RedisURL)
		if err != nil {
			log.Printf("Warning: Redis unavailable, report caching disabled: %v", err)
		} else {
			defer redisClient.Close()
			reportCache = redisClient
			cachePinger = redisClient
		}
	}

	// Events go to websocket clients and, when configured, to the broker
	hub := events.NewHub(cfg.CORSOrigins)
	defer hub.Close()
	publisher := events.Multi{hub}
	if cfg.AMQPURL != "" {
		amqpPublisher, err := events.DialAMQP(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.Printf("Warning: AMQP unavailable, events stay local: %v", err)
		} else {
			defer amqpPublisher.Close()
			publisher = append(publisher, amqpPublisher)
		}
	}

	// Initialize WhatsApp client
	whatsappClient := whatsapp.NewClient(cfg.WhatsAppAPIURL, cfg.WhatsAppUsername, cfg.WhatsAppPassword, cfg.WhatsAppPath)
	var sender services.MessageSender
	if whatsappClient.Configured() {
		sender = whatsappClient
	} else {
		log.Println("WhatsApp gateway not configured, low stock alerts disabled")
	}
	alerts := services.NewStockAlertService(sender, cfg.AlertPhone)
	defer alerts.Wait()

	// Initialize services
	location := cfg.ReportLocation()
	store := repository.NewStore(db)
	orderService := services.NewOrderService(store, reportCache, publisher, alerts, services.OrderOptions{
		AllowNegativeStock:  cfg.AllowNegativeStock(),
		LowStockThreshold:   cfg.LowStockThreshold,
		DefaultCustomerName: cfg.DefaultCustomerName,
	})
	catalogService := services.NewCatalogService(store, reportCache)
	reportService := services.NewReportService(store, reportCache, services.ReportOptions{
		Location:          location,
		LowStockThreshold: cfg.LowStockThreshold,
		LowStockLimit:     cfg.LowStockLimit,
		CacheTTL:          time.Duration(cfg.CacheTTL) * time.Second,
	})

	// Setup routes
	router := server.NewRouter(server.Handlers{
		API:      handlers.NewAPIHandler(db, cachePinger),
		Orders:   handlers.NewOrderHandler(orderService),
		Products: handlers.NewProductHandler(catalogService),
		Reports:  handlers.NewReportHandler(reportService, location),
		WhatsApp: handlers.NewWhatsAppHandler(sender, alerts, orderService, catalogService, reportService, handlers.WhatsAppOptions{
			StaffPhone:        cfg.AlertPhone,
			LowStockThreshold: cfg.LowStockThreshold,
			LowStockLimit:     cfg.LowStockLimit,
			Location:          location,
		}),
		Events: hub,
	}, cfg.CORSOrigins)

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
}
