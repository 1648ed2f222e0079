package main

import (
	"fmt"
	"log"

	"restaurant_pos/internal/config"
	"restaurant_pos/internal/database"
	"restaurant_pos/internal/migrations"
)

// Drops and recreates the schema, then loads the demo catalog.
// Run with: go run scripts/init-db.go
func main() {
	fmt.Println("Initializing database...")

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL, cfg.DBLogLevel)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err := migrations.ResetDatabase(db, true); err != nil {
		log.Fatal("Failed to reset database:", err)
	}

	fmt.Println("Database initialized successfully!")
}
