package migrations

import (
	"context"
	"fmt"
	"log"

	"restaurant_pos/internal/database"
	"restaurant_pos/internal/models"
	"restaurant_pos/internal/repository"
	"restaurant_pos/internal/services"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RunMigrations brings the schema up to date and, when seed is set, loads
// the demo catalog into an empty products table.
func RunMigrations(db *gorm.DB, seed bool) error {
	log.Println("Running database migrations...")
	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	if seed {
		if err := createDefaultData(db); err != nil {
			log.Printf("Warning: Failed to create default data: %v", err)
		}
	}

	log.Println("Database migrations completed successfully!")
	return nil
}

// ResetDatabase drops every table and recreates the schema.
func ResetDatabase(db *gorm.DB, seed bool) error {
	log.Println("Dropping existing tables...")
	if err := db.Migrator().DropTable(database.Models()...); err != nil {
		return fmt.Errorf("failed to drop tables: %w", err)
	}
	return RunMigrations(db, seed)
}

type demoProduct struct {
	name       string
	price      string
	cost       string
	stock      int
	trackStock bool
	category   string
	supplier   string
}

var demoCatalog = []demoProduct{
	{"Hambúrguer da Casa", "32.90", "14.00", 40, true, "Lanches", "Frigorífico Central"},
	{"X-Salada", "24.50", "10.20", 40, true, "Lanches", "Frigorífico Central"},
	{"Batata Frita", "18.00", "5.50", 60, true, "Porções", "Hortifruti Bom Preço"},
	{"Refrigerante Lata", "6.50", "2.80", 120, true, "Bebidas", "Distribuidora Sul"},
	{"Suco Natural", "9.00", "3.00", 0, false, "Bebidas", ""},
	{"Cerveja Long Neck", "11.00", "5.20", 4, true, "Bebidas", "Distribuidora Sul"},
	{"Pudim", "12.00", "3.90", 8, true, "Sobremesas", ""},
	{"Água Mineral", "4.00", "1.20", 80, true, "Bebidas", "Distribuidora Sul"},
}

// createDefaultData seeds the demo catalog once. A non-empty products table
// is left alone.
func createDefaultData(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("Products already exist, skipping demo catalog")
		return nil
	}

	log.Println("Creating demo catalog...")
	catalog := services.NewCatalogService(repository.NewStore(db), nil)
	ctx := context.Background()
	for _, p := range demoCatalog {
		trackStock := p.trackStock
		_, err := catalog.CreateProduct(ctx, services.ProductInput{
			Name:       p.name,
			Price:      decimal.RequireFromString(p.price),
			CostPrice:  decimal.RequireFromString(p.cost),
			Stock:      p.stock,
			TrackStock: &trackStock,
			Category:   p.category,
			Supplier:   p.supplier,
		})
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", p.name, err)
		}
	}

	log.Printf("Demo catalog created with %d products", len(demoCatalog))
	return nil
}
