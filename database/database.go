package database

import (
	"fmt"
	"log"
	"os"

	"eshop-backend/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect() (*gorm.DB, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "host=localhost user=postgres password=postgres dbname=eshop port=5432 sslmode=disable"
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	// Ensure PostgreSQL has gen_random_uuid() available (pgcrypto extension).
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		return fmt.Errorf("failed to enable pgcrypto extension: %w", err)
	}

	return db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.CartItem{},
		&models.WishlistItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.ChatMessage{},
	)
}

// SeedProducts loads a small demo catalog when the products table is empty,
// so a fresh deployment has something to browse.
func SeedProducts(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	products := []models.Product{
		{Name: "Wireless Headphones", Description: "Over-ear Bluetooth headphones with noise cancellation", Price: 89.99, Category: "Electronics", ImageURL: "/static/images/headphones.jpg", StockQuantity: 50},
		{Name: "Smart Watch", Description: "Fitness tracking smartwatch with heart rate monitor", Price: 199.99, Category: "Electronics", ImageURL: "/static/images/smartwatch.jpg", StockQuantity: 30},
		{Name: "Cotton T-Shirt", Description: "Plain crew-neck t-shirt, 100% cotton", Price: 14.99, Category: "Clothing", ImageURL: "/static/images/tshirt.jpg", StockQuantity: 200},
		{Name: "Denim Jeans", Description: "Slim fit stretch denim jeans", Price: 49.99, Category: "Clothing", ImageURL: "/static/images/jeans.jpg", StockQuantity: 120},
		{Name: "Coffee Maker", Description: "12-cup programmable drip coffee maker", Price: 64.99, Category: "Home & Kitchen", ImageURL: "/static/images/coffeemaker.jpg", StockQuantity: 40},
		{Name: "Yoga Mat", Description: "Non-slip exercise mat, 6mm thick", Price: 24.99, Category: "Sports", ImageURL: "/static/images/yogamat.jpg", StockQuantity: 80},
		{Name: "Desk Lamp", Description: "LED desk lamp with adjustable brightness", Price: 32.50, Category: "Home & Kitchen", ImageURL: "/static/images/desklamp.jpg", StockQuantity: 60},
		{Name: "Running Shoes", Description: "Lightweight cushioned running shoes", Price: 79.99, Category: "Sports", ImageURL: "/static/images/shoes.jpg", StockQuantity: 90},
	}

	if err := db.Create(&products).Error; err != nil {
		return err
	}

	log.Printf("Seeded %d demo products", len(products))
	return nil
}
