package database

import (
	"testing"

	"eshop-backend/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	// Raw DDL because the model tags carry PostgreSQL defaults.
	err = db.Exec(`CREATE TABLE "products" (
		"id" TEXT PRIMARY KEY,
		"name" TEXT NOT NULL,
		"description" TEXT,
		"price" REAL NOT NULL,
		"category" TEXT,
		"image_url" TEXT,
		"stock_quantity" INTEGER DEFAULT 0,
		"created_at" DATETIME,
		"updated_at" DATETIME,
		"deleted_at" DATETIME
	)`).Error
	if err != nil {
		t.Fatalf("failed to create products table: %v", err)
	}
	return db
}

func TestSeedProductsPopulatesEmptyCatalog(t *testing.T) {
	db := openTestDB(t)

	if err := SeedProducts(db); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	var count int64
	db.Model(&models.Product{}).Count(&count)
	if count == 0 {
		t.Fatal("expected demo products to be seeded")
	}

	// Every seeded product is immediately sellable
	var products []models.Product
	db.Find(&products)
	for _, p := range products {
		if p.Price <= 0 {
			t.Errorf("seeded product %q has non-positive price %v", p.Name, p.Price)
		}
		if !p.InStock() {
			t.Errorf("seeded product %q has no stock", p.Name)
		}
		if p.Category == "" {
			t.Errorf("seeded product %q has no category", p.Name)
		}
	}
}

func TestSeedProductsSkipsNonEmptyCatalog(t *testing.T) {
	db := openTestDB(t)

	existing := models.Product{Name: "Already Here", Price: 1.00, StockQuantity: 1}
	if err := db.Create(&existing).Error; err != nil {
		t.Fatalf("failed to create product: %v", err)
	}

	if err := SeedProducts(db); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	var count int64
	db.Model(&models.Product{}).Count(&count)
	if count != 1 {
		t.Errorf("expected seeding to be skipped, got %d products", count)
	}
}

func TestSeedProductsIdempotent(t *testing.T) {
	db := openTestDB(t)

	if err := SeedProducts(db); err != nil {
		t.Fatal(err)
	}
	var first int64
	db.Model(&models.Product{}).Count(&first)

	if err := SeedProducts(db); err != nil {
		t.Fatal(err)
	}
	var second int64
	db.Model(&models.Product{}).Count(&second)

	if first != second {
		t.Errorf("expected repeat seeding to change nothing, got %d then %d", first, second)
	}
}
