package handlers

import (
	"math"
	"net/http"
	"strconv"

	"eshop-backend/models"
	"eshop-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ProductHandler struct {
	DB *gorm.DB
}

const defaultPerPage = 12

// GetProducts lists the catalog with optional search, category and price
// filters, all AND-composed, plus 1-indexed pagination. A page past the end
// returns an empty list with total/pages still accurate.
func (h *ProductHandler) GetProducts(c *gin.Context) {
	query := h.DB.Model(&models.Product{})

	if search := c.Query("search"); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("LOWER(name) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?)", pattern, pattern)
	}
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if minPrice := c.Query("min_price"); minPrice != "" {
		v, err := strconv.ParseFloat(minPrice, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "min_price must be a number"})
			return
		}
		query = query.Where("price >= ?", v)
	}
	if maxPrice := c.Query("max_price"); maxPrice != "" {
		v, err := strconv.ParseFloat(maxPrice, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "max_price must be a number"})
			return
		}
		query = query.Where("price <= ?", v)
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", strconv.Itoa(defaultPerPage)))
	if perPage < 1 {
		perPage = defaultPerPage
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch products"})
		return
	}

	var products []models.Product
	if err := query.Order("created_at DESC").Offset((page - 1) * perPage).Limit(perPage).Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch products"})
		return
	}
	if products == nil {
		products = []models.Product{}
	}

	pages := int(math.Ceil(float64(total) / float64(perPage)))

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"products":     products,
		"total":        total,
		"pages":        pages,
		"current_page": page,
	})
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	id := c.Param("id")

	var product models.Product
	if err := h.DB.Where("id = ?", id).First(&product).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Product not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "product": product})
}

// GetCategories returns the distinct non-empty category strings in use.
func (h *ProductHandler) GetCategories(c *gin.Context) {
	var categories []string
	if err := h.DB.Model(&models.Product{}).
		Distinct().
		Where("category <> ''").
		Order("category").
		Pluck("category", &categories).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch categories"})
		return
	}
	if categories == nil {
		categories = []string{}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "categories": categories})
}

// CreateProduct adds a product to the catalog. Any authenticated user may
// call this; the system has no admin role.
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req struct {
		Name          string   `json:"name" binding:"required"`
		Price         *float64 `json:"price" binding:"required"`
		Description   string   `json:"description"`
		Category      string   `json:"category"`
		ImageURL      string   `json:"image_url"`
		StockQuantity int      `json:"stock_quantity"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": utils.SanitizeValidationError(err)})
		return
	}
	if *req.Price < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "price must not be negative"})
		return
	}

	if req.Category == "" {
		req.Category = "General"
	}
	if req.ImageURL == "" {
		req.ImageURL = "/static/images/default-product.jpg"
	}

	product := models.Product{
		Name:          req.Name,
		Description:   req.Description,
		Price:         *req.Price,
		Category:      req.Category,
		ImageURL:      req.ImageURL,
		StockQuantity: req.StockQuantity,
	}

	if err := h.DB.Create(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create product"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Product created successfully",
		"product": product,
	})
}
