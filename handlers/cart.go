package handlers

import (
	"net/http"
	"time"

	"eshop-backend/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartHandler struct {
	DB *gorm.DB
}

// cartItemPayload serializes a cart line with its subtotal at the product's
// current price.
func cartItemPayload(item models.CartItem) gin.H {
	return gin.H{
		"id":       item.ID,
		"product":  item.Product,
		"quantity": item.Quantity,
		"subtotal": item.Subtotal(),
	}
}

// GetCart returns the caller's cart. The total is recomputed from current
// product prices on every read, never cached.
func (h *CartHandler) GetCart(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authentication required"})
		return
	}

	var cartItems []models.CartItem
	if err := h.DB.Preload("Product").Where("user_id = ?", userID).Find(&cartItems).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch cart"})
		return
	}

	items := make([]gin.H, 0, len(cartItems))
	var total float64
	for _, item := range cartItems {
		items = append(items, cartItemPayload(item))
		total += item.Subtotal()
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"cart_items": items,
		"total":      total,
		"item_count": len(items),
	})
}

// AddToCart merges the requested quantity into an existing (user, product)
// row, or inserts a new one. The stock check is against the requested add
// amount only; checkout re-checks the full quantity under row locks.
func (h *CartHandler) AddToCart(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authentication required"})
		return
	}

	var req struct {
		ProductID uuid.UUID `json:"product_id" binding:"required"`
		Quantity  int       `json:"quantity"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Product ID is required"})
		return
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	var product models.Product
	if err := h.DB.Where("id = ?", req.ProductID).First(&product).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Product not found"})
		return
	}

	if product.StockQuantity < req.Quantity {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Insufficient stock"})
		return
	}

	// Upsert on the unique (user_id, product_id) pair so two concurrent adds
	// merge into one row instead of racing a read-then-write.
	cartItem := models.CartItem{
		ID:        uuid.New(),
		UserID:    userID.(uuid.UUID),
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	}
	err := h.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":   gorm.Expr("quantity + ?", req.Quantity),
			"updated_at": time.Now(),
		}),
	}).Create(&cartItem).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to add to cart"})
		return
	}

	// On a merge the existing row keeps its id, so reload by the pair.
	if err := h.DB.Preload("Product").Where("user_id = ? AND product_id = ?", userID, req.ProductID).First(&cartItem).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch cart item"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Item added to cart",
		"cart_item": cartItemPayload(cartItem),
	})
}

// UpdateCartItem sets (not adds) the quantity of one of the caller's rows.
func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authentication required"})
		return
	}
	id := c.Param("id")

	var req struct {
		Quantity int `json:"quantity" binding:"required,min=1"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "quantity must be at least 1"})
		return
	}

	var cartItem models.CartItem
	if err := h.DB.Preload("Product").Where("id = ? AND user_id = ?", id, userID).First(&cartItem).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Cart item not found"})
		return
	}

	if cartItem.Product.StockQuantity < req.Quantity {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Insufficient stock"})
		return
	}

	cartItem.Quantity = req.Quantity
	if err := h.DB.Save(&cartItem).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update cart item"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Cart item updated",
		"cart_item": cartItemPayload(cartItem),
	})
}

func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authentication required"})
		return
	}
	id := c.Param("id")

	var cartItem models.CartItem
	if err := h.DB.Where("id = ? AND user_id = ?", id, userID).First(&cartItem).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Cart item not found"})
		return
	}

	if err := h.DB.Delete(&cartItem).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to remove item from cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Item removed from cart"})
}

// ClearCart deletes all of the caller's rows; clearing an empty cart is a
// silent no-op.
func (h *CartHandler) ClearCart(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authentication required"})
		return
	}

	if err := h.DB.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to clear cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Cart cleared"})
}
