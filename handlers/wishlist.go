package handlers

import (
	"net/http"

	"eshop-backend/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WishlistHandler struct {
	DB *gorm.DB
}

func wishlistItemPayload(item models.WishlistItem) gin.H {
	return gin.H{
		"id":      item.ID,
		"product": item.Product,
	}
}

func (h *WishlistHandler) GetWishlist(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authentication required"})
		return
	}

	var wishlistItems []models.WishlistItem
	if err := h.DB.Preload("Product").Where("user_id = ?", userID).Find(&wishlistItems).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch wishlist"})
		return
	}

	items := make([]gin.H, 0, len(wishlistItems))
	for _, item := range wishlistItems {
		items = append(items, wishlistItemPayload(item))
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"wishlist_items": items,
		"item_count":     len(items),
	})
}

// AddToWishlist rejects a duplicate (user, product) pair instead of merging
// the way the cart does.
func (h *WishlistHandler) AddToWishlist(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authentication required"})
		return
	}

	var req struct {
		ProductID uuid.UUID `json:"product_id" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Product ID is required"})
		return
	}

	var product models.Product
	if err := h.DB.Where("id = ?", req.ProductID).First(&product).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Product not found"})
		return
	}

	wishlistItem := models.WishlistItem{
		ID:        uuid.New(),
		UserID:    userID.(uuid.UUID),
		ProductID: req.ProductID,
	}

	// The unique (user_id, product_id) pair makes the duplicate check atomic:
	// a conflicting insert affects zero rows instead of racing a pre-read.
	res := h.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoNothing: true,
	}).Create(&wishlistItem)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to add to wishlist"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Item already in wishlist"})
		return
	}

	h.DB.Preload("Product").First(&wishlistItem, wishlistItem.ID)

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"message":       "Item added to wishlist",
		"wishlist_item": wishlistItemPayload(wishlistItem),
	})
}

func (h *WishlistHandler) RemoveFromWishlist(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authentication required"})
		return
	}
	id := c.Param("id")

	var wishlistItem models.WishlistItem
	if err := h.DB.Where("id = ? AND user_id = ?", id, userID).First(&wishlistItem).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Wishlist item not found"})
		return
	}

	if err := h.DB.Delete(&wishlistItem).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to remove item from wishlist"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Item removed from wishlist"})
}

func (h *WishlistHandler) ClearWishlist(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authentication required"})
		return
	}

	if err := h.DB.Where("user_id = ?", userID).Delete(&models.WishlistItem{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to clear wishlist"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Wishlist cleared"})
}
