package handlers

import (
	"net/http"

	"eshop-backend/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CheckoutHandler struct {
	DB *gorm.DB
}

func orderItemPayload(item models.OrderItem) gin.H {
	return gin.H{
		"id":       item.ID,
		"product":  item.Product,
		"quantity": item.Quantity,
		"price":    item.Price,
		"subtotal": item.Subtotal(),
	}
}

func orderPayload(order models.Order) gin.H {
	items := make([]gin.H, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemPayload(item))
	}
	return gin.H{
		"id":               order.ID,
		"total_amount":     order.TotalAmount,
		"status":           order.Status,
		"shipping_address": order.ShippingAddress,
		"payment_method":   order.PaymentMethod,
		"created_at":       order.CreatedAt,
		"items":            items,
	}
}

// ProcessCheckout converts the caller's cart into an order. Stock is
// re-checked per line under row locks inside one transaction; any shortfall
// rolls the whole order back, so no partial order or stock decrement is ever
// visible. Item prices are frozen at purchase time.
func (h *CheckoutHandler) ProcessCheckout(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authentication required"})
		return
	}

	var req struct {
		ShippingAddress string `json:"shipping_address"`
		PaymentMethod   string `json:"payment_method"`
	}
	// Both fields are optional; an empty body is fine.
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
			return
		}
	}

	var cartItems []models.CartItem
	if err := h.DB.Where("user_id = ?", userID).Find(&cartItems).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch cart"})
		return
	}

	if len(cartItems) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Cart is empty"})
		return
	}

	var user models.User
	if err := h.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not found"})
		return
	}

	// Explicit address wins, else the profile address.
	shippingAddress := req.ShippingAddress
	if shippingAddress == "" {
		shippingAddress = user.Address
	}
	if shippingAddress == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Shipping address is required"})
		return
	}

	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = "Credit Card"
	}

	tx := h.DB.Begin()
	if tx.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to process order"})
		return
	}

	// Lock every product row, re-check stock and decrement. Prices read under
	// the lock are the frozen purchase prices.
	var totalAmount float64
	var orderItems []models.OrderItem
	for _, item := range cartItems {
		var product models.Product
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", item.ProductID).
			First(&product).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Product not found"})
			return
		}

		if product.StockQuantity < item.Quantity {
			tx.Rollback()
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Insufficient stock for " + product.Name})
			return
		}

		product.StockQuantity -= item.Quantity
		if err := tx.Save(&product).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update stock"})
			return
		}

		totalAmount += product.Price * float64(item.Quantity)
		orderItems = append(orderItems, models.OrderItem{
			ID:        uuid.New(),
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     product.Price,
		})
	}

	order := models.Order{
		ID:              uuid.New(),
		UserID:          userID.(uuid.UUID),
		TotalAmount:     totalAmount,
		Status:          models.OrderStatusPending,
		ShippingAddress: shippingAddress,
		PaymentMethod:   paymentMethod,
	}

	if err := tx.Create(&order).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create order"})
		return
	}

	for i := range orderItems {
		orderItems[i].OrderID = order.ID
	}
	if err := tx.Omit("Product", "Order").Create(&orderItems).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create order items"})
		return
	}

	if err := tx.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to clear cart"})
		return
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to complete order"})
		return
	}

	h.DB.Preload("Items").Preload("Items.Product").First(&order, order.ID)

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Order placed successfully",
		"order":   orderPayload(order),
	})
}

func (h *CheckoutHandler) GetOrders(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authentication required"})
		return
	}

	var orders []models.Order
	if err := h.DB.Preload("Items").Preload("Items.Product").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch orders"})
		return
	}

	payload := make([]gin.H, 0, len(orders))
	for _, order := range orders {
		payload = append(payload, orderPayload(order))
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "orders": payload})
}

// GetOrder returns 404 for another user's order rather than 403, so the
// endpoint does not confirm that the order exists.
func (h *CheckoutHandler) GetOrder(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authentication required"})
		return
	}
	id := c.Param("id")

	var order models.Order
	if err := h.DB.Preload("Items").Preload("Items.Product").
		Where("id = ? AND user_id = ?", id, userID).
		First(&order).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Order not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "order": orderPayload(order)})
}

// GetPaymentMethods returns the fixed list of accepted methods. No gateway
// sits behind this.
func (h *CheckoutHandler) GetPaymentMethods(c *gin.Context) {
	paymentMethods := []gin.H{
		{"id": "credit_card", "name": "Credit Card", "icon": "credit-card"},
		{"id": "debit_card", "name": "Debit Card", "icon": "credit-card"},
		{"id": "paypal", "name": "PayPal", "icon": "paypal"},
		{"id": "upi", "name": "UPI", "icon": "mobile"},
		{"id": "cod", "name": "Cash on Delivery", "icon": "money-bill"},
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "payment_methods": paymentMethods})
}
