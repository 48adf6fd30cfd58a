package routes

import (
	"time"

	"eshop-backend/handlers"
	"eshop-backend/middleware"

	"github.com/gin-gonic/gin"
)

// SetupRoutes mounts the full API onto r. The chat handler is built by the
// caller because it carries the hub.
func SetupRoutes(r *gin.Engine, chatHandler *handlers.ChatHandler) {
	db := chatHandler.DB

	// Initialize handlers
	authHandler := &handlers.AuthHandler{DB: db}
	productHandler := &handlers.ProductHandler{DB: db}
	cartHandler := &handlers.CartHandler{DB: db}
	wishlistHandler := &handlers.WishlistHandler{DB: db}
	checkoutHandler := &handlers.CheckoutHandler{DB: db}

	// Credential endpoints get a per-IP rate limit
	authLimiter := middleware.NewRateLimiter(10, time.Minute)

	// Public routes
	api := r.Group("/api")
	{
		// Auth routes
		api.POST("/auth/register", authLimiter.Middleware(), authHandler.Register)
		api.POST("/auth/login", authLimiter.Middleware(), authHandler.Login)
		api.POST("/auth/logout", authHandler.Logout)

		// Public product routes
		api.GET("/products", productHandler.GetProducts)
		api.GET("/products/categories", productHandler.GetCategories)
		api.GET("/products/:id", productHandler.GetProduct)

		// Payment methods are static, no login needed to browse them
		api.GET("/checkout/payment-methods", checkoutHandler.GetPaymentMethods)

		// Live chat; guests allowed, identity picked up from the cookie
		api.GET("/chat/ws", chatHandler.HandleWS)
	}

	// Protected routes (require authentication)
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware())
	{
		// User profile
		protected.GET("/auth/current-user", authHandler.GetCurrentUser)
		protected.PUT("/auth/update-profile", authHandler.UpdateProfile)

		// Product management
		protected.POST("/products/create", productHandler.CreateProduct)

		// Cart routes
		protected.GET("/cart", cartHandler.GetCart)
		protected.POST("/cart/add", cartHandler.AddToCart)
		protected.PUT("/cart/update/:id", cartHandler.UpdateCartItem)
		protected.DELETE("/cart/remove/:id", cartHandler.RemoveFromCart)
		protected.DELETE("/cart/clear", cartHandler.ClearCart)

		// Wishlist routes
		protected.GET("/wishlist", wishlistHandler.GetWishlist)
		protected.POST("/wishlist/add", wishlistHandler.AddToWishlist)
		protected.DELETE("/wishlist/remove/:id", wishlistHandler.RemoveFromWishlist)
		protected.DELETE("/wishlist/clear", wishlistHandler.ClearWishlist)

		// Checkout and order history
		protected.POST("/checkout/process", checkoutHandler.ProcessCheckout)
		protected.GET("/checkout/orders", checkoutHandler.GetOrders)
		protected.GET("/checkout/orders/:id", checkoutHandler.GetOrder)
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
}
