package routes

import (
	"net/http"

	"qr-restaurant-backend/controllers"
	"qr-restaurant-backend/middleware"
	"qr-restaurant-backend/models"
	"qr-restaurant-backend/services"

	"github.com/gin-gonic/gin"
)

type Controllers struct {
	Auth     *controllers.AuthController
	User     *controllers.UserController
	Customer *controllers.CustomerController
	Order    *controllers.OrderController
	Payment  *controllers.PaymentController
	Menu     *controllers.MenuController
	Table    *controllers.TableController
}

// Register wires the HTTP surface. The webhook route stays outside every
// auth layer; its authentication is the provider signature.
func Register(router *gin.Engine, ctrl Controllers, tokens *services.TokenService, limiter *middleware.RateLimiter) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// The webhook is registered outside the rate-limited group: provider
	// retry bursts must reach signature verification and be acknowledged,
	// never answered 429.
	router.POST("/api/payments/webhook", ctrl.Payment.Webhook)

	api := router.Group("/api")
	api.Use(limiter.Middleware())

	authed := middleware.Authenticate(tokens)
	staffOnly := middleware.RequireRole(models.RoleStaff, models.RoleAdmin)
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	auth := api.Group("/auth")
	{
		auth.POST("/register", ctrl.Auth.Register)
		auth.POST("/login", ctrl.Auth.Login)
		auth.POST("/refresh", ctrl.Auth.Refresh)
		auth.GET("/me", authed, ctrl.Auth.Me)
	}

	orders := api.Group("/orders")
	{
		orders.POST("", middleware.OptionalAuth(tokens), ctrl.Order.CreateOrder)
		orders.GET("", authed, ctrl.Order.ListOrders)
		orders.GET("/:id", middleware.OptionalAuth(tokens), ctrl.Order.GetOrder)
		orders.PATCH("/:id/status", authed, staffOnly, ctrl.Order.UpdateStatus)
		orders.PATCH("/:id/payment", authed, staffOnly, ctrl.Order.UpdatePaymentStatus)
		orders.POST("/:id/cancel", authed, ctrl.Order.CancelOrder)
	}

	payments := api.Group("/payments")
	{
		payments.POST("/create-intent", authed, ctrl.Payment.CreateIntent)
	}

	users := api.Group("/users")
	{
		users.PUT("/profile", authed, ctrl.User.UpdateProfile)

		admin := users.Group("", authed, adminOnly)
		{
			admin.GET("", ctrl.User.ListUsers)
			admin.GET("/stats", ctrl.User.Stats)
			admin.GET("/search", ctrl.User.SearchUsers)
			admin.GET("/:id", ctrl.User.GetUser)
			admin.PUT("/:id/role", ctrl.User.UpdateRole)
			admin.PUT("/:id/deactivate", ctrl.User.DeactivateUser)
		}
	}

	customers := api.Group("/customers")
	{
		customers.POST("/session/:qrSlug", ctrl.Customer.CreateSession)

		session := customers.Group("", middleware.AuthenticateCustomer(tokens))
		{
			session.GET("/profile", ctrl.Customer.GetProfile)
			session.PUT("/profile", ctrl.Customer.UpdateProfile)
			session.POST("/logout", ctrl.Customer.Logout)
		}
	}

	menu := api.Group("/menu")
	{
		menu.GET("/categories", ctrl.Menu.ListCategories)
		menu.GET("/items", ctrl.Menu.ListItems)
		menu.GET("/items/:id", ctrl.Menu.GetItem)

		admin := menu.Group("", authed, adminOnly)
		{
			admin.POST("/categories", ctrl.Menu.CreateCategory)
			admin.PATCH("/categories/:id", ctrl.Menu.UpdateCategory)
			admin.DELETE("/categories/:id", ctrl.Menu.DeleteCategory)

			admin.POST("/items", ctrl.Menu.CreateItem)
			admin.PUT("/items/:id", ctrl.Menu.UpdateItem)
			admin.PATCH("/items/:id/availability", ctrl.Menu.SetItemAvailability)
			admin.DELETE("/items/:id", ctrl.Menu.DeleteItem)
			admin.POST("/items/:id/image-upload", ctrl.Menu.PresignItemImageUpload)
		}
	}

	tables := api.Group("/tables")
	{
		tables.GET("/qr/:qrSlug", ctrl.Table.ResolveByQRSlug)
		tables.PATCH("/:id/occupancy", authed, staffOnly, ctrl.Table.SetOccupancy)

		admin := tables.Group("", authed, adminOnly)
		{
			admin.POST("", ctrl.Table.CreateTable)
			admin.GET("", ctrl.Table.ListTables)
			admin.GET("/:id", ctrl.Table.GetTable)
			admin.PUT("/:id", ctrl.Table.UpdateTable)
			admin.DELETE("/:id", ctrl.Table.DeleteTable)
		}
	}
}
