package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/madeiras-ouro-preto/sales-api/controllers"
	"github.com/madeiras-ouro-preto/sales-api/middleware"
	"gorm.io/gorm"
)

type Controllers struct {
	Client    *controllers.ClientController
	Product   *controllers.ProductController
	Seller    *controllers.SellerController
	Order     *controllers.OrderController
	Analytics *controllers.AnalyticsController
	User      *controllers.UserController
	Audit     *controllers.AuditController
	Upload    *controllers.UploadController
}

// Options carries what the routes need besides the controllers
type Options struct {
	DB             *gorm.DB
	AllowedOrigins []string
	// Authenticate validates the bearer token. Tests swap in a fake.
	Authenticate gin.HandlerFunc
	// Users resolves the account behind a token.
	Users middleware.UserLookup
}

// New builds the engine with every /api/v1 route
func New(ctl *Controllers, opts Options) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     opts.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/database/status", databaseStatus(opts.DB))
		v1.GET("/uploads/:filename", ctl.Upload.GetUploadedImage)
	}

	authed := v1.Group("", opts.Authenticate)
	// registration is the only route open to tokens without an account
	authed.POST("/users", ctl.User.Create)

	api := authed.Group("", middleware.LoadCaller(opts.Users))
	{
		api.GET("/users/me", ctl.User.GetMe)
		api.PUT("/users/me", ctl.User.UpdateMe)

		api.GET("/clients", ctl.Client.List)
		api.GET("/clients/:id", ctl.Client.Get)
		api.POST("/clients", ctl.Client.Create)
		api.PUT("/clients/:id", ctl.Client.Update)
		api.DELETE("/clients/:id", ctl.Client.Delete)

		api.GET("/products", ctl.Product.List)
		api.GET("/products/:id", ctl.Product.Get)
		api.POST("/products", ctl.Product.Create)
		api.PUT("/products/:id", ctl.Product.Update)
		api.DELETE("/products/:id", ctl.Product.Delete)

		api.GET("/sellers", ctl.Seller.List)

		api.GET("/orders", ctl.Order.List)
		api.POST("/orders", ctl.Order.Create)
		api.GET("/orders/:id", ctl.Order.Get)
		api.PUT("/orders/:id", ctl.Order.Update)
		api.DELETE("/orders/:id", ctl.Order.Delete)
		api.POST("/orders/:id/convert", ctl.Order.Convert)
		api.GET("/orders/:id/pdf", ctl.Order.PDF)
		api.POST("/orders/:id/pdf", ctl.Order.PublishPDF)
		api.GET("/orders/:id/whatsapp", ctl.Order.WhatsApp)

		api.POST("/pricing/preview", controllers.PreviewPricing)

		api.GET("/analytics/dashboard", ctl.Analytics.Dashboard)
		api.GET("/analytics/reports", ctl.Analytics.Reports)
	}

	admin := api.Group("", middleware.RequireAdmin())
	{
		admin.GET("/users", ctl.User.List)
		admin.PUT("/users/:id/role", ctl.User.UpdateRole)

		admin.POST("/sellers", ctl.Seller.Create)
		admin.PUT("/sellers/:id", ctl.Seller.Update)
		admin.DELETE("/sellers/:id", ctl.Seller.Delete)

		admin.GET("/audit-logs", ctl.Audit.List)
		admin.POST("/settings/logo", ctl.Upload.UploadLogo)
	}

	return router
}
