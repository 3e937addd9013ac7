package router

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/madeiras-ouro-preto/sales-api/config"
	"github.com/madeiras-ouro-preto/sales-api/controllers"
	"github.com/madeiras-ouro-preto/sales-api/middleware"
	"github.com/madeiras-ouro-preto/sales-api/models"
	"github.com/madeiras-ouro-preto/sales-api/services"
	"github.com/madeiras-ouro-preto/sales-api/utils"
	"gorm.io/gorm"
)

// Dependencies are the outside services the API talks to.
type Dependencies struct {
	// Storage receives published PDFs. Nil disables publishing.
	Storage  services.S3Interface
	Renderer services.PDFRenderer
	UserInfo services.UserInfoProvider
}

// Setup wires services and controllers on top of db and returns the engine.
func Setup(db *gorm.DB, cfg *config.Config, deps Dependencies, authenticate gin.HandlerFunc) *gin.Engine {
	loc := cfg.Location()

	audit := services.NewAuditService(db)
	users := services.NewUserService(db, audit)
	clients := services.NewClientService(db, audit)
	products := services.NewProductService(db, audit)
	sellers := services.NewSellerService(db, audit)
	orders := services.NewOrderService(db, audit, products)
	documents := services.NewDocumentService(
		cfg.Company,
		deps.Renderer,
		deps.Storage,
		filepath.Join(cfg.UploadDir, utils.LogoFileName),
		loc,
	)

	ctl := &Controllers{
		Client:    controllers.NewClientController(clients),
		Product:   controllers.NewProductController(products),
		Seller:    controllers.NewSellerController(sellers),
		Order:     controllers.NewOrderController(orders, clients, documents, cfg.Company, loc),
		Analytics: controllers.NewAnalyticsController(orders, sellers, loc),
		User:      controllers.NewUserController(users, deps.UserInfo),
		Audit:     controllers.NewAuditController(audit),
		Upload:    controllers.NewUploadController(cfg.UploadDir),
	}

	return New(ctl, Options{
		DB:             db,
		AllowedOrigins: cfg.AllowedOrigins,
		Authenticate:   authenticate,
		Users:          LookupUsers(users),
	})
}

// LookupUsers adapts the user service to the caller middleware.
func LookupUsers(users *services.UserService) middleware.UserLookup {
	return func(ctx context.Context, auth0ID string) (*models.User, error) {
		user, err := users.FindByAuth0ID(ctx, auth0ID)
		if errors.Is(err, services.ErrNotFound) {
			return nil, nil
		}
		return user, err
	}
}
