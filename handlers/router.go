package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/invoice-ledger/auth"
	"github.com/yourusername/invoice-ledger/config"
	"github.com/yourusername/invoice-ledger/logger"
	"github.com/yourusername/invoice-ledger/middleware"
	"github.com/yourusername/invoice-ledger/models"
	"github.com/yourusername/invoice-ledger/services"
)

type RouterDeps struct {
	Config   *config.Config
	Logger   *logger.Logger
	Users    auth.UserStore
	Invoices *services.InvoiceService
}

// NewRouter wires middleware and routes. Paths the browser client calls with
// a trailing slash are registered in both forms.
func NewRouter(deps RouterDeps) *gin.Engine {
	RegisterValidators()

	router := gin.New()
	router.RedirectTrailingSlash = false
	router.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware,
		middleware.RequestLogger(deps.Logger),
		middleware.CORSMiddleware(deps.Config.CORSAllowedOrigins),
		middleware.ErrorHandler(deps.Logger),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "invoice-ledger-api",
		})
	})

	authHandler := NewAuthHandler(deps.Users, deps.Config)
	router.POST("/token", authHandler.Login)
	router.POST("/token/refresh", authHandler.Refresh)

	api := router.Group("/")
	api.Use(middleware.JwtAuthMiddleware(deps.Config, deps.Users))
	{
		api.GET("/verify-token", authHandler.VerifyToken)

		invoiceHandler := NewInvoiceHandler(deps.Invoices, deps.Config.MaxUploadBytes)
		adminOnly := middleware.RequireRole(models.RoleAdmin)

		for _, path := range []string{"/invoices", "/invoices/"} {
			api.POST(path, invoiceHandler.CreateInvoice)
			api.GET(path, invoiceHandler.ListInvoices)
		}
		api.GET("/invoices/:id", invoiceHandler.GetInvoice)
		api.PUT("/invoices/:id", invoiceHandler.UpdateInvoice)
		api.DELETE("/invoices/:id", adminOnly, invoiceHandler.DeleteInvoice)
		api.POST("/invoices/:id/items", invoiceHandler.CreateInvoiceItem)
		api.GET("/invoices/:id/items", invoiceHandler.ListInvoiceItems)
		api.POST("/invoices/:id/recompute", invoiceHandler.RecomputeTotals)
		api.DELETE("/invoice_items/:id", adminOnly, invoiceHandler.DeleteInvoiceItem)

		for _, path := range []string{"/upload-pdf", "/upload-pdf/"} {
			api.POST(path, invoiceHandler.UploadPDF)
		}
	}

	return router
}
