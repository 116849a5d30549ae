package routes

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"rhombick-backend/config"
	"rhombick-backend/controllers"
	"rhombick-backend/documents"
	"rhombick-backend/metrics"
	"rhombick-backend/middlewares"
	"rhombick-backend/repositories"
	"rhombick-backend/services"
)

// NewApp builds the Fiber app with the global error handler, middleware stack and all routes.
func NewApp(cfg *config.Config, db *gorm.DB, log *zap.Logger, m *metrics.Metrics) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler:          middlewares.ErrorHandler(log),
		BodyLimit:             cfg.Server.BodyLimitBytes,
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
		DisableStartupMessage: cfg.IsProduction(),
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middlewares.RequestLogger(log, m))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     joinOrigins(cfg.CORS.AllowedOrigins),
		AllowCredentials: false, // using Bearer tokens, not cookies
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Idempotency-Key",
	}))
	if cfg.RateLimit.Max > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimit.Max,
			Expiration: cfg.RateLimit.Window,
			Next: func(c *fiber.Ctx) bool {
				return c.Path() == "/metrics"
			},
		}))
	}

	app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))
	Register(app, cfg, db, log, m)
	return app
}

// Register wires all /api routes.
func Register(app *fiber.App, cfg *config.Config, db *gorm.DB, log *zap.Logger, m *metrics.Metrics) {
	customerRepo := repositories.NewCustomerRepository(db)
	invoiceRepo := repositories.NewInvoiceRepository(db)

	customers := controllers.NewCustomerController(services.NewCustomerService(customerRepo, log))
	invoices := controllers.NewInvoiceController(
		services.NewInvoiceService(invoiceRepo, customerRepo, cfg.Tax.Policy(), m, log),
		documents.Seller(cfg.Seller),
	)
	stats := controllers.NewStatsController(services.NewStatsService(customerRepo, invoiceRepo), db)

	api := app.Group("/api")
	api.Get("/health", stats.Health)

	protected := api.Group("")
	if cfg.Auth.Enabled {
		secret := []byte(cfg.Auth.JWTSecret)
		auth := controllers.NewAuthController(db, secret, cfg.Auth.TokenExpiry)

		// Public auth endpoints
		api.Post("/registration", auth.Register)
		api.Post("/login", auth.Login)
		api.Post("/logout", auth.Logout)

		protected.Use(middlewares.IsAuthenticatedHeader(secret))
	}
	protected.Use(middlewares.Idempotency(db, log))

	protected.Get("/stats", stats.GetStats)

	// Customers
	protected.Get("/customer", customers.GetCustomers)
	protected.Post("/customer", customers.CreateCustomer)
	protected.Get("/customer/:id", customers.GetCustomer)
	protected.Put("/customer/:id", customers.UpdateCustomer)
	protected.Delete("/customer/:id", customers.DeleteCustomer)

	// Invoices
	protected.Get("/invoices", invoices.GetInvoices)
	protected.Post("/invoices", invoices.CreateInvoice)
	protected.Get("/invoices/export", invoices.ExportInvoices)
	protected.Get("/invoices/:invoiceId", invoices.GetInvoice)
	protected.Put("/invoices/:invoiceId", invoices.UpdateInvoice)
	protected.Delete("/invoices/:invoiceId", invoices.DeleteInvoice)
	protected.Get("/invoices/:invoiceId/versions", invoices.GetInvoiceVersions)
	protected.Get("/invoices/:invoiceId/pdf", invoices.GetInvoicePDF)

	// Line items
	protected.Post("/invoices/:invoiceId/items", invoices.AddItem)
	protected.Get("/invoices/:invoiceId/items/:itemId", invoices.GetItem)
	protected.Put("/invoices/:invoiceId/items/:itemId", invoices.UpdateItem)
	protected.Delete("/invoices/:invoiceId/items/:itemId", invoices.DeleteItem)
}

func joinOrigins(origins []string) string {
	if len(origins) == 0 {
		return "*"
	}
	return strings.Join(origins, ", ")
}
