package main

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberLogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/movella/studiopos-backend/internal/config"
	"github.com/movella/studiopos-backend/internal/handler"
	"github.com/movella/studiopos-backend/internal/middleware"
	"github.com/movella/studiopos-backend/internal/repository"
	"github.com/movella/studiopos-backend/internal/service"
	"github.com/movella/studiopos-backend/pkg/clock"
	"github.com/movella/studiopos-backend/pkg/database"
	"github.com/movella/studiopos-backend/pkg/email"
	"github.com/movella/studiopos-backend/pkg/payment"
	"github.com/movella/studiopos-backend/pkg/qrcode"
	"github.com/movella/studiopos-backend/pkg/storage"
	"github.com/movella/studiopos-backend/pkg/utils"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	cfg := config.LoadConfig()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize database
	db := database.NewDatabase(cfg.DatabaseURL)
	if err := database.RunMigrations(db); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}

	// The studio's wall clock; all expiration and birthday math uses it.
	studioClock := clock.New(cfg.Timezone)

	// Repositories
	staffRepo := repository.NewStaffRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	cardTypeRepo := repository.NewCardTypeRepository(db)
	cardRepo := repository.NewCardRepository(db)
	checkInRepo := repository.NewCheckInRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)

	// Waiver storage
	waiverStorage, err := storage.NewCloudflareStorage(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize waiver storage", zap.Error(err))
	}

	// Email service
	emailService := email.NewEmailService()

	// Stripe service
	stripeService := payment.NewStripeService(cfg.Stripe.SecretKey, cfg.Stripe.SuccessURL, cfg.Stripe.CancelURL)

	qrService := qrcode.NewQRService()

	// Services
	authService := service.NewAuthService(staffRepo)
	customerService := service.NewCustomerService(customerRepo, qrService, waiverStorage)
	catalogService := service.NewCatalogService(cardTypeRepo)
	cardService := service.NewCardService(cardTypeRepo, cardRepo, studioClock)
	checkInService := service.NewCheckInService(cardRepo, checkInRepo, customerRepo, studioClock, emailService, logger)
	paymentService := service.NewPaymentService(stripeService, customerRepo, cardTypeRepo, purchaseRepo, cardService, emailService, logger)
	reportService := service.NewReportService(purchaseRepo, checkInRepo, customerRepo, studioClock)

	validator := utils.NewValidator()

	// Handlers
	authHandler := handler.NewAuthHandler(authService, validator)
	customerHandler := handler.NewCustomerHandler(customerService, validator)
	catalogHandler := handler.NewCatalogHandler(catalogService, validator)
	cardHandler := handler.NewCardHandler(cardService, validator)
	checkInHandler := handler.NewCheckInHandler(checkInService, customerService, checkInRepo, studioClock)
	paymentHandler := handler.NewPaymentHandler(paymentService, validator)
	reportHandler := handler.NewReportHandler(reportService, studioClock)

	// Router
	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:5173",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE",
		AllowCredentials: true,
	}))
	app.Use(fiberLogger.New())
	app.Use(limiter.New(limiter.Config{
		Max:        60,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	}))

	api := app.Group("/api")

	// Public routes
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)

	// Catalog is public so the purchase page can render without a login
	api.Get("/catalog", catalogHandler.GetActiveCardTypes)
	api.Get("/catalog/:id", catalogHandler.GetCardType)

	// Stripe webhook (public)
	api.Post("/payments/webhook", paymentHandler.HandleStripeWebhook)

	// Staff routes
	api.Use(middleware.AuthMiddleware())
	{
		auth.Post("/change-password", authHandler.ChangePassword)

		customers := api.Group("/customers")
		customers.Post("/", customerHandler.Create)
		customers.Get("/search", customerHandler.Search)
		customers.Get("/:id", customerHandler.Get)
		customers.Put("/:id", customerHandler.Update)
		customers.Get("/:id/qr", customerHandler.BadgeQR)
		customers.Post("/:id/family", customerHandler.AddFamilyMember)
		customers.Get("/:id/family", customerHandler.GetFamilyMembers)
		customers.Post("/:id/waiver", customerHandler.UploadWaiver)
		customers.Get("/:id/waiver", customerHandler.GetWaiver)
		customers.Get("/:id/purchases", paymentHandler.GetCustomerPurchaseHistory)

		checkins := api.Group("/checkins")
		checkins.Post("/", checkInHandler.CheckIn)
		checkins.Get("/today", checkInHandler.ListToday)
		checkins.Get("/history", checkInHandler.OwnerHistory)
		checkins.Get("/birthday-eligibility", checkInHandler.BirthdayEligibility)

		cards := api.Group("/cards")
		cards.Get("/", cardHandler.ListOwnerCards)

		payments := api.Group("/payments")
		payments.Post("/checkout/:cardTypeId", paymentHandler.CreateCheckoutSession)

		// Admin routes
		admin := api.Group("/admin", middleware.AdminOnly())
		admin.Post("/catalog", catalogHandler.CreateCardType)
		admin.Put("/catalog/:id", catalogHandler.UpdateCardType)
		admin.Delete("/catalog/:id", catalogHandler.DeactivateCardType)
		admin.Post("/cards/admin-pass", cardHandler.IssueAdminPass)
		admin.Get("/purchases", paymentHandler.GetPurchaseHistory)
		admin.Get("/reports/revenue", reportHandler.Revenue)
		admin.Get("/reports/attendance", reportHandler.Attendance)
		admin.Get("/reports/membership", reportHandler.Membership)
	}

	logger.Info("Starting server", zap.String("port", cfg.Port))
	log.Fatal(app.Listen(":" + cfg.Port))
}
