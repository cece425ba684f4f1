package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/streadway/amqp"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"petbox/internal/config"
	"petbox/internal/handlers"
	"petbox/internal/middleware"
	"petbox/internal/models"
	"petbox/internal/repositories"
	"petbox/internal/scheduler"
	"petbox/internal/services"
	"petbox/pkg/gateway"
	"petbox/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// --- Database ---
	db, err := openDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	err = db.AutoMigrate(
		&models.Product{},
		&models.User{},
		&models.Pet{},
		&models.Address{},
		&models.Order{},
		&models.OrderItem{},
		&models.Subscription{},
		&models.PaymentSession{},
		&models.DiscountRule{},
		&models.FulfillmentRun{},
	)
	if err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// --- Initialize RabbitMQ Client ---
	mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
	if err != nil {
		log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
	}
	defer mqClient.Close() // Ensure the connection is closed on exit

	// --- Initialize Gateway Client ---
	gwClient, err := gateway.NewClient(gateway.Config{
		MerchantID: cfg.GatewayMerchantID,
		SecretKey:  cfg.GatewaySecretKey,
		Endpoint:   cfg.GatewayEndpoint,
	})
	if err != nil {
		log.Fatalf("Failed to initialize gateway client: %v", err)
	}

	// --- Initialize Repositories ---
	productRepo := repositories.NewGORMProductRepository(db)
	sessionRepo := repositories.NewGORMSessionRepository(db)
	subscriptionRepo := repositories.NewGORMSubscriptionRepository(db)
	discountRepo := repositories.NewGORMDiscountRepository(db)
	txManager := repositories.NewGORMTxManager(db)

	if err := discountRepo.Seed(); err != nil {
		log.Fatalf("Failed to seed discount rules: %v", err)
	}
	seedProducts(productRepo)

	// --- Initialize Services ---
	discountService := services.NewDiscountService(discountRepo)
	identityService := services.NewIdentityService(cfg.JWTSecret)
	orderService := services.NewOrderService(txManager, discountService)
	checkoutService := services.NewCheckoutService(
		sessionRepo, productRepo, discountService, gwClient,
		cfg.GatewaySuccessURL, cfg.GatewayFailURL,
	)
	shippingService := services.NewQueueShippingService(mqClient, "petbox-carrier")
	reconcilerService := services.NewReconcilerService(sessionRepo, orderService, mqClient, shippingService)
	subscriptionService := services.NewSubscriptionService(subscriptionRepo)

	// --- Initialize Handlers ---
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService)
	paymentHandler := handlers.NewPaymentHandler(reconcilerService)
	orderHandler := handlers.NewOrderHandler(orderService)
	subscriptionHandler := handlers.NewSubscriptionHandler(subscriptionService)

	// --- Initialize Fiber App ---
	app := fiber.New()

	// --- Middleware ---
	app.Use(logger.New()) // Request logger
	app.Use(middleware.ResolveBuyer(identityService))

	// --- API Routes ---
	apiV1 := app.Group("/api/v1")
	checkoutHandler.RegisterRoutes(apiV1)
	paymentHandler.RegisterRoutes(apiV1)
	orderHandler.RegisterRoutes(apiV1)
	subscriptionHandler.RegisterRoutes(apiV1)

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// --- Background Workers ---
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Mail worker: consumes order-confirmation events and hands them to the
	// external mail collaborator.
	if consumerErr := mqClient.ConsumeNotifications(handleNotification); consumerErr != nil {
		log.Printf("Failed to start notification consumer: %v", consumerErr)
	}

	fulfillment := scheduler.NewFulfillmentScheduler(subscriptionRepo, cfg.FulfillmentInterval)
	go fulfillment.Run(ctx)

	reaper := scheduler.NewSessionReaper(sessionRepo, cfg.SessionTTL, cfg.SessionTTL/2)
	go reaper.Run(ctx)

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", cfg.AppPort)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-quit
	log.Println("Shutting down server...")
	cancel()

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	log.Println("Server gracefully stopped")
}

// openDatabase selects the driver from config: Postgres in production,
// SQLite everywhere else.
func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	if cfg.Environment == "production" {
		return gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	}
	return gorm.Open(sqlite.Open(cfg.DatabaseDSN), &gorm.Config{})
}

// handleNotification processes one notification-queue message. The real mail
// dispatch belongs to the external mail collaborator; failures here are
// logged and requeued, never propagated into order processing.
func handleNotification(msg amqp.Delivery) error {
	var event map[string]interface{}
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		log.Printf("Dropping unparseable notification (tag %d): %v", msg.DeliveryTag, err)
		return nil
	}
	log.Printf("Dispatching notification %v for order %v", event["type"], event["order_id"])
	return nil
}

// seedProducts populates the catalog with starter boxes when it is empty.
func seedProducts(repo repositories.ProductRepository) {
	existing, err := repo.GetAll()
	if err != nil || len(existing) > 0 {
		return
	}

	products := []models.Product{
		{ID: "box-small", Name: "Small Dog Box", Description: "Monthly treats and toys for small dogs", Price: 24.90, Stock: 100},
		{ID: "box-large", Name: "Large Dog Box", Description: "Monthly treats and toys for large dogs", Price: 34.90, Stock: 100},
		{ID: "box-cat", Name: "Cat Box", Description: "Monthly treats and toys for cats", Price: 22.90, Stock: 100},
	}

	for i := range products {
		if err := repo.Create(&products[i]); err != nil {
			log.Printf("Error seeding product %s: %v", products[i].Name, err)
		}
	}
}
