package main // Entry point package

import (
	"context" // Context for the schema bootstrap
	"log"     // Logging library
	"time"

	"github.com/joho/godotenv" // Load .env files in development
	"github.com/labstack/echo/v4"

	"github.com/Ronald-silva/sistema-gest-o-automotiva/internal/config"   // Internal config loader
	"github.com/Ronald-silva/sistema-gest-o-automotiva/internal/database" // MySQL pool + schema
	"github.com/Ronald-silva/sistema-gest-o-automotiva/internal/handler"
	"github.com/Ronald-silva/sistema-gest-o-automotiva/internal/queue" // Background sale consumer
	"github.com/Ronald-silva/sistema-gest-o-automotiva/internal/repository"
	"github.com/Ronald-silva/sistema-gest-o-automotiva/internal/router" // Internal router setup
)

func main() {
	_ = godotenv.Load() // Best effort; real env vars win

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureSchema(ctx, db); err != nil {
		cancel()
		log.Fatalf("schema: %v", err)
	}
	cancel()

	rdb := config.NewRedisClient() // nil when Redis is absent; middleware degrades

	users := repository.NewUserRepo(db)
	vehicles := repository.NewVehicleRepo(db)
	sales := repository.NewSaleRepo(db)
	transactions := repository.NewTransactionRepo(db)

	handler.ExposeErrorDetails(!cfg.IsProd()) // 500 bodies carry the cause outside prod

	authHandler := handler.NewAuthHandler(cfg, users)
	vehicleHandler := handler.NewVehicleHandler(vehicles)
	saleHandler := handler.NewSaleHandler(sales)
	transactionHandler := handler.NewTransactionHandler(transactions)

	e := echo.New() // Create Echo instance
	e.HideBanner = true

	router.RegisterRoutes(e)
	router.RegisterPublic(e, vehicleHandler, rdb, config.LoadCacheConfig())
	router.RegisterAuth(e, authHandler, cfg.JWTSecret, users, rdb, config.LoadRateLimitConfig())
	router.RegisterAPI(e, vehicleHandler, saleHandler, transactionHandler, cfg.JWTSecret, users)

	// Consume sale.completed events in the background. The consumer keeps
	// its own reconnect loop, so a broker outage never takes the API down.
	go func() {
		if err := queue.StartSaleConsumer(db); err != nil {
			log.Printf("sale consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
