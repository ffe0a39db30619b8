package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // Loads .env files in local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/openmeadow/eventreg/internal/config"
	"github.com/openmeadow/eventreg/internal/database"
	"github.com/openmeadow/eventreg/internal/handler"
	"github.com/openmeadow/eventreg/internal/notify"
	"github.com/openmeadow/eventreg/internal/repository"
	"github.com/openmeadow/eventreg/internal/router"
	"github.com/openmeadow/eventreg/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set env vars directly

	cfg := config.Load()                      // Load environment config
	rateCfg := config.LoadRateLimitConfig()   // Rate limiter settings
	cacheCfg := config.LoadCacheConfig()      // Calendar cache settings
	rdb := config.NewRedisClient()            // May be nil; middleware degrades

	db, err := database.Open(cfg) // Connect to MySQL
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer func() { _ = db.Close() }()

	events := repository.NewEventRepository(db)
	regs := repository.NewRegistrationRepository(db)
	staffRepo := repository.NewStaffRepository(db)
	svc := service.NewRegistrationService(events, regs)

	go notify.StartRegistrationConsumer() // Notification worker; reconnects on its own

	e := echo.New()
	router.RegisterRoutes(e, router.Deps{
		Cfg:      cfg,
		RateCfg:  rateCfg,
		CacheCfg: cacheCfg,
		Redis:    rdb,
		Auth:     handler.NewAuthHandler(cfg, staffRepo),
		Public:   handler.NewPublicHandler(svc),
		Staff:    handler.NewStaffHandler(svc),
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
