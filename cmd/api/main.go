package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/agrimarket-api/internal/application/auth"
	"github.com/jhoicas/agrimarket-api/internal/application/cart"
	"github.com/jhoicas/agrimarket-api/internal/application/catalog"
	"github.com/jhoicas/agrimarket-api/internal/application/checkout"
	"github.com/jhoicas/agrimarket-api/internal/application/messaging"
	"github.com/jhoicas/agrimarket-api/internal/application/order"
	"github.com/jhoicas/agrimarket-api/internal/application/profile"
	"github.com/jhoicas/agrimarket-api/internal/infrastructure/cache"
	infrapdf "github.com/jhoicas/agrimarket-api/internal/infrastructure/pdf"
	"github.com/jhoicas/agrimarket-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/agrimarket-api/internal/interfaces/http"
	"github.com/jhoicas/agrimarket-api/pkg/config"
	"github.com/jhoicas/agrimarket-api/pkg/logger"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("configuración inválida")
	}
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	if cfg.DB.AutoMigrate {
		if err := postgres.RunMigrations(cfg.DB.ConnectionString(), log); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Redis es opcional: sin REDIS_ADDR no hay caché ni límite de intentos de login.
	var rdb *redis.Client
	var productCache catalog.ProductCache = catalog.NopCache{}
	if cfg.Redis.Enabled() {
		rdb = cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis no responde, se continúa sin caché")
		}
		productCache = cache.NewProductCache(rdb, cfg.Redis.TTL)
		defer rdb.Close()
	}

	userRepo := postgres.NewUserRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	cartRepo := postgres.NewCartRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	messageRepo := postgres.NewMessageRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	profileUC := profile.NewProfileUseCase(userRepo)
	productUC := catalog.NewProductUseCase(productRepo, productCache, log)
	cartUC := cart.NewCartUseCase(cartRepo, productRepo)
	checkoutUC := checkout.NewCheckoutUseCase(userRepo, txRunner, log).WithCache(productCache)
	messageUC := messaging.NewMessageUseCase(userRepo, messageRepo)

	// PDF: comprobante de pedido
	receiptGenerator := infrapdf.NewMarotoReceiptGenerator(cfg.App.Name)
	orderUC := order.NewOrderUseCase(orderRepo, productRepo, receiptGenerator)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: cfg.Swagger.FilePath,
		Path:     "docs",
		Title:    "AgriMarket API",
	}))

	app.Get("/health", httpRouter.HealthHandler(cfg.App.Name, pool))

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		ProfileUC:   profileUC,
		ProductUC:   productUC,
		CartUC:      cartUC,
		CheckoutUC:  checkoutUC,
		OrderUC:     orderUC,
		MessageUC:   messageUC,
		JWTSecret:   cfg.JWT.Secret,
		AuthLimiter: httpRouter.RateLimit(rdb, "auth", cfg.Redis.AuthRateLimit, time.Minute),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
