package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"

	"github.com/wichananm65/marketplace-backend/internal/apperror"
	"github.com/wichananm65/marketplace-backend/internal/auth"
	"github.com/wichananm65/marketplace-backend/internal/cart"
	"github.com/wichananm65/marketplace-backend/internal/config"
	"github.com/wichananm65/marketplace-backend/internal/database"
	"github.com/wichananm65/marketplace-backend/internal/logger"
	"github.com/wichananm65/marketplace-backend/internal/notification"
	"github.com/wichananm65/marketplace-backend/internal/order"
	"github.com/wichananm65/marketplace-backend/internal/payment"
	"github.com/wichananm65/marketplace-backend/internal/product"
	"github.com/wichananm65/marketplace-backend/internal/shop"
	"github.com/wichananm65/marketplace-backend/internal/user"
	"github.com/wichananm65/marketplace-backend/internal/withdraw"
)

type stores struct {
	tx       database.Transactor
	products product.Repository
	shops    shop.Repository
	carts    cart.Repository
	orders   order.Repository
	users    user.Repository
	withdraw withdraw.Repository
	close    func(context.Context) error
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	log := logger.New(logger.Options{Service: "marketplace-backend", Env: cfg.AppEnv, Level: cfg.LogLevel})

	if cfg.JWTSecret == "" {
		log.Error("JWT_SECRET is not set")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg)
	if err != nil {
		log.Error("failed to open stores", slog.Any("err", err))
		os.Exit(1)
	}
	log.Info("stores ready", slog.String("store", cfg.Store))

	var cartCache cart.Cache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer rdb.Close()
		cartCache = cart.NewRedisCache(rdb)
		log.Info("cart cache enabled", slog.String("addr", cfg.RedisAddr))
	}

	sender, closeNotifications, err := openNotifications(ctx, cfg, log)
	if err != nil {
		log.Error("failed to set up notifications", slog.Any("err", err))
		os.Exit(1)
	}
	dispatcher := notification.NewDispatcher(sender, 2, 256)
	dispatcher.Start()

	userService := user.NewService(st.users)
	shopService := shop.NewService(st.shops)
	productService := product.NewService(st.products)
	cartService := cart.NewService(st.carts, cartCache, productService)
	orderService := order.NewService(st.orders, st.tx, productService, shopService, cartService)
	withdrawService := withdraw.NewService(st.withdraw, st.tx, shopService, dispatcher)

	if cfg.AdminEmail != "" {
		if err := userService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.Error("failed to seed admin account", slog.Any("err", err))
			os.Exit(1)
		}
	}

	gateway := payment.NewBreakerGateway(payment.NewStripeGateway(cfg.StripeSecretKey, nil), payment.DefaultBreakerSettings())
	tokens := auth.Issuer{Secret: cfg.JWTSecret, TTL: cfg.TokenTTL}

	userHandler := user.NewHandler(userService, tokens)
	shopHandler := shop.NewHandler(shopService, tokens)
	productHandler := product.NewHandler(productService, userService)
	cartHandler := cart.NewHandler(cartService)
	orderHandler := order.NewHandler(orderService, userService)
	withdrawHandler := withdraw.NewHandler(withdrawService)
	paymentHandler := payment.NewHandler(gateway, cfg.StripeAPIKey, cfg.PaymentCurrency)

	app := fiber.New(fiber.Config{ErrorHandler: apperror.FiberErrorHandler})
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	setupCORS(app, cfg.CORSOrigins)

	app.Get("/api/v1/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"success": true, "status": "ok"})
	})

	userHandler.RegisterPublicRoutes(app)
	shopHandler.RegisterPublicRoutes(app)
	productHandler.RegisterPublicRoutes(app)
	paymentHandler.RegisterPublicRoutes(app)

	app.Use(auth.Middleware(cfg.JWTSecret))

	userHandler.RegisterProtectedRoutes(app)
	shopHandler.RegisterProtectedRoutes(app)
	productHandler.RegisterProtectedRoutes(app)
	cartHandler.RegisterProtectedRoutes(app)
	orderHandler.RegisterProtectedRoutes(app)
	withdrawHandler.RegisterProtectedRoutes(app)
	paymentHandler.RegisterProtectedRoutes(app)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error("server shutdown failed", slog.Any("err", err))
		}
	}()

	log.Info("starting server", slog.String("addr", cfg.Addr))
	if err := app.Listen(cfg.Addr); err != nil {
		log.Error("server stopped", slog.Any("err", err))
	}
	stop()

	// Drain notifications before the outbox goes away.
	dispatcher.Close()
	closeNotifications()

	closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := st.close(closeCtx); err != nil {
		log.Error("failed to close stores", slog.Any("err", err))
	}
}

func setupCORS(app *fiber.App, origins string) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
}

func openStores(ctx context.Context, cfg config.Config) (stores, error) {
	if cfg.Store == "memory" {
		return stores{
			tx:       database.NewMemoryTransactor(),
			products: product.NewInMemoryRepository(nil),
			shops:    shop.NewInMemoryRepository(nil),
			carts:    cart.NewInMemoryRepository(nil),
			orders:   order.NewInMemoryRepository(nil),
			users:    user.NewInMemoryRepository(nil),
			withdraw: withdraw.NewInMemoryRepository(nil),
			close:    func(context.Context) error { return nil },
		}, nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	db, err := database.ConnectMongoDB(connectCtx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return stores{}, err
	}

	products := product.NewMongoRepository(db)
	shops := shop.NewMongoRepository(db)
	carts := cart.NewMongoRepository(db)
	orders := order.NewMongoRepository(db)
	users := user.NewMongoRepository(db)
	withdraws := withdraw.NewMongoRepository(db)

	indexers := []interface {
		CreateIndexes(context.Context) error
	}{products, shops, carts, orders, users, withdraws}
	for _, ix := range indexers {
		if err := ix.CreateIndexes(connectCtx); err != nil {
			_ = db.Client().Disconnect(context.Background())
			return stores{}, err
		}
	}

	return stores{
		tx:       database.NewMongoTransactor(db.Client()),
		products: products,
		shops:    shops,
		carts:    carts,
		orders:   orders,
		users:    users,
		withdraw: withdraws,
		close:    db.Client().Disconnect,
	}, nil
}

// openNotifications picks the delivery stage for seller emails. With an
// outbox database, messages are stored in Postgres and, when brokers are
// configured, relayed to Kafka by a background poller. Otherwise they are
// only logged.
func openNotifications(ctx context.Context, cfg config.Config, log *slog.Logger) (notification.Sender, func(), error) {
	if cfg.OutboxDatabaseURL == "" {
		return notification.LogSender{Logger: log}, func() {}, nil
	}

	db, err := sql.Open("pgx", cfg.OutboxDatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	outbox := notification.NewOutboxStore(db)
	if err := outbox.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}

	var writer *kafka.Writer
	if len(cfg.KafkaBrokers) > 0 {
		writer = notification.NewKafkaWriter(cfg.NotificationTopic, cfg.KafkaBrokers...)
		go notification.NewPoller(outbox, writer).Run(ctx)
		log.Info("notification relay enabled", slog.String("topic", cfg.NotificationTopic))
	}

	return outbox, func() {
		if writer != nil {
			if err := writer.Close(); err != nil {
				log.Error("failed to close kafka writer", slog.Any("err", err))
			}
		}
		db.Close()
	}, nil
}
