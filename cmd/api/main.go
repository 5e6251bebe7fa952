package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/abiagrow/connect-backend/api/routes"
	"github.com/abiagrow/connect-backend/internal/auth"
	"github.com/abiagrow/connect-backend/internal/cart"
	"github.com/abiagrow/connect-backend/internal/categories"
	"github.com/abiagrow/connect-backend/internal/checkout"
	"github.com/abiagrow/connect-backend/internal/notifier"
	"github.com/abiagrow/connect-backend/internal/orders"
	"github.com/abiagrow/connect-backend/internal/products"
	"github.com/abiagrow/connect-backend/internal/registration"
	"github.com/abiagrow/connect-backend/internal/reviews"
	"github.com/abiagrow/connect-backend/internal/stores"
	"github.com/abiagrow/connect-backend/internal/users"
	"github.com/abiagrow/connect-backend/pkg/auth/session"
	"github.com/abiagrow/connect-backend/pkg/config"
	"github.com/abiagrow/connect-backend/pkg/db"
	"github.com/abiagrow/connect-backend/pkg/env"
	"github.com/abiagrow/connect-backend/pkg/logger"
	"github.com/abiagrow/connect-backend/pkg/mailer"
	"github.com/abiagrow/connect-backend/pkg/metrics"
	"github.com/abiagrow/connect-backend/pkg/migrate"
	"github.com/abiagrow/connect-backend/pkg/pubsub"
	"github.com/abiagrow/connect-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(ctx, "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(ctx, "failed to create session manager", err)
		os.Exit(1)
	}

	mailClient, err := mailer.NewClient(cfg.Mail, logg)
	if err != nil {
		logg.Error(ctx, "failed to create mailer", err)
		os.Exit(1)
	}

	// Order events are best effort: a missing Pub/Sub configuration only
	// disables notifications.
	var orderPublisher orders.EventPublisher
	pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Warn(ctx, "pubsub unavailable, order events disabled")
	} else {
		defer func() {
			if err := pubsubClient.Close(); err != nil {
				logg.Error(ctx, "error closing pubsub", err)
			}
		}()
		orderPublisher, err = notifier.New(pubsubClient, logg)
		if err != nil {
			logg.Error(ctx, "failed to create notifier", err)
			os.Exit(1)
		}
	}

	userRepo := users.NewRepository(dbClient.DB())
	storeRepo := stores.NewRepository(dbClient.DB())
	categoryRepo := categories.NewRepository(dbClient.DB())
	productRepo := products.NewRepository(dbClient.DB())
	cartRepo := cart.NewRepository(dbClient.DB())
	orderRepo := orders.NewRepository(dbClient.DB())
	reviewRepo := reviews.NewRepository(dbClient.DB())
	registrationRepo := registration.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		Mailer:         mailClient,
		MailBuilder:    mailClient,
		JWTConfig:      cfg.JWT,
		Logger:         logg,
	})
	exitOnError(ctx, logg, "auth service", err)

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		Mailer:         mailClient,
		MailBuilder:    mailClient,
		PasswordConfig: cfg.Password,
	})
	exitOnError(ctx, logg, "register service", err)

	storeService, err := stores.NewService(storeRepo)
	exitOnError(ctx, logg, "store service", err)

	categoryService, err := categories.NewService(categoryRepo)
	exitOnError(ctx, logg, "category service", err)

	productService, err := products.NewService(products.ServiceParams{
		Repo:       productRepo,
		Stores:     storeRepo,
		Categories: categoryRepo,
	})
	exitOnError(ctx, logg, "product service", err)

	cartService, err := cart.NewService(cart.ServiceParams{
		DB:       dbClient,
		Repo:     cartRepo,
		Products: productRepo,
	})
	exitOnError(ctx, logg, "cart service", err)

	orderService, err := orders.NewService(orders.ServiceParams{
		DB:        dbClient,
		Repo:      orderRepo,
		Products:  productRepo,
		Stores:    storeRepo,
		Publisher: orderPublisher,
		Logger:    logg,
	})
	exitOnError(ctx, logg, "order service", err)

	checkoutService, err := checkout.NewService(checkout.ServiceParams{
		DB:        dbClient,
		Carts:     cartRepo,
		Orders:    orderRepo,
		Products:  productRepo,
		Publisher: orderPublisher,
		Config:    cfg.Checkout,
	})
	exitOnError(ctx, logg, "checkout service", err)

	reviewService, err := reviews.NewService(reviews.ServiceParams{
		Repo:     reviewRepo,
		Products: productRepo,
		Stores:   storeRepo,
		Orders:   orderRepo,
	})
	exitOnError(ctx, logg, "review service", err)

	registrationService, err := registration.NewService(registration.ServiceParams{
		Repo:  registrationRepo,
		Users: userRepo,
	})
	exitOnError(ctx, logg, "registration service", err)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	router := routes.NewRouter(routes.Deps{
		Config:   cfg,
		Logger:   logg,
		DB:       dbClient,
		Redis:    redisClient,
		Sessions: sessionManager,
		Users:    userRepo,

		AuthService:         authService,
		RegisterService:     registerService,
		StoreService:        storeService,
		CategoryService:     categoryService,
		ProductService:      productService,
		CartService:         cartService,
		CheckoutService:     checkoutService,
		OrderService:        orderService,
		ReviewService:       reviewService,
		RegistrationService: registrationService,

		HTTPMetrics: httpMetrics,
		Registry:    registry,
	})

	addr := ":" + env.Get("PORT", cfg.App.Port)

	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stop:
		logg.Info(ctx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}

	logg.Info(ctx, "api server stopped")
}

func exitOnError(ctx context.Context, logg *logger.Logger, what string, err error) {
	if err != nil {
		logg.Error(ctx, "failed to create "+what, err)
		os.Exit(1)
	}
}
