package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/organimart/organimart-backend/api/routes"
	"github.com/organimart/organimart-backend/internal/auth"
	"github.com/organimart/organimart-backend/internal/cart"
	"github.com/organimart/organimart-backend/internal/categories"
	"github.com/organimart/organimart-backend/internal/certifications"
	"github.com/organimart/organimart-backend/internal/notifications"
	"github.com/organimart/organimart-backend/internal/orders"
	"github.com/organimart/organimart-backend/internal/products"
	"github.com/organimart/organimart-backend/internal/profiles"
	"github.com/organimart/organimart-backend/internal/rfq"
	"github.com/organimart/organimart-backend/internal/users"
	"github.com/organimart/organimart-backend/pkg/config"
	"github.com/organimart/organimart-backend/pkg/db"
	"github.com/organimart/organimart-backend/pkg/logger"
	"github.com/organimart/organimart-backend/pkg/migrate"
	"github.com/organimart/organimart-backend/pkg/outbox"
	"github.com/organimart/organimart-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	usersRepo := users.NewRepository(dbClient.DB())
	profilesRepo := profiles.NewRepository(dbClient.DB())
	categoriesRepo := categories.NewRepository(dbClient.DB())
	productsRepo := products.NewRepository(dbClient.DB())
	cartRepo := cart.NewRepository(dbClient.DB())
	ordersRepo := orders.NewRepository(dbClient.DB())
	rfqRepo := rfq.NewRepository(dbClient.DB())
	certificationsRepo := certifications.NewRepository(dbClient.DB())
	notificationsRepo := notifications.NewRepository(dbClient.DB())
	outboxSvc := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       usersRepo,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	usersService, err := users.NewService(usersRepo, dbClient, outboxSvc)
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}

	profilesService, err := profiles.NewService(profilesRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create profiles service", err)
		os.Exit(1)
	}

	categoriesService, err := categories.NewService(categoriesRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create categories service", err)
		os.Exit(1)
	}

	productsService, err := products.NewService(productsRepo, profilesRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create products service", err)
		os.Exit(1)
	}

	cartService, err := cart.NewService(cartRepo, productsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(orders.ServiceParams{
		Repo:     ordersRepo,
		Carts:    cartRepo,
		Products: productsRepo,
		Sellers:  profilesRepo,
		Tx:       dbClient,
		Outbox:   outboxSvc,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	rfqService, err := rfq.NewService(rfq.ServiceParams{
		Repo:    rfqRepo,
		Sellers: profilesRepo,
		Tx:      dbClient,
		Outbox:  outboxSvc,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create rfq service", err)
		os.Exit(1)
	}

	certificationsService, err := certifications.NewService(certifications.ServiceParams{
		Repo:     certificationsRepo,
		Sellers:  profilesRepo,
		Products: productsRepo,
		Tx:       dbClient,
		Outbox:   outboxSvc,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create certifications service", err)
		os.Exit(1)
	}

	notificationsService, err := notifications.NewService(notificationsRepo, usersRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:                cfg,
			Logger:                logg,
			DBPinger:              dbClient,
			RedisClient:           redisClient,
			UserLoader:            usersRepo,
			AuthService:           authService,
			RegisterService:       registerService,
			UsersService:          usersService,
			ProfilesService:       profilesService,
			CategoriesService:     categoriesService,
			ProductsService:       productsService,
			CartService:           cartService,
			OrdersService:         ordersService,
			RFQService:            rfqService,
			CertificationsService: certificationsService,
			NotificationsService:  notificationsService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
