package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rmfarias/fleetreserve/config"
	"github.com/rmfarias/fleetreserve/internal/auth"
	"github.com/rmfarias/fleetreserve/internal/bootstrap"
	"github.com/rmfarias/fleetreserve/internal/cache"
	"github.com/rmfarias/fleetreserve/internal/kafka"
	"github.com/rmfarias/fleetreserve/internal/repository"
	"github.com/rmfarias/fleetreserve/internal/service/reservation"
	"github.com/rmfarias/fleetreserve/internal/service/users"
	"github.com/rmfarias/fleetreserve/internal/service/vehicles"
	"github.com/rmfarias/fleetreserve/internal/storage"
)

func main() {
	godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Catalog.VehiclesCacheTTL)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	store, err := storage.NewLocalStore(cfg.Storage.UploadDir)
	if err != nil {
		log.Fatalf("init evidence store: %v", err)
	}

	tokens := auth.NewManager(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLMin)*time.Minute)

	reservationRepo := repository.NewReservationRepository(pool)
	vehicleRepo := repository.NewVehicleRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	reservationSvc := reservation.NewReservationService(
		reservationRepo,
		vehicleRepo,
		store,
		producer,
		cfg.Kafka.ReservationTopic,
		reservation.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)
	vehicleSvc := vehicles.NewVehicleService(vehicleRepo, redisCache)
	userSvc := users.NewUserService(userRepo, tokens)

	if err := bootstrap.Run(ctx, cfg, tokens, reservationSvc, vehicleSvc, userSvc); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
