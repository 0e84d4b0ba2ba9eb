package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/skybooking/config"
	"github.com/Domenick1991/skybooking/internal/bootstrap"
	"github.com/Domenick1991/skybooking/internal/cache"
	"github.com/Domenick1991/skybooking/internal/cancellation"
	"github.com/Domenick1991/skybooking/internal/clock"
	"github.com/Domenick1991/skybooking/internal/inventory"
	"github.com/Domenick1991/skybooking/internal/kafka"
	"github.com/Domenick1991/skybooking/internal/repository"
	"github.com/Domenick1991/skybooking/internal/service/booking"
	"github.com/Domenick1991/skybooking/internal/service/slots"
	"github.com/Domenick1991/skybooking/internal/tracing"
	"github.com/Domenick1991/skybooking/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	policy, err := cancellation.NewPolicyFromConfig(cfg.Cancellation)
	if err != nil {
		log.Fatalf("cancellation policy: %v", err)
	}
	log.Printf("cancellation tiers in %s: %v", policy.Location(), policy.Tiers())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, cfg.Observability.ServiceName, cfg.Observability.OTLPEndpoint)
	if err != nil {
		log.Fatalf("init tracing: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Printf("WARN: tracing shutdown: %v", err)
		}
	}()

	var (
		store        inventory.Store
		reservations repository.ReservationRepository
		checks       []bootstrap.Check
	)
	seed := inventory.SlotsFromConfig(cfg.Inventory.Seed)

	switch cfg.Inventory.Backend {
	case config.BackendMemory:
		store = inventory.NewMemory(seed...)
		reservations = repository.NewMemoryReservationRepository()
		log.Printf("using in-memory inventory with %d slots", len(seed))
	case config.BackendPostgres:
		pool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			log.Fatalf("connect postgres: %v", err)
		}
		defer pool.Close()

		if err := migrations.Apply(ctx, pool); err != nil {
			log.Fatalf("apply migrations: %v", err)
		}
		slotRepo := repository.NewSlotRepository(pool)
		for _, slot := range seed {
			if err := slotRepo.Create(ctx, slot); err != nil {
				log.Fatalf("seed slot %s: %v", slot.ID, err)
			}
		}
		store = slotRepo
		reservations = repository.NewReservationRepository(pool)
		checks = append(checks, pool.Ping)
	}

	slotsTTL := time.Duration(cfg.Booking.SlotsCacheTTL) * time.Second
	bookingOpts := []booking.BookingServiceOption{
		booking.WithIdempotencyTTL(time.Duration(cfg.Booking.IdempotencyTTLMinutes) * time.Minute),
		booking.WithMaxAttempts(cfg.Inventory.MaxCASAttempts),
	}

	var slotCache slots.SlotCache
	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedisCache(cfg.Redis, slotsTTL)
		defer redisCache.Close()
		slotCache = redisCache
		bookingOpts = append(bookingOpts, booking.WithCache(redisCache))
		checks = append(checks, redisCache.Ping)
	}

	if len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.Kafka.Brokers)
		defer producer.Close()
		if err := producer.CheckConnection(ctx); err != nil {
			log.Printf("WARN: kafka unavailable at startup, events will be dropped until it recovers: %v", err)
		}
		bookingOpts = append(bookingOpts,
			booking.WithProducer(producer, cfg.Kafka.ReservationTopic),
			booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		)
	}

	slotService := slots.NewSlotService(store, slotCache)
	bookingService := booking.NewBookingService(reservations, store, policy, clock.NewSystem(), bookingOpts...)

	if err := bootstrap.Run(ctx, cfg, slotService, bookingService, checks...); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
