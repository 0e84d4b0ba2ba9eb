package bootstrap

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/Domenick1991/skybooking/api"
	"github.com/Domenick1991/skybooking/config"
	"github.com/Domenick1991/skybooking/internal/metrics"
	"github.com/Domenick1991/skybooking/internal/service/booking"
	"github.com/Domenick1991/skybooking/internal/service/slots"
	"github.com/Domenick1991/skybooking/internal/tracing"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

const readinessInterval = 10 * time.Second

// Check reports whether a dependency is usable. Checks back /healthz and the
// gRPC health service.
type Check func(ctx context.Context) error

type Servers struct {
	grpcServer *grpc.Server
	health     *health.Server
	httpServer *http.Server
	checks     []Check
}

// Run starts the gRPC health server and the HTTP API and blocks until ctx is
// canceled or a server fails.
func Run(ctx context.Context, cfg *config.Config, slotSvc slots.SlotUseCase, bookingSvc booking.BookingUseCase, checks ...Check) error {
	s := newServers(cfg, slotSvc, bookingSvc, checks)

	errCh := make(chan error, 2)

	lis, err := net.Listen("tcp", cfg.GRPC.Address)
	if err != nil {
		return fmt.Errorf("listen gRPC %s: %w", cfg.GRPC.Address, err)
	}
	go func() { errCh <- s.grpcServer.Serve(lis) }()
	go func() { errCh <- s.httpServer.ListenAndServe() }()
	go s.watchReadiness(ctx, readinessInterval)

	log.Printf("http listening on %s, grpc health on %s", cfg.HTTP.Address, cfg.GRPC.Address)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.health.Shutdown()
		s.grpcServer.GracefulStop()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newServers(cfg *config.Config, slotSvc slots.SlotUseCase, bookingSvc booking.BookingUseCase, checks []Check) *Servers {
	grpcSrv := grpc.NewServer()
	healthSrv := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcSrv, healthSrv)

	return &Servers{
		grpcServer: grpcSrv,
		health:     healthSrv,
		httpServer: &http.Server{
			Addr:              cfg.HTTP.Address,
			Handler:           NewRouter(cfg, slotSvc, bookingSvc, checks...),
			ReadHeaderTimeout: 5 * time.Second,
		},
		checks: checks,
	}
}

// NewRouter wires the HTTP API, metrics, health and docs endpoints.
func NewRouter(cfg *config.Config, slotSvc slots.SlotUseCase, bookingSvc booking.BookingUseCase, checks ...Check) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), tracing.Middleware(), metrics.Middleware(cfg.Observability.MetricsPath))

	api.NewSlotHandler(slotSvc).Register(router.Group("/slots"))
	api.NewReservationHandler(bookingSvc).Register(router.Group("/reservations"))

	router.GET(cfg.Observability.MetricsPath, gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		if err := runChecks(c.Request.Context(), checks); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if cfg.HTTP.SwaggerDir != "" {
		router.Static("/swagger", cfg.HTTP.SwaggerDir)
		router.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL("/swagger/skybooking.swagger.json"))))
	}
	return router
}

func (s *Servers) watchReadiness(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		s.updateHealth(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Servers) updateHealth(ctx context.Context) {
	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	status := grpc_health_v1.HealthCheckResponse_SERVING
	if err := runChecks(checkCtx, s.checks); err != nil {
		log.Printf("WARN: readiness check failed: %v", err)
		status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", status)
}

func runChecks(ctx context.Context, checks []Check) error {
	for _, check := range checks {
		if err := check(ctx); err != nil {
			return err
		}
	}
	return nil
}
