package grpc

import (
	"context"
	"time"

	"github.com/Marceldinga/TheYoungShallGrow/internal/logger"
	"github.com/Marceldinga/TheYoungShallGrow/internal/repository"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// LedgerServiceName is the service name reported alongside the overall ("") status.
const LedgerServiceName = "njangi.ledger"

const DefaultPingInterval = 30 * time.Second

// HealthService reports SERVING while the ledger store answers a ping.
type HealthService struct {
	server   *health.Server
	pinger   repository.Pinger
	interval time.Duration
}

func NewHealthService(pinger repository.Pinger, interval time.Duration) *HealthService {
	if interval <= 0 {
		interval = DefaultPingInterval
	}
	srv := health.NewServer()
	srv.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	srv.SetServingStatus(LedgerServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	return &HealthService{server: srv, pinger: pinger, interval: interval}
}

// Register adds the health service and server reflection to s.
func (h *HealthService) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.server)
	reflection.Register(s)
}

// Server exposes the underlying health server, mostly for tests.
func (h *HealthService) Server() healthpb.HealthServer {
	return h.server
}

// Run pings the store until ctx is cancelled, then marks every service NOT_SERVING.
func (h *HealthService) Run(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	h.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			h.server.Shutdown()
			return
		case <-ticker.C:
			h.Check(ctx)
		}
	}
}

// Check pings the store once and updates the serving status.
func (h *HealthService) Check(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := h.pinger.Ping(pingCtx); err != nil {
		logger.Warn("Ledger store ping failed", "error", err)
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.server.SetServingStatus("", status)
	h.server.SetServingStatus(LedgerServiceName, status)
}
