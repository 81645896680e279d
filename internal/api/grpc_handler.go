package api

import (
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"price-compare-storefront/internal/catalog"
)

// StorefrontServiceName is the name reported through the gRPC health protocol.
const StorefrontServiceName = "pricecompare.v1.Storefront"

// GRPCHandler exposes storefront readiness over the gRPC health checking protocol.
type GRPCHandler struct {
	health *health.Server
	log    zerolog.Logger
}

// NewGRPCHandler starts in NOT_SERVING: the storefront is unusable until
// the startup fetch completes.
func NewGRPCHandler(log zerolog.Logger) *GRPCHandler {
	h := &GRPCHandler{health: health.NewServer(), log: log}
	h.health.SetServingStatus(StorefrontServiceName, grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	return h
}

// ReportCatalog maps the catalog status onto the health status.
func (h *GRPCHandler) ReportCatalog(snap catalog.Snapshot) {
	status := grpc_health_v1.HealthCheckResponse_NOT_SERVING
	if snap.Status == catalog.StatusReady {
		status = grpc_health_v1.HealthCheckResponse_SERVING
	}
	h.health.SetServingStatus(StorefrontServiceName, status)
	h.log.Info().Str("service", StorefrontServiceName).Str("status", status.String()).Msg("gRPC health status updated")
}

// Health returns the underlying health server.
func (h *GRPCHandler) Health() grpc_health_v1.HealthServer {
	return h.health
}

// Register attaches the health and reflection services to s.
func (h *GRPCHandler) Register(s *grpc.Server) {
	grpc_health_v1.RegisterHealthServer(s, h.health)
	reflection.Register(s)
}

// Shutdown flips every service to NOT_SERVING ahead of a graceful stop.
func (h *GRPCHandler) Shutdown() {
	h.health.Shutdown()
}
