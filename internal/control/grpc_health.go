package control

import (
	"context"
	"fmt"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/vietddude/httpguard/internal/core/domain"
	"github.com/vietddude/httpguard/internal/errorstate"
)

// UpstreamService is the gRPC health service name tracking the upstream API.
const UpstreamService = "httpguard.Upstream"

// HealthService reports upstream availability over the standard gRPC health
// protocol. It is NOT_SERVING while the current error is transient-class.
type HealthService struct {
	health      *health.Server
	grpc        *grpc.Server
	port        int
	unsubscribe func()
}

// NewHealthService creates the service and starts following state.
func NewHealthService(state *errorstate.State, port int) *HealthService {
	h := &HealthService{
		health: health.NewServer(),
		grpc:   grpc.NewServer(),
		port:   port,
	}
	healthpb.RegisterHealthServer(h.grpc, h.health)

	h.apply(state.Snapshot())
	h.unsubscribe = state.Subscribe(h.apply)
	return h
}

func (h *HealthService) apply(snap domain.Snapshot) {
	status := healthpb.HealthCheckResponse_SERVING
	if snap.Error != nil && domain.IsRetriableStatus(snap.Error.StatusCode) {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.health.SetServingStatus("", status)
	h.health.SetServingStatus(UpstreamService, status)
}

// Status returns the current status of service ("" for the whole server).
func (h *HealthService) Status(ctx context.Context, service string) (healthpb.HealthCheckResponse_ServingStatus, error) {
	resp, err := h.health.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, err
	}
	return resp.GetStatus(), nil
}

// Start listens on the configured port and serves until Stop.
func (h *HealthService) Start() error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", h.port))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	return h.Serve(lis)
}

// Serve serves on lis until Stop.
func (h *HealthService) Serve(lis net.Listener) error {
	return h.grpc.Serve(lis)
}

// Stop marks every service NOT_SERVING and shuts the server down.
func (h *HealthService) Stop() {
	h.unsubscribe()
	h.health.Shutdown()
	h.grpc.GracefulStop()
}
