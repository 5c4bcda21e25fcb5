package status

import (
	"context"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"uma-bot/internal/logger"
)

// Source provides snapshots to the HTTP handler.
type Source interface {
	Snapshot() Snapshot
}

// Handler serves the status endpoints.
type Handler struct {
	Source Source
}

func (h Handler) RegisterRoutes(s *server.Hertz) {
	s.GET("/status", h.status)
	s.GET("/healthz", h.healthz)
}

func (h Handler) status(_ context.Context, ctx *app.RequestContext) {
	if h.Source == nil {
		ctx.JSON(consts.StatusServiceUnavailable, map[string]string{"error": "status not available"})
		return
	}
	ctx.JSON(consts.StatusOK, h.Source.Snapshot())
}

func (h Handler) healthz(_ context.Context, ctx *app.RequestContext) {
	ctx.JSON(consts.StatusOK, map[string]string{"status": "ok"})
}

// Serve runs the status server on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, src Source) {
	s := server.Default(server.WithHostPorts(addr))
	Handler{Source: src}.RegisterRoutes(s)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			logger.LogWarn("Status server shutdown: %v", err)
		}
	}()

	logger.LogInfo("Status server listening on %s", addr)
	if err := s.Run(); err != nil {
		logger.LogError("Status server stopped: %v", err)
	}
}
