package handlers

import (
	"context"
	"net/http"
	"time"

	"tribe-backend/pkg/database"
	"tribe-backend/pkg/utils"
)

// HealthHandler 健康检查
type HealthHandler struct {
	pool *database.Pool
}

func NewHealthHandler(pool *database.Pool) *HealthHandler {
	return &HealthHandler{pool: pool}
}

// GET /
func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	utils.WriteRawJSON(w, http.StatusOK, map[string]string{"message": "We up up!"})
}

// GET /healthz 检查存储连接
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	stats := h.pool.Stats()
	if err := h.pool.HealthCheck(ctx); err != nil {
		stats["status"] = "unhealthy"
		stats["error"] = err.Error()
		utils.WriteJSONResponse(w, http.StatusServiceUnavailable, stats)
		return
	}
	stats["status"] = "healthy"
	utils.WriteSuccessResponse(w, stats)
}
