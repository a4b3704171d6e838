package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/vetdesk/frontdesk-backend/internal/observability"
)

type MetricsHandler struct {
	metrics *observability.Metrics
}

func NewMetricsHandler(metrics *observability.Metrics) *MetricsHandler {
	return &MetricsHandler{metrics: metrics}
}

// GET /metrics
func (h *MetricsHandler) Snapshot(c *gin.Context) {
	RespondOK(c, h.metrics.Snapshot())
}
