package rest

import (
	"context"
	"net/http"
	"time"

	"shopPulse/domain"
	"shopPulse/pkg/logger"
	"shopPulse/pkg/metrics"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
)

type (
	TrendingHandler struct {
		trendingService TrendingService
		timeout         time.Duration
	}

	TrendingService interface {
		GetTrendingProducts(ctx context.Context, tenantID, category, timeFrame string, limit int) ([]domain.ProductRecommendation, error)
		CalculateTrendingScores(ctx context.Context, tenantID string) error
	}
)

func NewTrendingHandler(trendingService TrendingService) *TrendingHandler {
	return &TrendingHandler{
		trendingService: trendingService,
		timeout:         10 * time.Second,
	}
}

// GET /api/v1/trending?category=&time_frame=day&limit=10
func (h *TrendingHandler) GetTrending(c echo.Context) error {
	tenant, ok := tenantID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	category := c.QueryParam("category")
	timeFrame := c.QueryParam("time_frame")
	limit := queryInt(c, "limit", 10)

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	started := time.Now()

	recs, err := h.trendingService.GetTrendingProducts(ctx, tenant, category, timeFrame, limit)
	if err != nil {
		logger.Error("failed to get trending products", "tenant_id", tenant, "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	metrics.TrendingRequestLatency.Observe(time.Since(started).Seconds())

	return c.JSON(http.StatusOK, fres.Response.StatusOK(recs))
}

// POST /api/v1/trending/recalculate (admin)
func (h *TrendingHandler) Recalculate(c echo.Context) error {
	tenant, ok := tenantID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	// Recalculation walks every time frame; the read timeout is too tight.
	ctx, cancel := context.WithTimeout(c.Request().Context(), 60*time.Second)
	defer cancel()

	if err := h.trendingService.CalculateTrendingScores(ctx, tenant); err != nil {
		logger.Error("failed to recalculate trending scores", "tenant_id", tenant, "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("trending scores recalculated"))
}
