package rest

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"shopPulse/business/activity"
	"shopPulse/domain"
	"shopPulse/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type ResponseError struct {
	Message string `json:"message"`
}

// tenantID reads the tenant scope set by the auth middleware.
func tenantID(c echo.Context) (string, bool) {
	id, ok := c.Get("tenant_id").(string)
	return id, ok && id != ""
}

func userID(c echo.Context) (string, bool) {
	id, ok := c.Get("user_id").(string)
	return id, ok && id != ""
}

func queryInt(c echo.Context, name string, fallback int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

type (
	ActivityHandler struct {
		activityService ActivityService
		validate        *validator.Validate
		timeout         time.Duration
	}

	ActivityService interface {
		TrackProductView(ctx context.Context, input activity.TrackProductViewInput) error
		GetRecentlyViewed(ctx context.Context, tenantID, userID string, limit int) ([]domain.RecentlyViewedItem, error)
		GetPopularProducts(ctx context.Context, tenantID string, limit int, timeFrame string) ([]domain.PopularProduct, error)
		CleanupOldActivities(ctx context.Context, tenantID string, daysOld int) (int64, error)
	}

	TrackViewRequest struct {
		ProductID  string         `json:"product_id" validate:"required"`
		SessionID  string         `json:"session_id"`
		DeviceType string         `json:"device_type"`
		Source     string         `json:"source"`
		ViewedAt   time.Time      `json:"viewed_at"`
		Duration   int            `json:"duration" validate:"gte=0"`
		Metadata   map[string]any `json:"metadata"`
	}

	CleanupRequest struct {
		DaysOld int `json:"days_old" validate:"gte=0"`
	}
)

func NewActivityHandler(activityService ActivityService) *ActivityHandler {
	return &ActivityHandler{
		activityService: activityService,
		validate:        validator.New(),
		timeout:         10 * time.Second,
	}
}

// POST /api/v1/activities/views
func (h *ActivityHandler) TrackView(c echo.Context) error {
	tenant, ok := tenantID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}
	user, ok := userID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	var req TrackViewRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	input := activity.TrackProductViewInput{
		TenantID:   tenant,
		UserID:     user,
		ProductID:  req.ProductID,
		SessionID:  req.SessionID,
		DeviceType: req.DeviceType,
		Source:     req.Source,
		ViewedAt:   req.ViewedAt,
		Duration:   req.Duration,
		Metadata:   req.Metadata,
	}

	if err := h.activityService.TrackProductView(ctx, input); err != nil {
		logger.Error("failed to track product view", "tenant_id", tenant, "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated("view recorded"))
}

// GET /api/v1/activities/recently-viewed?limit=10
func (h *ActivityHandler) GetRecentlyViewed(c echo.Context) error {
	tenant, ok := tenantID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}
	user, ok := userID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	limit := queryInt(c, "limit", 10)

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	items, err := h.activityService.GetRecentlyViewed(ctx, tenant, user, limit)
	if err != nil {
		logger.Error("failed to get recently viewed", "tenant_id", tenant, "user_id", user, "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(items))
}

// GET /api/v1/activities/popular?limit=10&time_frame=day
func (h *ActivityHandler) GetPopularProducts(c echo.Context) error {
	tenant, ok := tenantID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	limit := queryInt(c, "limit", 10)
	timeFrame := c.QueryParam("time_frame")

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	products, err := h.activityService.GetPopularProducts(ctx, tenant, limit, timeFrame)
	if err != nil {
		logger.Error("failed to get popular products", "tenant_id", tenant, "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(products))
}

// POST /api/v1/activities/cleanup (admin)
func (h *ActivityHandler) Cleanup(c echo.Context) error {
	tenant, ok := tenantID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	var req CleanupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	// Cleanup scans and deletes; give it more room than a read.
	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	removed, err := h.activityService.CleanupOldActivities(ctx, tenant, req.DaysOld)
	if err != nil {
		logger.Error("failed to clean up activities", "tenant_id", tenant, "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(map[string]any{
		"removed": removed,
	}))
}
