package rest

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"shopPulse/business/similarity"
	"shopPulse/domain"
	"shopPulse/pkg/logger"
	"shopPulse/pkg/metrics"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	RecommendationHandler struct {
		similarityService SimilarityService
		validate          *validator.Validate
		timeout           time.Duration
	}

	SimilarityService interface {
		GetSimilarProducts(ctx context.Context, tenantID, productID string, limit int, similarityType string, minScore float64) ([]domain.ProductRecommendation, error)
		SubmitFeedback(ctx context.Context, input similarity.SubmitFeedbackInput) (string, error)
		GetRecommendationStats(ctx context.Context, tenantID string) ([]domain.FeedbackStat, error)
	}

	SubmitFeedbackRequest struct {
		ProductID          string         `json:"product_id" validate:"required"`
		RecommendationType string         `json:"recommendation_type" validate:"omitempty,oneof=trending similar"`
		FeedbackType       string         `json:"feedback_type" validate:"required,oneof=click purchase dismiss rating"`
		Rating             int            `json:"rating" validate:"gte=0,lte=5"`
		Comment            string         `json:"comment" validate:"max=1000"`
		Metadata           map[string]any `json:"metadata"`
	}
)

func NewRecommendationHandler(similarityService SimilarityService) *RecommendationHandler {
	return &RecommendationHandler{
		similarityService: similarityService,
		validate:          validator.New(),
		timeout:           10 * time.Second,
	}
}

// GET /api/v1/recommendations/similar/:productId?limit=10&type=&min_score=
func (h *RecommendationHandler) GetSimilar(c echo.Context) error {
	tenant, ok := tenantID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	productID := c.Param("productId")
	if productID == "" {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "product id is required"})
	}

	limit := queryInt(c, "limit", 10)
	similarityType := c.QueryParam("type")

	minScore := 0.0
	if raw := c.QueryParam("min_score"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed < 0 || parsed > 1 {
			return c.JSON(http.StatusBadRequest, ResponseError{Message: "min_score must be between 0 and 1"})
		}
		minScore = parsed
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	started := time.Now()

	recs, err := h.similarityService.GetSimilarProducts(ctx, tenant, productID, limit, similarityType, minScore)
	if err != nil {
		logger.Error("failed to get similar products", "tenant_id", tenant, "product_id", productID, "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	metrics.SimilarRequestLatency.Observe(time.Since(started).Seconds())

	return c.JSON(http.StatusOK, fres.Response.StatusOK(recs))
}

// POST /api/v1/recommendations/feedback
func (h *RecommendationHandler) SubmitFeedback(c echo.Context) error {
	tenant, ok := tenantID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}
	user, ok := userID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	var req SubmitFeedbackRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	input := similarity.SubmitFeedbackInput{
		TenantID:           tenant,
		UserID:             user,
		ProductID:          req.ProductID,
		RecommendationType: req.RecommendationType,
		FeedbackType:       req.FeedbackType,
		Rating:             req.Rating,
		Comment:            req.Comment,
		Metadata:           req.Metadata,
	}

	feedbackID, err := h.similarityService.SubmitFeedback(ctx, input)
	if err != nil {
		logger.Error("failed to submit feedback", "tenant_id", tenant, "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(map[string]any{
		"feedback_id": feedbackID,
	}))
}

// GET /api/v1/recommendations/stats (admin)
func (h *RecommendationHandler) GetStats(c echo.Context) error {
	tenant, ok := tenantID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	stats, err := h.similarityService.GetRecommendationStats(ctx, tenant)
	if err != nil {
		logger.Error("failed to get recommendation stats", "tenant_id", tenant, "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(stats))
}
