package router

import (
	"shopPulse/internal/rest"

	"github.com/labstack/echo/v4"
)

func SetupActivityRoutes(api *echo.Group, handler *rest.ActivityHandler, authRequired echo.MiddlewareFunc, adminOnly echo.MiddlewareFunc) {
	activities := api.Group("/activities", authRequired)

	activities.POST("/views", handler.TrackView)
	activities.GET("/recently-viewed", handler.GetRecentlyViewed)
	activities.GET("/popular", handler.GetPopularProducts)

	activities.POST("/cleanup", handler.Cleanup, adminOnly)
}

func SetupTrendingRoutes(api *echo.Group, handler *rest.TrendingHandler, authRequired echo.MiddlewareFunc, adminOnly echo.MiddlewareFunc) {
	trending := api.Group("/trending", authRequired)

	trending.GET("", handler.GetTrending)

	trending.POST("/recalculate", handler.Recalculate, adminOnly)
}

func SetupRecommendationRoutes(api *echo.Group, handler *rest.RecommendationHandler, authRequired echo.MiddlewareFunc, adminOnly echo.MiddlewareFunc) {
	recommendations := api.Group("/recommendations", authRequired)

	recommendations.GET("/similar/:productId", handler.GetSimilar)
	recommendations.POST("/feedback", handler.SubmitFeedback)

	recommendations.GET("/stats", handler.GetStats, adminOnly)
}
