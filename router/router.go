package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/tripsplit/tripsplit-backend/config"
	_ "github.com/tripsplit/tripsplit-backend/docs"
	"github.com/tripsplit/tripsplit-backend/handlers"
	"github.com/tripsplit/tripsplit-backend/logger"
	"github.com/tripsplit/tripsplit-backend/middleware"
	"github.com/tripsplit/tripsplit-backend/services"
	"github.com/tripsplit/tripsplit-backend/types"
)

// Dependencies struct holds all dependencies required for setting up routes.
type Dependencies struct {
	Config          *config.Config
	JWTValidator    middleware.Validator
	RateLimiter     services.RateLimiterInterface
	SummaryHandler  *handlers.SummaryHandler
	ReportHandler   *handlers.ReportHandler
	CurrencyHandler *handlers.CurrencyHandler
	HealthHandler   *handlers.HealthHandler
}

// SetupRouter configures and returns the main Gin engine with all routes defined.
func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if err := r.SetTrustedProxies(deps.Config.Server.TrustedProxies); err != nil {
		logger.GetLogger().Warnw("Ignoring invalid trusted proxies", "proxies", deps.Config.Server.TrustedProxies, "error", err)
		_ = r.SetTrustedProxies(nil)
	}

	// Global Middleware
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(&deps.Config.Server))
	r.Use(middleware.SecurityHeadersMiddleware(deps.Config))

	// Health and Metrics Routes (no auth)
	r.GET("/health", deps.HealthHandler.DetailedHealth)
	r.GET("/health/liveness", deps.HealthHandler.LivenessCheck)
	r.GET("/health/readiness", deps.HealthHandler.ReadinessCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if !deps.Config.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := r.Group("/v1")
	v1.Use(middleware.AuthMiddleware(deps.JWTValidator))
	v1.Use(middleware.RequestTimeout(time.Duration(deps.Config.Server.RequestTimeoutSeconds) * time.Second))
	{
		admin := middleware.RequireRole(types.RoleAdmin)

		summaryRoutes := v1.Group("/summary/trip/:id")
		{
			summaryRoutes.GET("",
				middleware.RequireRole(types.RoleAdmin, types.RoleTripCoord, types.RoleUser),
				deps.SummaryHandler.GetTripSummaryHandler)
			summaryRoutes.GET("/report",
				middleware.RequireRole(types.RoleAdmin, types.RoleTripCoord, types.RoleUser),
				deps.ReportHandler.GetReportHandler)

			rl := deps.Config.RateLimit
			summaryRoutes.POST("/close",
				middleware.RequireRole(types.RoleAdmin, types.RoleTripCoord),
				middleware.IPRateLimiter(deps.RateLimiter, "close", rl.CloseRequestsPerWindow, time.Duration(rl.WindowSeconds)*time.Second),
				deps.SummaryHandler.CloseTripHandler)
		}

		currencyRoutes := v1.Group("/currencies")
		{
			currencyRoutes.GET("", deps.CurrencyHandler.ListCurrenciesHandler)
			currencyRoutes.POST("", admin, deps.CurrencyHandler.CreateCurrencyHandler)
			currencyRoutes.POST("/refresh", admin, deps.CurrencyHandler.RefreshRatesHandler)
			currencyRoutes.GET("/:code", deps.CurrencyHandler.GetCurrencyHandler)
			currencyRoutes.PATCH("/:code", admin, deps.CurrencyHandler.UpdateCurrencyHandler)
			currencyRoutes.DELETE("/:code", admin, deps.CurrencyHandler.DeleteCurrencyHandler)
			currencyRoutes.PUT("/:code/rate", admin, deps.CurrencyHandler.UpdateRateHandler)
			currencyRoutes.GET("/:code/history", deps.CurrencyHandler.GetRateHistoryHandler)
		}
	}

	return r
}
