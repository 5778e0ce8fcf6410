package v1

import (
	"net/http"
	"time"

	"go-postulation-backend/config"
	"go-postulation-backend/internal/delivery/http/middleware"
	"go-postulation-backend/internal/delivery/http/response"
	"go-postulation-backend/internal/domain"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	PostulationUC domain.PostulationUsecase
	VacancyUC     domain.VacancyUsecase
	CandidateUC   domain.CandidateUsecase
	Config        *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// Global middlewares. CORS must run first so error responses carry the
	// headers too.
	r.Use(middleware.CORSMiddleware(deps.Config.FrontendURL))
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimitMiddleware(middleware.DefaultRateLimitConfig(
		deps.Config.RateLimitGlobalThreshold,
		time.Duration(deps.Config.RateLimitWindowSeconds)*time.Second,
	)))

	v1 := r.Group("/v1")

	// Health check
	v1.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, "System operational", nil)
	})

	// Swagger
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.Config))
	{
		submitLimiter := middleware.RateLimitMiddleware(middleware.SubmitRateLimitConfig(
			deps.Config.RateLimitSubmitThreshold,
			time.Duration(deps.Config.RateLimitWindowSeconds)*time.Second,
		))

		NewPostulationHandler(protected, deps.PostulationUC, submitLimiter)
		NewVacancyHandler(protected, deps.VacancyUC)
		NewCandidateHandler(protected, deps.CandidateUC)
	}

	return r
}
