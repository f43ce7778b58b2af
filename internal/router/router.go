package router

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/patient-api/internal/handler"
	"github.com/jwalitptl/patient-api/internal/handler/prometheus"
	"github.com/jwalitptl/patient-api/internal/middleware"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Config struct {
	RateLimit rate.Limit
	RateBurst int
}

type Router struct {
	engine   *gin.Engine
	auth     *middleware.AuthMiddleware
	authH    Handler
	patientH Handler
	h        *handler.Handler
	promH    *prometheus.Handler
	config   Config
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	authH Handler,
	patientH Handler,
	h *handler.Handler,
	promH *prometheus.Handler,
	config Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)

	r := &Router{
		engine:   gin.New(),
		auth:     auth,
		authH:    authH,
		patientH: patientH,
		h:        h,
		promH:    promH,
		config:   config,
	}

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate:  config.RateLimit,
		Burst: config.RateBurst,
	})

	r.engine.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.ErrorHandler(),
		promH.Middleware(),
		rateLimiter.RateLimit(),
	)

	return r
}

func (r *Router) Setup() {
	r.engine.GET("/health", r.h.HealthCheck)
	r.engine.GET("/metrics", r.promH.Handler())

	api := r.engine.Group("/api/v1")
	r.authH.RegisterRoutes(api)

	protected := api.Group("")
	protected.Use(r.auth.Authenticate())
	r.patientH.RegisterRoutes(protected)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
