package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/crickettrack/cricket-api/internal/handler/alert"
	"github.com/crickettrack/cricket-api/internal/handler/auth"
	"github.com/crickettrack/cricket-api/internal/handler/favorite"
	"github.com/crickettrack/cricket-api/internal/handler/health"
	"github.com/crickettrack/cricket-api/internal/handler/match"
	"github.com/crickettrack/cricket-api/internal/middleware"
)

type Config struct {
	RateLimitEnabled bool
	RequestsPerSec   float64
	Burst            int
	CORS             middleware.CORSConfig
}

type Router struct {
	engine    *gin.Engine
	auth      *middleware.AuthMiddleware
	alertH    *alert.Handler
	authH     *auth.Handler
	matchH    *match.Handler
	favoriteH *favorite.Handler
	healthH   *health.Handler
}

func NewRouter(
	authMW *middleware.AuthMiddleware,
	alertH *alert.Handler,
	authH *auth.Handler,
	matchH *match.Handler,
	favoriteH *favorite.Handler,
	healthH *health.Handler,
	config Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	middleware.RegisterValidators()

	engine := gin.New()

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.ErrorHandler(),
	)

	engine.Use(middleware.CORS(config.CORS))

	if config.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			RPS:   config.RequestsPerSec,
			Burst: config.Burst,
		})
		engine.Use(rateLimiter.RateLimit())
	}

	return &Router{
		engine:    engine,
		auth:      authMW,
		alertH:    alertH,
		authH:     authH,
		matchH:    matchH,
		favoriteH: favoriteH,
		healthH:   healthH,
	}
}

func (r *Router) Setup() {
	api := r.engine.Group("/api/v1")

	// Public surface
	r.healthH.RegisterRoutes(api)
	r.authH.RegisterRoutes(api)
	r.matchH.RegisterRoutes(api)

	// Owner-scoped surface
	protected := api.Group("")
	protected.Use(r.auth.Authenticate())
	r.alertH.RegisterRoutes(protected)
	r.favoriteH.RegisterRoutes(protected)
	r.authH.RegisterProtectedRoutes(protected)

	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
