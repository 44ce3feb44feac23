package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"                           // import the Echo web framework to handle routing
	"github.com/prometheus/client_golang/prometheus/promhttp" // /metrics exposition
	"github.com/redis/go-redis/v9"                          // shared by cache and rate limiter

	"github.com/iliyamo/cinecito/internal/config"     // cache, rate limit and auth settings
	"github.com/iliyamo/cinecito/internal/handler"    // handlers implementing each endpoint
	"github.com/iliyamo/cinecito/internal/middleware" // auth, cache and rate limit middleware
	"github.com/iliyamo/cinecito/internal/utils"      // operator role name
)

// Handlers are the endpoint implementations the router wires up.
type Handlers struct {
	Health    *handler.HealthHandler
	Auth      *handler.AuthHandler
	Showtimes *handler.ShowtimeHandler
	Movies    *handler.MovieHandler
}

// Options carry what the route middleware needs.  Redis may be nil, which
// turns caching and rate limiting off.
type Options struct {
	Config    config.Config
	Cache     config.CacheConfig
	RateLimit config.RateLimitConfig
	Redis     *redis.Client
}

// RegisterRoutes registers the health and metrics endpoints, which never
// require a token.
func RegisterRoutes(e *echo.Echo, h Handlers, o Options) {
	e.GET("/healthz", h.Health.Check)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()),
		middleware.MetricsBasicAuth(o.Config.MetricsUser, o.Config.MetricsPassword))
}

// RegisterAuth registers the operator login.  /v1/auth/me exists only when
// authentication is enabled; login answers 404 otherwise.
func RegisterAuth(e *echo.Echo, h Handlers, o Options) {
	g := e.Group("/v1/auth")
	g.POST("/login", h.Auth.Login, middleware.NewTokenBucket(o.RateLimit, o.Redis))
	if o.Config.AuthEnabled() {
		g.GET("/me", h.Auth.Me, writeGuards(o)...)
	}
}

// RegisterShowtimes registers the scheduler endpoints.  Reads are public
// and cached, except availability, which always asks the store.  Writes are
// rate limited and, with auth enabled, need an operator token.  Every
// successful write invalidates the showtime cache.
func RegisterShowtimes(e *echo.Echo, h Handlers, o Options) {
	// static segment; the router prefers it over /:id
	e.GET("/v1/showtimes/availability", h.Showtimes.Availability)

	g := e.Group("/v1/showtimes", middleware.NewRedisCache(o.Cache, o.Redis, "showtimes"))
	g.GET("", h.Showtimes.List)
	g.GET("/:id", h.Showtimes.Get)

	w := writeGuards(o)
	g.POST("", h.Showtimes.Schedule, w...)
	g.PUT("/:id", h.Showtimes.Reschedule, w...)
	g.PATCH("/:id", h.Showtimes.Reschedule, w...)
	g.DELETE("/:id", h.Showtimes.Cancel, w...)
}

// RegisterMovies registers the catalog endpoints with the same read/write
// split as showtimes.
func RegisterMovies(e *echo.Echo, h Handlers, o Options) {
	g := e.Group("/v1/movies", middleware.NewRedisCache(o.Cache, o.Redis, "movies"))
	g.GET("", h.Movies.Search)
	g.GET("/:id", h.Movies.Get)

	w := writeGuards(o)
	g.POST("", h.Movies.Create, w...)
	g.PUT("/:id", h.Movies.Update, w...)
	g.DELETE("/:id", h.Movies.Delete, w...)
}

// Register wires every route group.
func Register(e *echo.Echo, h Handlers, o Options) {
	RegisterRoutes(e, h, o)
	RegisterAuth(e, h, o)
	RegisterShowtimes(e, h, o)
	RegisterMovies(e, h, o)
}

// writeGuards authenticates first so the rate limiter can key on the
// operator.  Without an admin hash configured only the limiter applies.
func writeGuards(o Options) []echo.MiddlewareFunc {
	limit := middleware.NewTokenBucket(o.RateLimit, o.Redis)
	if !o.Config.AuthEnabled() {
		return []echo.MiddlewareFunc{limit}
	}
	return []echo.MiddlewareFunc{
		middleware.JWTAuth(o.Config.JWTSecret),
		middleware.RequireRole(utils.RoleAdmin),
		limit,
	}
}
