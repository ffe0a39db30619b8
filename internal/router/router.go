package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/openmeadow/eventreg/internal/config"
	"github.com/openmeadow/eventreg/internal/handler"
	"github.com/openmeadow/eventreg/internal/middleware"
)

// Deps bundles everything the route table needs.  The handlers own
// their dependencies; the router only wires paths to them and hangs
// the right middleware on each group.
type Deps struct {
	Cfg      config.Config
	RateCfg  config.RateLimitConfig
	CacheCfg config.CacheConfig
	Redis    *redis.Client
	Auth     *handler.AuthHandler
	Public   *handler.PublicHandler
	Staff    *handler.StaffHandler
}

// RegisterRoutes mounts all routes on the echo instance.  Every /v1
// route is tenant-scoped; the staff group additionally requires a
// staff JWT whose tenant claim matches the request tenant.
func RegisterRoutes(e *echo.Echo, d Deps) {
	e.GET("/health", handler.Health)

	v1 := e.Group("/v1", middleware.RequireTenant())

	v1.POST("/auth/login", d.Auth.Login)

	// Public attendee endpoints.  Registration is the abuse magnet, so
	// it alone carries the token-bucket limiter; the calendar reads go
	// through the response cache instead.
	v1.POST("/events/:event_id/registrations", d.Public.Register,
		middleware.NewTokenBucket(d.RateCfg, d.Redis))
	v1.GET("/events/:event_id/occurrences", d.Public.Occurrences,
		middleware.NewCalendarCache(d.CacheCfg, d.Redis))
	v1.GET("/events/:event_id/capacity", d.Public.Capacity)
	v1.GET("/registrations/token/:token", d.Public.LookupByToken)
	v1.DELETE("/registrations/token/:token", d.Public.CancelByToken)

	// Staff check-in desk.
	staff := v1.Group("/staff",
		middleware.StaffAuth(d.Cfg.JWTSecret),
		middleware.RequireRole("STAFF", "ADMIN"),
	)
	staff.POST("/registrations/:id/checkin", d.Staff.CheckIn)
	staff.POST("/registrations/:id/undo-checkin", d.Staff.UndoCheckIn)
	staff.POST("/registrations/:id/no-show", d.Staff.NoShow)
	staff.DELETE("/registrations/:id", d.Staff.Cancel)
	staff.GET("/events/:event_id/stats", d.Staff.Stats)
}
