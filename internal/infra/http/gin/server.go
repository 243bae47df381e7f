package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"tourbook/internal/infra/config"
	"tourbook/internal/infra/obs"
)

type BookingHTTP interface {
	PackageContext(c *gin.Context)
	HotelRooms(c *gin.Context)
	Quote(c *gin.Context)
	Submit(c *gin.Context)
}

type AssignmentsHTTP interface {
	SavePackageGuides(c *gin.Context)
	SaveGuidePackages(c *gin.Context)
}

type EventsHTTP interface {
	Stream(c *gin.Context)
}

type Handlers struct {
	Booking     BookingHTTP
	Assignments AssignmentsHTTP
	Events      EventsHTTP
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewRouter(cfg, obsMW, health, h),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// NewRouter builds the engine without binding it to an address.
func NewRouter(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Booking != nil {
		api.GET("/packages/:id/booking-context", h.Booking.PackageContext)
		api.GET("/hotels/:id/rooms", h.Booking.HotelRooms)
		api.POST("/quotes", h.Booking.Quote)
		api.POST("/bookings", h.Booking.Submit)
	}
	if h.Assignments != nil {
		api.PUT("/packages/:id/guides", h.Assignments.SavePackageGuides)
		api.PUT("/guides/:id/packages", h.Assignments.SaveGuidePackages)
	}
	if h.Events != nil {
		api.GET("/events", h.Events.Stream)
	}
	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Idempotency-Key", "X-Request-ID"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
