package main

import (
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/bookably/booking-app/availability"
	"github.com/bookably/booking-app/booking"
	"github.com/bookably/booking-app/controllers"
	"github.com/bookably/booking-app/cron"
	"github.com/bookably/booking-app/db"
	"github.com/bookably/booking-app/metrics"
	"github.com/bookably/booking-app/redis"
	"github.com/bookably/booking-app/routes"
)

func main() {
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	db.Init()
	metrics.Register()

	var slotCache *redis.SlotCache
	if os.Getenv("REDIS_ADDR") != "" {
		redis.InitRedis()
		slotCache = redis.NewSlotCache(redis.Client)
	} else {
		slotCache = redis.NewSlotCache(nil)
		logger.Warn().Msg("REDIS_ADDR not set, slot caching disabled")
	}

	resolver := availability.NewResolver(availability.NewGormRuleStore(db.DB))
	svc := booking.NewService(
		booking.NewGormStore(db.DB),
		booking.NewGormDirectory(db.DB),
		resolver,
		slotCache,
		logger.With().Str("component", "booking").Logger(),
	)
	controllers.Setup(svc, slotCache)

	sweeper, err := cron.StartSweepScheduler(svc, logger.With().Str("component", "sweep").Logger())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to start sweep scheduler")
	}
	defer sweeper.Stop()

	app := fiber.New()
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	routes.SetupAuthRoutes(app)
	routes.SetupAvailabilityRoutes(app)
	routes.SetupAppointmentRoutes(app)
	routes.SetupScheduleRoutes(app)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}
	logger.Info().Str("port", port).Msg("server starting")
	if err := app.Listen(":" + port); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
