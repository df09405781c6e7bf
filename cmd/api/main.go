package main

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/campushour/tutoring-api/api/swagger"
	"github.com/campushour/tutoring-api/db"
	"github.com/campushour/tutoring-api/internal/handler"
	"github.com/campushour/tutoring-api/internal/middleware"
	"github.com/campushour/tutoring-api/internal/models"
	"github.com/campushour/tutoring-api/internal/repository"
	"github.com/campushour/tutoring-api/internal/service"
	"github.com/campushour/tutoring-api/pkg/cache"
	"github.com/campushour/tutoring-api/pkg/config"
	"github.com/campushour/tutoring-api/pkg/database"
	"github.com/campushour/tutoring-api/pkg/logger"
	"github.com/campushour/tutoring-api/pkg/migrate"
	corsmiddleware "github.com/campushour/tutoring-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campushour/tutoring-api/pkg/middleware/requestid"
)

// @title CampusHour Tutoring API
// @version 0.1.0
// @description Availability and booking scheduling engine for peer tutoring
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx := context.Background()

	dbConn, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer dbConn.Close()

	if cfg.Database.AutoMigrate {
		migrations, err := fs.Sub(db.Migrations, "migrations")
		if err != nil {
			logr.Sugar().Fatalw("failed to open embedded migrations", "error", err)
		}
		if err := migrate.Up(ctx, dbConn, migrations); err != nil {
			logr.Sugar().Fatalw("failed to apply migrations", "error", err)
		}
	}

	var cacheRepo *repository.CacheRepository
	if cfg.Booking.EnableAvailability {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to redis", "error", err)
		}
		defer redisClient.Close()
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
	} else {
		cacheRepo = repository.NewCacheRepository(nil, logr)
	}

	availabilityRepo := repository.NewAvailabilityRepository(dbConn)
	slotRepo := repository.NewSlotRepository(dbConn)
	bookingRepo := repository.NewBookingRepository(dbConn)
	sessionRepo := repository.NewSessionRepository(dbConn)
	cancellationRepo := repository.NewCancellationRepository(dbConn)
	profileRepo := repository.NewProfileRepository(dbConn)
	courseRepo := repository.NewCourseRepository(dbConn)

	validate := validator.New()
	metrics := service.NewMetricsService()
	locks := service.NewTutorLocks()

	notifications := service.NewNotificationService(service.NewLogSender(logr), cfg.Notifications, logr)
	notifications.Start(ctx)
	defer notifications.Stop()

	tokens := service.NewTokenService(cfg.JWT.Secret, 0)
	conflicts := service.NewConflictService(sessionRepo, logr)
	sessions := service.NewSessionService(dbConn, sessionRepo, cancellationRepo, availabilityRepo, profileRepo, notifications, cfg.Booking.CancelNotice, logr)
	availability := service.NewAvailabilityService(dbConn, availabilityRepo, slotRepo, cacheRepo, conflicts, sessions, notifications, locks, metrics, cfg.Booking.SlotDuration, cfg.Booking.AvailabilityTTL, logr)
	bookings := service.NewBookingService(dbConn, bookingRepo, sessions, sessionRepo, profileRepo, courseRepo, notifications, locks, cfg.Booking.SlotDuration, validate, logr)
	exports := service.NewExportService(sessionRepo, cancellationRepo, logr)

	if cfg.Sweep.Enabled {
		sweeper := service.NewCompletionSweeper(sessions, cfg.Sweep.Schedule, logr)
		if err := sweeper.Start(); err != nil {
			logr.Sugar().Fatalw("failed to start completion sweeper", "error", err)
		}
		defer sweeper.Stop()
	}

	availabilityHandler := handler.NewAvailabilityHandler(availability, metrics)
	bookingHandler := handler.NewBookingHandler(bookings, metrics)
	sessionHandler := handler.NewSessionHandler(sessions, metrics)
	exportHandler := handler.NewExportHandler(exports)
	metricsHandler := handler.NewMetricsHandler(metrics)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := dbConn.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(tokens))
	{
		tutors := api.Group("/tutors")
		{
			tutors.GET("/:id/availability", availabilityHandler.GetWeekly)
			tutors.GET("/:id/availability/suggest", availabilityHandler.SuggestRange)
			tutors.GET("/:id/slots", availabilityHandler.GetSlots)
		}

		mine := api.Group("/me/availability", middleware.RequireRoles(models.RoleTutor))
		{
			mine.PUT("", availabilityHandler.ReplaceWeekly)
			mine.POST("/removals/preview", availabilityHandler.PreviewRemoval)
			mine.POST("/removals", availabilityHandler.RemoveWindows)
		}

		booking := api.Group("/bookings")
		{
			booking.POST("", middleware.RequireRoles(models.RoleTutee), bookingHandler.Submit)
			booking.GET("/inbox", middleware.RequireRoles(models.RoleTutor), bookingHandler.Inbox)
			booking.POST("/:id/response", middleware.RequireRoles(models.RoleTutor), bookingHandler.Respond)
		}

		api.GET("/sessions", sessionHandler.List)
		api.POST("/sessions/:id/cancel", sessionHandler.Cancel)

		if cfg.Exports.Enabled {
			api.GET("/exports/schedule.pdf", exportHandler.SchedulePDF)
			api.GET("/exports/cancellations.csv", middleware.RequireRoles(models.RoleAdmin), exportHandler.CancellationsCSV)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
