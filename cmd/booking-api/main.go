package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/GAMA-00/gato-app-sub001/api/swagger"
	"github.com/GAMA-00/gato-app-sub001/internal/coalesce"
	"github.com/GAMA-00/gato-app-sub001/internal/handler"
	"github.com/GAMA-00/gato-app-sub001/internal/middleware"
	"github.com/GAMA-00/gato-app-sub001/internal/models"
	"github.com/GAMA-00/gato-app-sub001/internal/repository"
	"github.com/GAMA-00/gato-app-sub001/internal/service"
	"github.com/GAMA-00/gato-app-sub001/pkg/cache"
	"github.com/GAMA-00/gato-app-sub001/pkg/config"
	"github.com/GAMA-00/gato-app-sub001/pkg/database"
	"github.com/GAMA-00/gato-app-sub001/pkg/logger"
	corsmiddleware "github.com/GAMA-00/gato-app-sub001/pkg/middleware/cors"
	reqidmiddleware "github.com/GAMA-00/gato-app-sub001/pkg/middleware/requestid"
)

// @title Gato Booking API
// @version 0.1.0
// @description Recurrence and slot-availability engine for residential service bookings
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("database connection failed", "error", err)
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, availability caching disabled", "error", err)
			redisClient = nil
		}
	}

	// repositories
	appointmentRepo := repository.NewAppointmentRepository(db)
	ruleRepo := repository.NewRecurringRuleRepository(db)
	instanceRepo := repository.NewRecurringInstanceRepository(db)
	slotRepo := repository.NewProviderSlotRepository(db)
	listingRepo := repository.NewListingRepository(db)

	// services
	metricsSvc := service.NewMetricsService()
	var cacheSvc *service.CacheService
	if redisClient != nil {
		cacheSvc = service.NewCacheService(repository.NewCacheRepository(redisClient, logr), metricsSvc, cfg.Cache.SlotTTL, logr, true)
	}
	reconciler := service.NewReconcilerService(logr)
	conflictSvc := service.NewConflictService(
		appointmentRepo, ruleRepo, slotRepo, metricsSvc, logr,
		cfg.Booking.ProjectionWeeks, time.Duration(cfg.Booking.SlotSizeMinutes)*time.Minute,
	)
	calendarSvc := service.NewCalendarService(appointmentRepo, instanceRepo, ruleRepo, reconciler, nil, logr)
	slotSvc := service.NewSlotService(
		slotRepo, appointmentRepo, conflictSvc, listingRepo,
		cacheSvc, coalesce.New(cfg.Booking.CoalesceWindow), metricsSvc, nil, logr, cfg.Booking,
	)
	bookingSvc := service.NewBookingService(appointmentRepo, ruleRepo, listingRepo, conflictSvc, cacheSvc, nil, logr)
	ruleSvc := service.NewRuleService(ruleRepo, cacheSvc, logr)

	// handlers
	availabilityHandler := handler.NewAvailabilityHandler(slotSvc)
	bookingHandler := handler.NewBookingHandler(bookingSvc)
	calendarHandler := handler.NewCalendarHandler(calendarSvc, nil)
	if cfg.Export.Enabled {
		exportSvc := service.NewAgendaExportService(calendarSvc, listingRepo, nil, nil, nil, logr)
		calendarHandler = handler.NewCalendarHandler(calendarSvc, exportSvc)
	}
	ruleHandler := handler.NewRuleHandler(ruleSvc)

	pingers := []func(context.Context) error{
		func(ctx context.Context) error { return db.PingContext(ctx) },
	}
	if redisClient != nil {
		pingers = append(pingers, func(ctx context.Context) error { return redisClient.Ping(ctx).Err() })
	}
	metricsHandler := handler.NewMetricsHandler(metricsSvc, pingers...)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.GET("/providers/:id/availability", middleware.OptionalJWT(cfg.JWT.Secret), availabilityHandler.Slots)
		api.GET("/providers/:id/calendar", middleware.JWT(cfg.JWT.Secret), calendarHandler.Calendar)
		api.GET("/providers/:id/agenda/export",
			middleware.JWT(cfg.JWT.Secret),
			middleware.RequireRoles(models.RoleProvider),
			calendarHandler.Export,
		)

		api.POST("/bookings",
			middleware.JWT(cfg.JWT.Secret),
			middleware.RequireRoles(models.RoleClient),
			bookingHandler.Create,
		)
		api.POST("/bookings/:id/cancel", middleware.JWT(cfg.JWT.Secret), bookingHandler.Cancel)

		rules := api.Group("/recurring-rules", middleware.JWT(cfg.JWT.Secret))
		{
			rules.GET("", ruleHandler.List)
			rules.GET("/:id", ruleHandler.Get)
			rules.DELETE("/:id", ruleHandler.Deactivate)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting",
		"addr", addr,
		"env", cfg.Env,
		"coalesce_window", cfg.Booking.CoalesceWindow.String(),
		"slot_cache", cacheSvc.Enabled(),
		"slot_cache_ttl", cfg.Cache.SlotTTL.String(),
	)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
