package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/farellandr/eventick/config"
	"github.com/farellandr/eventick/internal/cache"
	"github.com/farellandr/eventick/internal/handlers"
	"github.com/farellandr/eventick/internal/logger"
	"github.com/farellandr/eventick/internal/middleware"
	"github.com/farellandr/eventick/internal/queue"
	"github.com/farellandr/eventick/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const shutdownTimeout = 30 * time.Second

// Dependencies is what the router needs. Cache is nil when redis is not
// configured.
type Dependencies struct {
	DB       *gorm.DB
	Services *services.Services
	Cache    *cache.EventCache
	Log      *zap.Logger
}

func ServiceOptions(cfg *config.Config) services.Options {
	return services.Options{
		Events: services.EventOptions{
			PinLength:      cfg.PinLength,
			PinMaxAttempts: cfg.PinMaxAttempts,
		},
		Orders: services.OrderOptions{
			AllowOversell: cfg.AllowOversell,
			PublicBaseURL: cfg.PublicBaseURL,
		},
		QRSecret:  cfg.QRSecret,
		JWTSecret: cfg.JWTSecret,
		JWTTTL:    cfg.JWTTTL,
	}
}

func QueueConfig(cfg *config.Config) queue.RedisConfig {
	return queue.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
}

func Start() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	gin.SetMode(cfg.GinMode)

	db, err := config.InitDatabase(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	deps := Dependencies{DB: db, Log: log}
	opts := ServiceOptions(cfg)

	if cfg.Redis.Addr != "" {
		rdb, err := cache.NewRedisClient(context.Background(), cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		deps.Cache = cache.NewEventCache(rdb, cfg.EventCacheTTL)
		defer deps.Cache.Close()
		opts.Events.Cache = deps.Cache

		deliveries := queue.NewClient(QueueConfig(cfg), log)
		defer deliveries.Close()
		opts.Orders.Queue = deliveries
	} else {
		log.Warn("REDIS_ADDR is not set, event cache and order delivery are disabled")
	}

	deps.Services = services.New(db, log, opts)

	if err := handlers.RegisterValidators(); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(ctx)
}

func NewRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(deps.Log))
	r.Use(middleware.RequestLogger(deps.Log))
	r.Use(middleware.Metrics())

	setupRoutes(r, deps)
	return r
}

func setupRoutes(r *gin.Engine, deps Dependencies) {
	r.Use(middleware.DatabaseMiddleware(deps.DB))
	r.Use(middleware.ServicesMiddleware(deps.Services))
	if deps.Cache != nil {
		r.Use(middleware.EventCacheMiddleware(deps.Cache))
	}

	r.GET("/", handlers.Index)
	r.GET("/healthz", handlers.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	public := r.Group("/v1")
	{
		public.POST("/auth/login", handlers.Login)
		public.POST("/orders", handlers.PlaceOrder)
		public.GET("/tickets/:id/qrcode", handlers.GetTicketQRCode)

		eventPublic := public.Group("/events")
		{
			eventPublic.GET("/pin/:pin", handlers.GetPublishedEventByPin)
			eventPublic.GET("/slug/:slug", handlers.GetPublishedEventBySlug)
		}
	}

	admin := r.Group("/v1/admin")
	admin.Use(middleware.JWTAuthMiddleware())
	{
		admin.GET("/me", handlers.GetProfile)
		admin.POST("/users", handlers.CreateAdminUser)

		events := admin.Group("/events")
		{
			events.GET("", handlers.ListEvents)
			events.POST("", handlers.CreateEvent)
			events.GET("/:id", handlers.GetEvent)
			events.PUT("/:id", handlers.UpdateEvent)
			events.DELETE("/:id", handlers.DeleteEvent)
		}

		tickets := admin.Group("/event-tickets")
		{
			tickets.GET("", handlers.ListEventTickets)
			tickets.POST("", handlers.CreateEventTicket)
			tickets.GET("/:id", handlers.GetEventTicket)
			tickets.PUT("/:id", handlers.UpdateEventTicket)
			tickets.DELETE("/:id", handlers.DeleteEventTicket)
		}

		orders := admin.Group("/orders")
		{
			orders.GET("", handlers.ListOrders)
			orders.POST("", handlers.CreateOrder)
			orders.GET("/:id", handlers.GetOrder)
			orders.PUT("/:id", handlers.UpdateOrder)
			orders.DELETE("/:id", handlers.DeleteOrder)
			orders.POST("/:id/deliver", handlers.DeliverOrder)
		}

		details := admin.Group("/order-details")
		{
			details.GET("", handlers.ListOrderDetails)
			details.POST("", handlers.CreateOrderDetail)
			details.GET("/:id", handlers.GetOrderDetail)
			details.PUT("/:id", handlers.UpdateOrderDetail)
			details.DELETE("/:id", handlers.DeleteOrderDetail)
			details.POST("/:id/fulfill", handlers.FulfillOrderDetail)
		}

		attendees := admin.Group("/ticket-details")
		{
			attendees.GET("", handlers.ListTicketDetails)
			attendees.POST("", handlers.CreateTicketDetail)
			attendees.POST("/redeem", handlers.RedeemTicket)
			attendees.GET("/:id", handlers.GetTicketDetail)
			attendees.PUT("/:id", handlers.UpdateTicketDetail)
			attendees.DELETE("/:id", handlers.DeleteTicketDetail)
		}

		clubs := admin.Group("/clubs")
		{
			clubs.GET("", handlers.ListClubs)
			clubs.POST("", handlers.CreateClub)
			clubs.GET("/:id", handlers.GetClub)
			clubs.PUT("/:id", handlers.UpdateClub)
			clubs.DELETE("/:id", handlers.DeleteClub)
		}

		registrants := admin.Group("/registrants")
		{
			registrants.GET("", handlers.ListRegistrants)
			registrants.POST("", handlers.CreateRegistrant)
			registrants.GET("/:id", handlers.GetRegistrant)
			registrants.PUT("/:id", handlers.UpdateRegistrant)
			registrants.DELETE("/:id", handlers.DeleteRegistrant)
		}
	}
}
