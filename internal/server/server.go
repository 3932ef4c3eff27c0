package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/farellandr/eventbuddy/config"
	"github.com/farellandr/eventbuddy/internal/handlers"
	"github.com/farellandr/eventbuddy/internal/helpers"
	"github.com/farellandr/eventbuddy/internal/ledger"
	"github.com/farellandr/eventbuddy/internal/middleware"
	"github.com/farellandr/eventbuddy/internal/models"
)

const shutdownTimeout = 10 * time.Second

type Dependencies struct {
	Config    *config.Config
	DB        *gorm.DB
	Ledger    *ledger.Ledger
	Tokens    *helpers.TokenIssuer
	Blacklist *helpers.TokenBlacklist
	Log       *slog.Logger
}

func Start(cfg *config.Config, log *slog.Logger) error {
	db, err := config.InitDatabase(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	publisher, err := config.InitPublisher(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize publisher: %w", err)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Warn("closing publisher", "error", err)
		}
	}()

	r, err := NewRouter(Dependencies{
		Config:    cfg,
		DB:        db,
		Ledger:    ledger.New(db, log, ledger.WithPublisher(publisher)),
		Tokens:    helpers.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL),
		Blacklist: helpers.NewTokenBlacklist(cfg.JWTTTL),
		Log:       log,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func NewRouter(d Dependencies) (*gin.Engine, error) {
	if err := helpers.RegisterValidators(); err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(
		middleware.Recovery(d.Log),
		middleware.RequestLogger(d.Log),
		middleware.CORS(d.Config.CORSOrigins),
	)
	setupRoutes(r, d)
	return r, nil
}

func setupRoutes(r *gin.Engine, d Dependencies) {
	r.Use(
		middleware.DatabaseMiddleware(d.DB),
		middleware.LedgerMiddleware(d.Ledger),
		middleware.ConfigMiddleware(d.Config),
		middleware.TokenMiddleware(d.Tokens, d.Blacklist),
		middleware.LoggerMiddleware(d.Log),
	)

	r.GET("/health", handlers.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := middleware.JWTAuthMiddleware(d.Tokens, d.Blacklist)
	admin := middleware.RequireRole(models.RoleAdmin)

	public := r.Group("/v1")
	{
		public.POST("/auth/register", handlers.Register)
		public.POST("/auth/login", handlers.Login)

		eventPublic := public.Group("/events")
		{
			eventPublic.GET("/all", handlers.ListAllEvents)
			eventPublic.GET("/pages/paginated", handlers.ListEventsPaginated)
			eventPublic.GET("/search/query", handlers.SearchEvents)
			eventPublic.GET("/:id", handlers.GetEvent)
		}
	}

	protected := r.Group("/v1")
	protected.Use(auth)
	{
		protected.POST("/auth/logout", handlers.Logout)
		protected.GET("/profile", handlers.GetProfile)

		users := protected.Group("/users", admin)
		{
			users.GET("", handlers.ListUsers)
			users.GET("/id/:id", handlers.GetUserByID)
			users.GET("/email/:email", handlers.GetUserByEmail)
		}

		eventProtected := protected.Group("/events")
		{
			eventProtected.POST("/:id/register", handlers.RegisterForEvent)
			eventProtected.POST("/:id/cancel", handlers.CancelRegistration)
			eventProtected.GET("/my/registrations", handlers.ListMyRegistrations)

			eventProtected.POST("", admin, handlers.CreateEvent)
			eventProtected.PUT("/:id", admin, handlers.UpdateEvent)
			eventProtected.DELETE("/:id", admin, handlers.DeleteEvent)
			eventProtected.GET("/admin/statistics", admin, handlers.GetEventStatistics)
		}

		bookings := protected.Group("/bookings")
		{
			bookings.POST("/new-booking", handlers.BookSeats)
			bookings.GET("/all-bookings", handlers.ListMyBookings)
			bookings.GET("/paginated-bookings", handlers.ListMyBookingsPaginated)
			bookings.DELETE("/cancel-booking/:id", handlers.CancelBooking)
			bookings.GET("/:id/pass", handlers.GetBookingPass)

			bookings.POST("/verify-pass", admin, handlers.VerifyBookingPass)
			bookings.GET("/admin/all-bookings", admin, handlers.AdminListBookings)
			bookings.GET("/admin/paginated-bookings", admin, handlers.AdminListBookingsPaginated)
			bookings.DELETE("/admin/cancel-booking/:id", admin, handlers.AdminCancelBooking)
		}
	}
}
