package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"warnetbook/internal/auth"
	"warnetbook/internal/booking"
	"warnetbook/internal/config"
	"warnetbook/internal/logger"
	"warnetbook/internal/membership"
	"warnetbook/internal/timewallet"
	"warnetbook/internal/user"
	"warnetbook/internal/venue"
	"warnetbook/internal/wallet"
)

// Handlers groups the HTTP surface of every domain package.
type Handlers struct {
	Users       *user.Handler
	Venues      *venue.Handler
	Memberships *membership.Handler
	Bookings    *booking.Handler
	Wallet      *wallet.Handler
	TimeWallets *timewallet.Handler
}

type Server struct {
	router *gin.Engine
	http   *http.Server
}

func New(cfg *config.Config, sqlDB *sqlx.DB, rdb redis.Cmdable, h Handlers) *Server {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		RequestIDMiddleware(),
		RequestLoggingMiddleware(),
		MetricsMiddleware(),
		corsMiddleware(),
		RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst),
		TimeoutMiddleware(cfg.RequestTimeout),
	)

	registerRoutes(router, cfg.JWTSecret, h)

	router.GET("/health", Health(sqlDB, rdb))
	router.GET("/metrics", Metrics())
	SetupSwagger(router)

	return &Server{
		router: router,
		http: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

func registerRoutes(router *gin.Engine, jwtSecret string, h Handlers) {
	public := router.Group("/auth")
	{
		public.POST("/register", h.Users.Register)
		public.POST("/register/member", h.Users.RegisterMember)
		public.POST("/login", h.Users.Login)
		public.POST("/refresh", h.Users.RefreshToken)
	}

	authMiddleware := auth.AuthMiddleware(jwtSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", h.Users.GetMe)

		protected.GET("/venues", h.Venues.List)
		protected.GET("/venues/:venueID", h.Venues.Get)
		protected.POST("/venues/:venueID/membership", h.Memberships.Join)
		protected.GET("/memberships", h.Memberships.ListMine)

		protected.POST("/bookings", h.Bookings.Create)
		protected.GET("/bookings", h.Bookings.ListMine)
		protected.GET("/bookings/:bookingID", h.Bookings.Get)
		protected.POST("/bookings/:bookingID/confirm-payment", h.Bookings.ConfirmPayment)
		protected.POST("/bookings/:bookingID/cancel", h.Bookings.Cancel)
		protected.POST("/bookings/:bookingID/start", h.Bookings.StartSession)
		protected.POST("/bookings/:bookingID/complete", h.Bookings.Complete)
		protected.GET("/bookings/:bookingID/remaining", h.Bookings.Remaining)

		protected.GET("/wallet", h.Wallet.GetBalance)
		protected.GET("/wallet/transactions", h.Wallet.ListTransactions)
		protected.POST("/wallet/topups", h.Wallet.RequestTopup)

		protected.GET("/time-wallets", h.TimeWallets.ListMine)
		protected.GET("/time-wallets/venue/:venueID", h.TimeWallets.GetForVenue)
		protected.POST("/time-wallets/:walletID/activate", h.TimeWallets.Activate)
		protected.POST("/time-wallets/:walletID/deactivate", h.TimeWallets.Deactivate)
		protected.PATCH("/time-wallets/:walletID/remaining", h.TimeWallets.SyncRemaining)
	}

	operator := router.Group("/operator")
	operator.Use(authMiddleware, auth.RequireRole(auth.RoleOperator))
	{
		operator.POST("/venues", h.Venues.Create)
		operator.GET("/venues/:venueID/bookings", h.Bookings.ListByVenue)
		operator.GET("/venues/:venueID/stats", h.Bookings.Stats)
		operator.GET("/venues/:venueID/members", h.Memberships.ListByVenue)

		operator.GET("/topups/pending", h.Wallet.ListPending)
		operator.POST("/topups/:txID/approve", h.Wallet.Approve)
		operator.POST("/topups/:txID/reject", h.Wallet.Reject)
		operator.POST("/refunds", h.Wallet.IssueRefund)

		operator.GET("/users/:userID/wallet", h.Wallet.GetUserBalance)
		operator.GET("/users/:userID/transactions", h.Wallet.ListUserTransactions)
		operator.GET("/users/:userID/reconcile", h.Wallet.Reconcile)

		operator.POST("/time-wallets/credit", h.TimeWallets.Credit)
	}
}

// Router exposes the engine for in-process tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", s.http.Addr)
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("HTTP server shutting down")
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
