// Package app wires repositories, services and transports into one process.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"warnetbook/internal/booking"
	"warnetbook/internal/config"
	"warnetbook/internal/db"
	"warnetbook/internal/email"
	"warnetbook/internal/logger"
	"warnetbook/internal/membership"
	"warnetbook/internal/server"
	"warnetbook/internal/timewallet"
	"warnetbook/internal/user"
	"warnetbook/internal/venue"
	"warnetbook/internal/wallet"
)

type App struct {
	DB    *sqlx.DB
	Redis *redis.Client

	Users       user.Service
	Venues      venue.Service
	Memberships membership.Service
	Wallet      wallet.Service
	TimeWallets timewallet.Service
	Bookings    booking.Service
	Mail        *email.Service

	server *server.Server
}

// Connect opens Postgres and Redis from cfg.
func Connect(ctx context.Context, cfg *config.Config) (*sqlx.DB, *redis.Client, error) {
	database, err := db.Connect(cfg.DatabaseURL, cfg.DBStatementTimeout)
	if err != nil {
		return nil, nil, err
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		// Redis backs the balance cache and the mail queue only.
		logger.WithError(err).Warn("redis unreachable at startup", "addr", cfg.RedisAddr)
	}

	return database, rdb, nil
}

func New(cfg *config.Config, database *sqlx.DB, rdb *redis.Client) *App {
	tx := db.NewTransactor(database)

	userRepo := user.NewRepository(database)
	venueRepo := venue.NewRepository(database)
	membershipRepo := membership.NewRepository(database)

	mail := email.New(rdb, email.Config{
		From:     cfg.EmailFrom,
		FromName: cfg.EmailFromName,
		SMTPHost: cfg.SMTPHost,
		SMTPPort: cfg.SMTPPort,
		SMTPUser: cfg.SMTPUser,
		SMTPPass: cfg.SMTPPass,
	})

	a := &App{
		DB:          database,
		Redis:       rdb,
		Users:       user.NewService(userRepo, membershipRepo, tx, cfg.JWTSecret, cfg.RefreshSecret),
		Venues:      venue.NewService(venueRepo),
		Memberships: membership.NewService(membershipRepo, tx),
		TimeWallets: timewallet.NewService(timewallet.NewRepository(database), tx),
		Mail:        mail,
	}

	receipts := email.NewReceipts(mail, a.Users)
	a.Wallet = wallet.NewService(
		wallet.NewRepository(database),
		tx,
		wallet.NewRedisBalanceCache(rdb, cfg.BalanceCacheTTL),
		receipts,
	)
	a.Bookings = booking.NewService(booking.Deps{
		Repo:        booking.NewRepository(database),
		Venues:      venueRepo,
		Memberships: a.Memberships,
		Wallet:      a.Wallet,
		TimeWallets: a.TimeWallets,
		Notifier:    receipts,
		Tx:          tx,
	}, booking.Rules{
		MinHours:            cfg.MinBookingHours,
		FirstMemberMinHours: cfg.FirstMemberMinHours,
		CancelWindow:        cfg.CancelWindow,
	})

	a.server = server.New(cfg, database, rdb, server.Handlers{
		Users:       user.NewHandler(a.Users),
		Venues:      venue.NewHandler(a.Venues),
		Memberships: membership.NewHandler(a.Memberships),
		Bookings:    booking.NewHandler(a.Bookings),
		Wallet:      wallet.NewHandler(a.Wallet),
		TimeWallets: timewallet.NewHandler(a.TimeWallets),
	})

	return a
}

// Server returns the HTTP server built by New.
func (a *App) Server() *server.Server {
	return a.server
}

// Run serves HTTP and drains the mail queue until ctx is cancelled or either
// one fails.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.server.Run(ctx)
	})
	g.Go(func() error {
		return a.Mail.Start(ctx)
	})

	return g.Wait()
}

func (a *App) Close() error {
	var errs []error
	if err := a.Redis.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close redis: %w", err))
	}
	if err := a.DB.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close database: %w", err))
	}
	return errors.Join(errs...)
}
