package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"

	"warnetbook/internal/app"
	"warnetbook/internal/config"
	"warnetbook/internal/db"
	"warnetbook/internal/logger"
	"warnetbook/internal/venue"
)

func main() {
	logger.Init()

	if err := newCLI().Run(os.Args); err != nil {
		logger.Fatalf("warnetctl: %v", err)
	}
}

func newCLI() *cli.App {
	return &cli.App{
		Name:  "warnetctl",
		Usage: "Administer a warnetbook deployment",
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "Apply pending database migrations",
				Action: func(c *cli.Context) error {
					return withApp(c, func(_ context.Context, cfg *config.Config, a *app.App) error {
						if err := db.RunMigrations(a.DB, cfg.MigrationsPath); err != nil {
							return err
						}
						fmt.Fprintln(c.App.Writer, "migrations applied")
						return nil
					})
				},
			},
			{
				Name:  "create-operator",
				Usage: "Create an operator account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"OPERATOR_PASSWORD"}},
				},
				Action: func(c *cli.Context) error {
					return withApp(c, func(ctx context.Context, _ *config.Config, a *app.App) error {
						u, err := a.Users.CreateOperator(ctx, c.String("name"), c.String("email"), c.String("password"))
						if err != nil {
							return err
						}
						return printJSON(c, u)
					})
				},
			},
			{
				Name:  "create-venue",
				Usage: "Register a warnet venue",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "address", Required: true},
					&cli.StringFlag{Name: "description"},
					&cli.StringFlag{Name: "regular-rate", Required: true, Usage: "Rupiah per hour"},
					&cli.StringFlag{Name: "member-rate", Required: true, Usage: "Rupiah per hour"},
					&cli.IntFlag{Name: "resources", Required: true, Usage: "number of PCs"},
					&cli.StringFlag{Name: "hours", Value: "24/7"},
				},
				Action: func(c *cli.Context) error {
					req, err := venueRequest(c)
					if err != nil {
						return err
					}
					return withApp(c, func(ctx context.Context, _ *config.Config, a *app.App) error {
						v, err := a.Venues.Create(ctx, req)
						if err != nil {
							return err
						}
						return printJSON(c, v)
					})
				},
			},
			{
				Name:  "reconcile",
				Usage: "Compare a user's stored balance with the sum of completed ledger entries",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "user", Required: true},
				},
				Action: func(c *cli.Context) error {
					return withApp(c, func(ctx context.Context, _ *config.Config, a *app.App) error {
						rec, err := a.Wallet.Reconcile(ctx, c.Int("user"))
						if err != nil {
							return err
						}
						if err := printJSON(c, rec); err != nil {
							return err
						}
						if !rec.Consistent {
							return cli.Exit("balance does not match ledger", 2)
						}
						return nil
					})
				},
			},
		},
	}
}

func venueRequest(c *cli.Context) (venue.CreateVenueRequest, error) {
	regular, err := decimal.NewFromString(c.String("regular-rate"))
	if err != nil {
		return venue.CreateVenueRequest{}, fmt.Errorf("invalid --regular-rate: %w", err)
	}
	member, err := decimal.NewFromString(c.String("member-rate"))
	if err != nil {
		return venue.CreateVenueRequest{}, fmt.Errorf("invalid --member-rate: %w", err)
	}

	return venue.CreateVenueRequest{
		Name:                c.String("name"),
		Address:             c.String("address"),
		Description:         c.String("description"),
		RegularPricePerHour: regular,
		MemberPricePerHour:  member,
		TotalResources:      c.Int("resources"),
		OperatingHours:      c.String("hours"),
	}, nil
}

func withApp(c *cli.Context, fn func(ctx context.Context, cfg *config.Config, a *app.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx := c.Context
	database, rdb, err := app.Connect(ctx, cfg)
	if err != nil {
		return err
	}

	a := app.New(cfg, database, rdb)
	defer a.Close()

	return fn(ctx, cfg, a)
}

func printJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
