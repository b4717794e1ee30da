package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"github.com/aidanjnn/lost-found-app/internal/app"
	"github.com/aidanjnn/lost-found-app/internal/cli"
	"github.com/aidanjnn/lost-found-app/pkg/config"
	"github.com/aidanjnn/lost-found-app/pkg/db"
	"github.com/aidanjnn/lost-found-app/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	var client *db.Client
	load := func(ctx context.Context) (*cli.Env, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		logg := logger.New(logger.Options{
			ServiceName: "lostfoundctl",
			Level:       logger.ParseLevel(cfg.App.LogLevel),
			Output:      os.Stderr,
		})

		client, err = db.New(ctx, cfg.DB, logg)
		if err != nil {
			return nil, err
		}
		services, err := app.NewServices(cfg, logg, client, nil)
		if err != nil {
			return nil, err
		}
		return &cli.Env{Users: services.Users, Claims: services.Claims, JWT: cfg.JWT}, nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cli.NewRootCommand(load).ExecuteContext(ctx)
	stop()
	if client != nil {
		_ = client.Close()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", cli.Describe(err))
		os.Exit(1)
	}
}
