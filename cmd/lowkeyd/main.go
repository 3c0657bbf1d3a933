package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lowkeylabs/lowkey/config"
	"github.com/lowkeylabs/lowkey/internal/adminapi"
	"github.com/lowkeylabs/lowkey/internal/app"
	"github.com/lowkeylabs/lowkey/internal/webapi"
	"github.com/lowkeylabs/lowkey/internal/webserver"
	"go.uber.org/zap"
)

var (
	h        = flag.Bool("h", false, "help usage")
	showVer  = flag.Bool("v", false, "show version")
	conffile = flag.String("c", "", "config file")
	initdb   = flag.Bool("initdb", false, "drop and recreate all tables, then exit")
)

var version = "dev"

func main() {
	flag.Parse()
	if *h {
		flag.Usage()
		os.Exit(0)
	}
	if *showVer {
		fmt.Println("lowkeyd", version)
		os.Exit(0)
	}

	cfg := config.LoadConfig(*conffile)
	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Release()

	if *initdb {
		application.InitDb()
		zap.S().Info("database initialized")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	application.StartBackgroundJobs(ctx)

	ws := webserver.New(cfg)
	webapi.Register(ws, webapi.NewHandler(webapi.HandlerConfig{
		DB:        application.DB(),
		Catalog:   application.Catalog(),
		Checkout:  application.Checkout(),
		Access:    application.Access(),
		Verifier:  application.KeyVerifier(),
		Oracle:    application.Oracle(),
		Telegram:  application.Telegram(),
		Mailer:    application.Mailer(),
		JwtSecret: cfg.Web.JwtSecret,
	}))
	adminapi.Register(ws, adminapi.NewHandler(application.DB()))

	errCh := make(chan error, 1)
	go func() {
		errCh <- ws.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			zap.S().Fatalf("web server error: %v", err)
		}
	case sig := <-sigCh:
		zap.S().Infof("received signal %s, shutting down", sig)
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), webserver.ShutdownTimeout)
		defer shutdownCancel()
		if err := ws.Shutdown(shutdownCtx); err != nil {
			zap.S().Errorf("web server shutdown error: %v", err)
		}
	}
}
