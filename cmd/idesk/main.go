package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/invoicedesk/idesk/internal/buildinfo"
	"github.com/invoicedesk/idesk/internal/cli"
	"github.com/invoicedesk/idesk/internal/config"
	"github.com/invoicedesk/idesk/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	app, err := cli.NewApp(cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}
	defer app.Close()

	root := cli.NewRootCmd(app)
	if err := root.ExecuteContext(ctx); err != nil {
		log.Fatalf("%v", err)
	}
}
