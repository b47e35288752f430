package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/izowooi/golden-burger/internal/bot"
	"github.com/izowooi/golden-burger/internal/config"
	"github.com/izowooi/golden-burger/internal/database"
	"github.com/izowooi/golden-burger/internal/logger"
	"github.com/izowooi/golden-burger/internal/notify"
	"github.com/izowooi/golden-burger/internal/polymarket"
	"github.com/izowooi/golden-burger/internal/repository"
	"github.com/izowooi/golden-burger/internal/strategy"
)

func main() {
	configPath := flag.String("config", "./configs", "directory containing config.yml")
	simulate := flag.Bool("simulate", false, "force simulation mode, overriding config")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *simulate {
		cfg.Simulation = true
	}
	if err := cfg.Finalize(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format, cfg.JobName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting trading bot",
		zap.String("strategy", cfg.Trading.Strategy),
		zap.Bool("simulation", cfg.Simulation),
		zap.String("database", cfg.Database.DSN))

	db, err := database.NewDatabase(cfg.Database.DSN)
	if err != nil {
		log.Fatal("Failed to open trade store", zap.Error(err))
	}

	strat, err := strategy.New(cfg.Trading)
	if err != nil {
		log.Fatal("Failed to build strategy", zap.Error(err))
	}

	gamma := polymarket.NewGammaClient(&cfg.Polymarket, log)
	clob := polymarket.NewClobClient(&cfg.Polymarket, cfg.Simulation, log)
	notifier := notify.NewSlack(cfg.Slack.WebhookURL, log)
	repo := repository.New(db)

	b := bot.New(log, &cfg, repo, gamma, clob, strat, notifier)

	// The bot is invoked on a schedule (cron, systemd timer); one invocation
	// runs one cycle.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := b.RunCycle(ctx); err != nil {
		log.Error("Trading cycle failed", zap.Error(err))
		if nerr := notifier.SendErrorReport(context.Background(), cfg.JobName, err); nerr != nil {
			log.Error("Failed to send error report", zap.Error(nerr))
		}
		os.Exit(1)
	}
}
