package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"tomorrow-reminder/internal/bot"
	"tomorrow-reminder/internal/clock"
	"tomorrow-reminder/internal/config"
	"tomorrow-reminder/internal/notify"
	"tomorrow-reminder/internal/service"
	"tomorrow-reminder/internal/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "reminder: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	backend, closeBackend, err := openBackend(cfg)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	defer closeBackend()

	clk := clock.System{}
	store := storage.NewStore(backend, clk, logger)

	// Sweep tasks older than yesterday before anything renders.
	store.PurgeExpired()

	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return fmt.Errorf("bot api: %w", err)
	}

	binding := notify.NewChatBinding(cfg.ChatID)
	dispatcher := notify.NewEcho(
		notify.NewTelegram(api, binding, clk, logger),
		notify.NewConsole(logger),
	)
	scanner := service.NewScanner(store, dispatcher, clk, logger)

	telegramBot := bot.New(api, store, scanner, binding, clk, logger)

	scheduler := service.NewScheduler(time.Local)
	if _, err := scheduler.Every(cfg.ScanInterval, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		scanner.Scan(jobCtx)
	}); err != nil {
		return fmt.Errorf("schedule scans: %w", err)
	}
	if _, err := scheduler.Daily(cfg.PurgeAt, func() {
		store.PurgeExpired()
	}); err != nil {
		return fmt.Errorf("schedule purge: %w", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Immediate pass so reminders due while the app was down for less than a
	// minute still fire; older minutes are not replayed.
	scanner.Scan(ctx)

	logger.Info("tomorrow-reminder started",
		zap.Duration("scan_interval", cfg.ScanInterval),
		zap.String("storage_driver", cfg.StorageDriver),
	)

	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("bot stopped: %w", err)
	}
	logger.Info("shutdown complete")
	return nil
}

func newLogger() (*zap.Logger, error) {
	logCfg := zap.NewProductionConfig()
	logCfg.Encoding = "console"
	logCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if os.Getenv("DEBUG") != "" {
		logCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return logCfg.Build()
}

func openBackend(cfg config.Config) (storage.Backend, func(), error) {
	switch cfg.StorageDriver {
	case config.DriverFile:
		return storage.NewFileBackend(cfg.StoragePath), func() {}, nil
	default:
		backend, err := storage.OpenRecordBackend(cfg.StoragePath)
		if err != nil {
			return nil, nil, err
		}
		return backend, func() { backend.Close() }, nil
	}
}
