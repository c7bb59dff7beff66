package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/BuzzLyutic/todo-api/internal/config"
	"github.com/BuzzLyutic/todo-api/internal/handler"
	"github.com/BuzzLyutic/todo-api/internal/repo"
	"github.com/BuzzLyutic/todo-api/internal/service"
	"github.com/BuzzLyutic/todo-api/internal/worker"
)

func main() {
	cmd := &cli.Command{
		Name:  "todo-api",
		Usage: "To-Do list HTTP service backed by a JSON file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a TOML config file",
				Sources: cli.EnvVars("CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Path to a .env file",
				Value: ".env",
			},
			&cli.StringFlag{Name: "port", Usage: "Port to listen on"},
			&cli.StringFlag{Name: "data", Usage: "Path to the JSON data file"},
			&cli.StringFlag{Name: "index", Usage: "Path to the HTML served on /"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
			&cli.DurationFlag{Name: "progress-interval", Usage: "Log progress at this interval (0 disables)"},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	// Загрузка конфигурации
	if err := config.LoadDotenv(cmd.String("env-file")); err != nil {
		return err
	}
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}
	applyFlags(&cfg, cmd)

	// Подключаем логгер
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	taskRepo := repo.NewFileRepo(cfg.DataFile)
	taskService := service.NewTaskService(taskRepo)
	router := handler.NewRouter(
		handler.NewTaskHandler(taskService, logger),
		handler.NewStaticHandler(cfg.IndexFile, logger),
		logger,
	)
	logger.Info("Using data file", zap.String("path", taskRepo.Path()))

	var reporter *worker.Reporter
	if cfg.ProgressInterval > 0 {
		reporter = worker.NewReporter(taskService, logger, cfg.ProgressInterval)
		reporter.Start(ctx)
	}

	srv := http.Server{ // Создаем сервер
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() { // Запуск сервера и обработка ошибок
		logger.Info("Server started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	select {
	case <-quit:
	case err := <-serveErr:
		logger.Error("Server failed", zap.Error(err))
		return err
	}

	logger.Info("Shutting down server...")
	if reporter != nil {
		reporter.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("Server stopped successfully!")
	return nil
}

func applyFlags(cfg *config.Config, cmd *cli.Command) {
	if cmd.IsSet("port") {
		cfg.Port = cmd.String("port")
	}
	if cmd.IsSet("data") {
		cfg.DataFile = cmd.String("data")
	}
	if cmd.IsSet("index") {
		cfg.IndexFile = cmd.String("index")
	}
	if cmd.IsSet("log-level") {
		cfg.LogLevel = cmd.String("log-level")
	}
	if cmd.IsSet("progress-interval") {
		cfg.ProgressInterval = cmd.Duration("progress-interval")
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}
