package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/GoArmGo/foodgram/internal/config"
	"github.com/GoArmGo/foodgram/internal/core/ports"
	"github.com/GoArmGo/foodgram/internal/handler"
)

// Режимы запуска
const (
	ModeServer = "server"
	ModeWorker = "worker"
)

// Pinger проверяет доступность базы данных для /healthz
type Pinger interface {
	PingContext(ctx context.Context) error
}

// ImageReleaser удаляет картинку рецепта по ее публичному URL
type ImageReleaser interface {
	Release(ctx context.Context, url string) error
}

// Deps - собранные зависимости приложения
type Deps struct {
	Services handler.Services
	Verifier handler.TokenVerifier
	Releaser ImageReleaser
	Consumer ports.ImageEventConsumer
	// DB закрывается при остановке, nil для хранилища в памяти
	DB     io.Closer
	Pinger Pinger
	// Broker - соединение RabbitMQ, nil если очередь не настроена
	Broker interface{ Close() }
}

type App struct {
	Config *config.Config
	logger *slog.Logger
	deps   Deps
}

func NewApp(cfg *config.Config, logger *slog.Logger, deps Deps) *App {
	return &App{Config: cfg, logger: logger, deps: deps}
}

// Logger возвращает основной логгер приложения
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Run запускает приложение в выбранном режиме и блокируется до SIGINT/SIGTERM
func (a *App) Run(ctx context.Context, mode string) error {
	// канал для graceful shutdown
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.logger.Info("starting application", "mode", mode)

	var err error
	switch mode {
	case ModeServer:
		err = runServer(ctx, a.Config, a.Handler(), a.logger)
	case ModeWorker:
		if a.deps.Consumer == nil || a.deps.Releaser == nil {
			err = fmt.Errorf("режим worker требует RabbitMQ и файловое хранилище")
			break
		}
		err = runWorker(ctx, a.deps.Consumer, a.deps.Releaser, a.logger)
	default:
		err = fmt.Errorf("неизвестный режим: %s (используйте 'server' или 'worker')", mode)
	}

	// аккуратно закрываем ресурсы
	if closeErr := a.Shutdown(); closeErr != nil {
		a.logger.Error("shutdown failed", "error", closeErr)
	}
	return err
}

// Handler собирает HTTP обработчик сервера
func (a *App) Handler() http.Handler {
	return newServerHandler(a.Config, a.deps, a.logger)
}

// Shutdown закрывает все ресурсы приложения
func (a *App) Shutdown() error {
	if a.deps.Broker != nil {
		a.deps.Broker.Close()
	}
	if a.deps.DB != nil {
		if err := a.deps.DB.Close(); err != nil {
			return fmt.Errorf("ошибка закрытия БД: %w", err)
		}
	}
	a.logger.Info("application resources released")
	return nil
}
