package di

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/GoArmGo/foodgram/internal/adapter/image"
	"github.com/GoArmGo/foodgram/internal/adapter/storage/minio"
	"github.com/GoArmGo/foodgram/internal/app"
	"github.com/GoArmGo/foodgram/internal/auth"
	"github.com/GoArmGo/foodgram/internal/config"
	"github.com/GoArmGo/foodgram/internal/core/ports"
	"github.com/GoArmGo/foodgram/internal/database/client"
	"github.com/GoArmGo/foodgram/internal/database/memory"
	"github.com/GoArmGo/foodgram/internal/database/storage"
	"github.com/GoArmGo/foodgram/internal/handler"
	"github.com/GoArmGo/foodgram/internal/logger"
	"github.com/GoArmGo/foodgram/internal/rabbitmq"
	"github.com/GoArmGo/foodgram/internal/usecase"
)

// BuildApp инициализирует все зависимости и возвращает готовый объект App.
func BuildApp(ctx context.Context) (*app.App, error) {
	// 1. Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	slogger := logger.NewSlog(logger.SlogConfig{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	slogger.Info("logger initialized", "level", cfg.LogLevel, "format", cfg.LogFormat)

	deps := app.Deps{}

	// 2. Хранилище: PostgreSQL или память процесса
	store, err := buildStorage(cfg, slogger, &deps)
	if err != nil {
		return nil, err
	}

	// 3. Файловое хранилище картинок (S3 / MinIO)
	fileStorage, err := minio.NewMinioClient(ctx, cfg, slogger)
	if err != nil {
		closeDB(deps, slogger)
		return nil, err
	}
	uploader := image.NewUploader(fileStorage, slogger)
	deps.Releaser = uploader

	// 4. RabbitMQ: публикация в режиме сервера, потребление в режиме воркера
	rabbitMQClient, err := rabbitmq.NewClient(cfg, slogger)
	if err != nil {
		closeDB(deps, slogger)
		return nil, err
	}
	deps.Broker = rabbitMQClient
	deps.Consumer = rabbitMQClient

	// 5. Проверка токенов внешнего сервиса авторизации
	verifier, err := auth.NewVerifier(cfg.JWTSecret)
	if err != nil {
		rabbitMQClient.Close()
		closeDB(deps, slogger)
		return nil, err
	}
	deps.Verifier = verifier

	// 6. Бизнес-логика (usecases)
	deps.Services = handler.Services{
		Recipes:       usecase.NewRecipeUseCase(store, uploader, rabbitMQClient, auth.AuthorPolicy{}, cfg.PageSize, slogger),
		Ledger:        usecase.NewLedgerUseCase(store, slogger),
		Shopping:      usecase.NewShoppingUseCase(store, slogger),
		Subscriptions: usecase.NewSubscriptionUseCase(store, cfg.PageSize, slogger),
		Catalog:       usecase.NewCatalogUseCase(store),
		Users:         usecase.NewUserUseCase(store, cfg.PageSize, slogger),
	}

	// 7. Сборка итогового приложения
	application := app.NewApp(cfg, slogger, deps)

	slogger.Info("all dependencies initialized", "storage_driver", cfg.StorageDriver)
	return application, nil
}

// buildStorage выбирает хранилище по STORAGE_DRIVER и заполняет ресурсы для закрытия и healthz
func buildStorage(cfg *config.Config, logger *slog.Logger, deps *app.Deps) (ports.Storage, error) {
	switch cfg.StorageDriver {
	case config.StorageDriverMemory:
		store := memory.NewStore(logger)
		if err := store.SeedDefaultTags(); err != nil {
			return nil, fmt.Errorf("ошибка заполнения тегов: %w", err)
		}
		logger.Warn("using in-memory storage, data will be lost on restart")
		return store, nil

	default:
		dbClient, err := client.NewClient(cfg, logger)
		if err != nil {
			return nil, err
		}
		deps.DB = dbClient
		deps.Pinger = dbClient.DB
		return storage.NewPostgresStorage(dbClient.DB, logger), nil
	}
}

func closeDB(deps app.Deps, logger *slog.Logger) {
	if deps.DB == nil {
		return
	}
	if err := deps.DB.Close(); err != nil {
		logger.Error("failed to close database after init error", "error", err)
	}
}
