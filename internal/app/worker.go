package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/foodgram/internal/core/ports"
	"github.com/GoArmGo/foodgram/internal/messaging/payloads"
	"github.com/GoArmGo/foodgram/internal/metrics"
)

// newImageCleanupHandler возвращает обработчик сообщений очереди: удаляет освободившуюся картинку
func newImageCleanupHandler(releaser ImageReleaser, logger *slog.Logger) func(context.Context, payloads.ImageReleasedPayload) error {
	return func(ctx context.Context, payload payloads.ImageReleasedPayload) error {
		start := time.Now()

		err := releaser.Release(ctx, payload.ImageURL)
		metrics.RecordImageEvent("cleanup", err)
		if err != nil {
			logger.Error("failed to release image",
				"recipe_id", payload.RecipeID,
				"image_url", payload.ImageURL,
				"reason", payload.Reason,
				"error", err,
			)
			return err
		}

		logger.Info("image released",
			"recipe_id", payload.RecipeID,
			"reason", payload.Reason,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil
	}
}

// runWorker слушает очередь освободившихся картинок до отмены ctx
func runWorker(ctx context.Context, consumer ports.ImageEventConsumer, releaser ImageReleaser, logger *slog.Logger) error {
	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	if err := consumer.StartConsumingImageReleased(workerCtx, newImageCleanupHandler(releaser, logger)); err != nil {
		return fmt.Errorf("ошибка при запуске потребителя RabbitMQ: %w", err)
	}
	logger.Info("worker started, waiting for image release events")

	<-ctx.Done()

	logger.Info("shutdown signal received, stopping worker")
	return nil
}
