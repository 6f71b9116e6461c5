package ports

import (
	"context"

	"github.com/GoArmGo/foodgram/internal/messaging/payloads"
)

// ImageEventPublisher публикует события об освободившихся картинках рецептов.
// Используется usecase-слоем при удалении рецепта и замене картинки.
type ImageEventPublisher interface {
	PublishImageReleased(ctx context.Context, payload payloads.ImageReleasedPayload) error
}

// ImageEventConsumer используется воркером для получения задач на удаление картинок
type ImageEventConsumer interface {
	// StartConsumingImageReleased начинает прослушивание очереди,
	// handler вызывается для каждого полученного сообщения
	StartConsumingImageReleased(ctx context.Context, handler func(context.Context, payloads.ImageReleasedPayload) error) error
}
