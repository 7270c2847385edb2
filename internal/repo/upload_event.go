package repo

import (
	"context"

	"docflow-backend/internal/entity"
)

type UploadEvent interface {
	// PublishUploadEvent публикует событие завершения загрузки
	PublishUploadEvent(ctx context.Context, event *entity.UploadEvent) error
	// SubscribeUploadEvents возвращает канал событий загрузок пользователя.
	// Канал закрывается при отмене контекста
	SubscribeUploadEvents(ctx context.Context, userID string) (<-chan *entity.UploadEvent, error)
}
