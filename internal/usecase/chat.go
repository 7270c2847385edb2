package usecase

import (
	"context"
	"errors"

	"docflow-backend/internal/entity"
)

// ErrUserUnauthorized возвращается, если операция требует идентификатор
// пользователя, а он не определен
var ErrUserUnauthorized = errors.New("user is not authorized")

type Chat interface {
	// Send передает сообщение диалоговому агенту и возвращает его ответ.
	// Обмен сохраняется в историю по принципу "лучших усилий": ошибка
	// сохранения логируется и не влияет на результат
	Send(ctx context.Context, userID string, request *entity.ChatRequest) (*entity.ChatResponse, error)
	// History возвращает последние записи истории пользователя,
	// от новых к старым. При limit <= 0 используется значение по умолчанию
	History(userID string, limit int) ([]*entity.Message, error)
}
