package repo

import (
	"context"

	"docflow-backend/internal/entity"
)

type Agent interface {
	// Ask передает сообщение диалоговому агенту и возвращает текст ответа
	Ask(ctx context.Context, request *entity.AgentRequest) (string, error)
}
