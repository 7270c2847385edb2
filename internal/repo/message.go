package repo

import "docflow-backend/internal/entity"

type Message interface {
	// AddMessage сохраняет запись истории и возвращает ее айди
	AddMessage(message *entity.Message) (string, error)
	// GetMessages возвращает записи истории пользователя с указанной меткой
	// агента, от новых к старым, не более limit штук
	GetMessages(userID string, agentType string, limit int) ([]*entity.Message, error)
}
