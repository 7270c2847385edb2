package service

import (
	"context"
	"strings"

	"docflow-backend/internal/entity"
	"docflow-backend/internal/repo"
	"docflow-backend/internal/usecase"
	"docflow-backend/pkg/retry"

	"github.com/labstack/gommon/log"
)

type Chat struct {
	agent       repo.Agent
	messageRepo repo.Message
}

func NewChat(agent repo.Agent, messageRepo repo.Message) usecase.Chat {
	return &Chat{
		agent:       agent,
		messageRepo: messageRepo,
	}
}

func (c *Chat) Send(ctx context.Context, userID string, request *entity.ChatRequest) (*entity.ChatResponse, error) {
	// без идентификатора пользователя к агенту не ходим
	if userID == "" {
		return nil, usecase.ErrUserUnauthorized
	}

	answer, err := c.agent.Ask(ctx, &entity.AgentRequest{
		Message:    request.Message,
		ProjectIDs: request.ProjectIDs,
		UserID:     userID,
	})
	if err != nil {
		return nil, err
	}

	// Сохраняем обмен в историю. Ошибка сохранения не должна ломать диалог,
	// поэтому только логируем ее после нескольких попыток
	message := &entity.Message{
		Content:   request.Message,
		AIContent: answer,
		Role:      "user",
		AgentType: entity.AgentTypeDocChat,
		ProjectID: strings.Join(request.ProjectIDs, ","),
		UserID:    userID,
	}
	go func() {
		err := retry.Retry(func() error {
			_, err := c.messageRepo.AddMessage(message)
			return err
		})
		if err != nil {
			log.Errorf("Не удалось сохранить сообщение в историю: %v", err)
		}
	}()

	return &entity.ChatResponse{Response: answer}, nil
}

func (c *Chat) History(userID string, limit int) ([]*entity.Message, error) {
	if userID == "" {
		return nil, usecase.ErrUserUnauthorized
	}
	return c.messageRepo.GetMessages(userID, entity.AgentTypeDocChat, limit)
}
