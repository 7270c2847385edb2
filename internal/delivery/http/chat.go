package http

import (
	"errors"
	"net/http"

	"docflow-backend/internal/delivery/http/utils"
	"docflow-backend/internal/entity"
	"docflow-backend/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

type Chat struct {
	chatUseCase usecase.Chat
	authManager utils.Auth
}

func NewChat(chatUseCase usecase.Chat, authManager utils.Auth) *Chat {
	return &Chat{
		chatUseCase: chatUseCase,
		authManager: authManager,
	}
}

func (h *Chat) Configure(server *echo.Group) {
	server.POST("/", h.Send)
	server.GET("/history", h.History)
}

func (h *Chat) Send(c echo.Context) error {
	userID, err := h.authManager.CheckAuthFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{
			"error": "Пользователь не авторизован",
		})
	}

	request := &entity.ChatRequest{}
	if err := utils.ReadJSON(c, request); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Неверный формат запроса",
		})
	}
	if request.Message == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Пустое сообщение",
		})
	}

	response, err := h.chatUseCase.Send(c.Request().Context(), userID, request)
	switch {
	case errors.Is(err, usecase.ErrUserUnauthorized):
		return c.JSON(http.StatusUnauthorized, echo.Map{
			"error": "Пользователь не авторизован",
		})
	case err != nil:
		log.Errorf("Ошибка при обращении к агенту: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Агент недоступен",
		})
	}
	return c.JSON(http.StatusOK, response)
}

func (h *Chat) History(c echo.Context) error {
	userID, err := h.authManager.CheckAuthFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{
			"error": "Пользователь не авторизован",
		})
	}

	var query struct {
		Limit int `query:"limit"`
	}
	if err := utils.ReadQuery(c, &query); err != nil || query.Limit < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Неверное значение limit",
		})
	}

	messages, err := h.chatUseCase.History(userID, query.Limit)
	switch {
	case errors.Is(err, usecase.ErrUserUnauthorized):
		return c.JSON(http.StatusUnauthorized, echo.Map{
			"error": "Пользователь не авторизован",
		})
	case err != nil:
		log.Errorf("Ошибка при получении истории: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Не удалось получить историю",
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"messages": messages,
	})
}
