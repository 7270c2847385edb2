package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"docflow-backend/internal/delivery/http/utils"
	"docflow-backend/internal/entity"
	"docflow-backend/internal/repo"
	"docflow-backend/internal/usecase"
	"docflow-backend/pkg/sse"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

// BodyLimit — предел размера тела запроса для middleware. Заметно больше
// лимита одного документа: в одном запросе может прийти несколько файлов,
// а превышение размера отдельного файла отклоняет сама очередь,
// записью со статусом error, не middleware
const BodyLimit = "256MiB"

type Upload struct {
	authManager utils.Auth
	newQueue    func() usecase.UploadQueue
	events      repo.UploadEvent

	mu sync.Mutex
	// queues хранит очередь загрузки каждого пользователя
	queues map[string]usecase.UploadQueue
}

func NewUpload(authManager utils.Auth, newQueue func() usecase.UploadQueue, events repo.UploadEvent) *Upload {
	return &Upload{
		authManager: authManager,
		newQueue:    newQueue,
		events:      events,
		queues:      make(map[string]usecase.UploadQueue),
	}
}

func (u *Upload) Configure(server *echo.Group) {
	server.POST("/", u.Enqueue)
	server.GET("/", u.List)
	server.POST("/start", u.StartAll)
	server.DELETE("/:id", u.Remove)
	server.PUT("/:id/title", u.UpdateTitle)
	server.GET("/subscribe", u.Subscribe)
}

// queueFor возвращает очередь пользователя, при первом обращении создает ее
func (u *Upload) queueFor(userID string) usecase.UploadQueue {
	u.mu.Lock()
	defer u.mu.Unlock()
	queue, ok := u.queues[userID]
	if !ok {
		queue = u.newQueue()
		u.queues[userID] = queue
	}
	return queue
}

func (u *Upload) Enqueue(c echo.Context) error {
	userID, err := u.authManager.CheckAuthFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{
			"error": "Пользователь не авторизован",
		})
	}

	form, err := c.MultipartForm()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Неверный формат запроса: " + err.Error(),
		})
	}
	fileHeaders := form.File["files"]
	if len(fileHeaders) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Файлы не найдены",
		})
	}
	projectID := c.FormValue("project_id")
	if projectID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Не указан project_id",
		})
	}

	files := make([]*entity.IncomingFile, 0, len(fileHeaders))
	for _, fileHeader := range fileHeaders {
		src, err := fileHeader.Open()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{
				"error": "Ошибка чтения файла: " + err.Error(),
			})
		}
		rawBytes, err := io.ReadAll(src)
		_ = src.Close()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{
				"error": "Ошибка чтения файла: " + err.Error(),
			})
		}
		files = append(files, &entity.IncomingFile{
			Name:      fileHeader.Filename,
			Size:      fileHeader.Size,
			MediaType: fileHeader.Header.Get("Content-Type"),
			RawBytes:  rawBytes,
		})
	}

	entries := u.queueFor(userID).Enqueue(userID, projectID, files)
	return c.JSON(http.StatusOK, echo.Map{
		"entries": entries,
	})
}

func (u *Upload) List(c echo.Context) error {
	userID, err := u.authManager.CheckAuthFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{
			"error": "Пользователь не авторизован",
		})
	}
	queue := u.queueFor(userID)
	return c.JSON(http.StatusOK, echo.Map{
		"entries":         queue.Entries(),
		"all_completed":   queue.AllCompleted(),
		"has_any_success": queue.HasAnySuccess(),
		"pending_count":   queue.PendingCount(),
	})
}

func (u *Upload) StartAll(c echo.Context) error {
	userID, err := u.authManager.CheckAuthFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{
			"error": "Пользователь не авторизован",
		})
	}
	// загрузки переживают HTTP-запрос, поэтому не привязываем их
	// к его контексту
	u.queueFor(userID).StartAll(context.Background())
	return c.JSON(http.StatusOK, echo.Map{
		"status": "ok",
	})
}

func (u *Upload) Remove(c echo.Context) error {
	userID, err := u.authManager.CheckAuthFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{
			"error": "Пользователь не авторизован",
		})
	}
	err = u.queueFor(userID).Remove(c.Param("id"))
	switch {
	case errors.Is(err, usecase.ErrEntryNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Запись не найдена",
		})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status": "ok",
	})
}

func (u *Upload) UpdateTitle(c echo.Context) error {
	userID, err := u.authManager.CheckAuthFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{
			"error": "Пользователь не авторизован",
		})
	}
	var request struct {
		Title string `json:"title"`
	}
	if err := utils.ReadJSON(c, &request); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Неверный формат запроса",
		})
	}
	err = u.queueFor(userID).UpdateTitle(c.Param("id"), request.Title)
	switch {
	case errors.Is(err, usecase.ErrEntryNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Запись не найдена",
		})
	case errors.Is(err, usecase.ErrTitleLocked):
		return c.JSON(http.StatusConflict, echo.Map{
			"error": "Название уже нельзя изменить",
		})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status": "ok",
	})
}

func (u *Upload) Subscribe(c echo.Context) error {
	userID, err := u.authManager.CheckAuthFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{
			"error": "Пользователь не авторизован",
		})
	}
	if u.events == nil {
		return c.JSON(http.StatusNotImplemented, echo.Map{
			"error": "События загрузок не настроены",
		})
	}

	eventsCh, err := u.events.SubscribeUploadEvents(c.Request().Context(), userID)
	if err != nil {
		log.Errorf("Ошибка при подписке на события загрузок: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Не удалось подписаться на события",
		})
	}

	w := c.Response()
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	w.Flush()

	pingTicker := time.NewTicker(20 * time.Second)
	defer pingTicker.Stop()

	for {
		select {
		case <-c.Request().Context().Done():
			log.Infof("SSE клиент отключился, пользователь: %s, IP: %v", userID, c.RealIP())
			return nil

		case event, ok := <-eventsCh:
			if !ok {
				return nil
			}
			marshaled, err := json.Marshal(event)
			if err != nil {
				log.Errorf("Ошибка при сериализации события: %v", err)
				return err
			}
			sseEvent := sse.Event{
				Event: []byte("upload"),
				Data:  marshaled,
			}
			if err := sseEvent.MarshalTo(w); err != nil {
				log.Errorf("Ошибка при отправке события: %v", err)
				return err
			}
			w.Flush()

		case <-pingTicker.C:
			ping := sse.Event{
				Event: []byte("ping"),
				Data:  []byte(""),
			}
			if err := ping.MarshalTo(w); err != nil {
				return err
			}
			w.Flush()
		}
	}
}
