package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"docflow-backend/internal/delivery/http/utils"
	"docflow-backend/internal/entity"
	"docflow-backend/internal/usecase"
	"docflow-backend/internal/usecase/service"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type okIngestion struct{}

func (okIngestion) UploadDocument(_ context.Context, _ *entity.IngestRequest) (*entity.IngestResult, error) {
	return &entity.IngestResult{Response: "stored"}, nil
}

type listResponse struct {
	Entries       []*entity.UploadEntry `json:"entries"`
	AllCompleted  bool                  `json:"all_completed"`
	HasAnySuccess bool                  `json:"has_any_success"`
	PendingCount  int                   `json:"pending_count"`
}

func setupUploadServer(t *testing.T) (*echo.Echo, string) {
	t.Helper()
	authManager := utils.NewAuthManager([]byte("test-secret"), time.Hour)
	token, err := authManager.CreateToken("user-1")
	require.NoError(t, err)

	uploadDelivery := NewUpload(authManager, func() usecase.UploadQueue {
		return service.NewUploadQueue(okIngestion{}, nil)
	}, nil)

	e := echo.New()
	e.Use(middleware.BodyLimit(BodyLimit))
	uploadDelivery.Configure(e.Group("/api/upload"))
	return e, token
}

func multipartBody(t *testing.T, projectID string, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.WriteField("project_id", projectID))
	for name, content := range files {
		part, err := writer.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return &body, writer.FormDataContentType()
}

func doRequest(e *echo.Echo, req *http.Request, token string) *httptest.ResponseRecorder {
	req.AddCookie(&http.Cookie{Name: "session", Value: token})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestEnqueueUnauthorized(t *testing.T) {
	e, _ := setupUploadServer(t)

	body, contentType := multipartBody(t, "project-1", map[string][]byte{"a.pdf": []byte("%PDF-1.4")})
	req := httptest.NewRequest(http.MethodPost, "/api/upload/", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUploadFlow(t *testing.T) {
	e, token := setupUploadServer(t)

	// добавляем валидный документ и файл неподдерживаемого типа
	body, contentType := multipartBody(t, "project-1", map[string][]byte{
		"report.pdf": []byte("%PDF-1.4 test"),
		"binary.bin": {0x00, 0x01, 0x02, 0x03},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/upload/", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := doRequest(e, req, token)
	require.Equal(t, http.StatusOK, rec.Code)

	var enqueued struct {
		Entries []*entity.UploadEntry `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &enqueued))
	require.Len(t, enqueued.Entries, 2)

	list := func() listResponse {
		req := httptest.NewRequest(http.MethodGet, "/api/upload/", nil)
		rec := doRequest(e, req, token)
		require.Equal(t, http.StatusOK, rec.Code)
		var out listResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
		return out
	}

	state := list()
	assert.Equal(t, 1, state.PendingCount)
	assert.False(t, state.AllCompleted)

	// запускаем загрузку
	req = httptest.NewRequest(http.MethodPost, "/api/upload/start", nil)
	rec = doRequest(e, req, token)
	require.Equal(t, http.StatusOK, rec.Code)

	require.Eventually(t, func() bool {
		return list().AllCompleted
	}, 2*time.Second, 20*time.Millisecond)
	state = list()
	assert.True(t, state.HasAnySuccess)

	// после успеха название менять нельзя
	var successID string
	for _, entry := range state.Entries {
		if entry.Status == entity.UploadStatusSuccess {
			successID = entry.ID
		}
	}
	require.NotEmpty(t, successID)
	req = httptest.NewRequest(http.MethodPut, "/api/upload/"+successID+"/title",
		strings.NewReader(`{"title":"новое название"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = doRequest(e, req, token)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// удаление работает в любом статусе
	req = httptest.NewRequest(http.MethodDelete, "/api/upload/"+successID, nil)
	rec = doRequest(e, req, token)
	assert.Equal(t, http.StatusOK, rec.Code)

	state = list()
	assert.Len(t, state.Entries, 1)

	// удаление несуществующей записи
	req = httptest.NewRequest(http.MethodDelete, "/api/upload/"+successID, nil)
	rec = doRequest(e, req, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func pdfOfSize(size int) []byte {
	content := make([]byte, size)
	copy(content, "%PDF-1.4")
	return content
}

func TestEnqueueMaxSizeDocument(t *testing.T) {
	e, token := setupUploadServer(t)

	// файл ровно в 50 МиБ должен пройти через middleware и попасть в очередь
	body, contentType := multipartBody(t, "project-1", map[string][]byte{
		"max.pdf": pdfOfSize(entity.MaxUploadSize),
	})
	req := httptest.NewRequest(http.MethodPost, "/api/upload/", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := doRequest(e, req, token)
	require.Equal(t, http.StatusOK, rec.Code)

	var enqueued struct {
		Entries []*entity.UploadEntry `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &enqueued))
	require.Len(t, enqueued.Entries, 1)
	assert.Equal(t, entity.UploadStatusPending, enqueued.Entries[0].Status)
}

func TestEnqueueOversizeDocumentRejectedByQueue(t *testing.T) {
	e, token := setupUploadServer(t)

	// превышение лимита одного документа отклоняет очередь записью
	// со статусом error, а не middleware кодом 413
	body, contentType := multipartBody(t, "project-1", map[string][]byte{
		"huge.pdf": pdfOfSize(60 << 20),
	})
	req := httptest.NewRequest(http.MethodPost, "/api/upload/", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := doRequest(e, req, token)
	require.Equal(t, http.StatusOK, rec.Code)

	var enqueued struct {
		Entries []*entity.UploadEntry `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &enqueued))
	require.Len(t, enqueued.Entries, 1)
	assert.Equal(t, entity.UploadStatusError, enqueued.Entries[0].Status)
	assert.Contains(t, enqueued.Entries[0].Error, "50 MiB")
}

func TestQueuesIsolatedPerUser(t *testing.T) {
	e, token := setupUploadServer(t)

	authManager := utils.NewAuthManager([]byte("test-secret"), time.Hour)
	otherToken, err := authManager.CreateToken("user-2")
	require.NoError(t, err)

	body, contentType := multipartBody(t, "project-1", map[string][]byte{"a.pdf": []byte("%PDF-1.4")})
	req := httptest.NewRequest(http.MethodPost, "/api/upload/", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := doRequest(e, req, token)
	require.Equal(t, http.StatusOK, rec.Code)

	// у другого пользователя очередь пустая
	req = httptest.NewRequest(http.MethodGet, "/api/upload/", nil)
	rec = doRequest(e, req, otherToken)
	require.Equal(t, http.StatusOK, rec.Code)
	var out listResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Empty(t, out.Entries)
}
