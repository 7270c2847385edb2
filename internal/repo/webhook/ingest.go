package webhook

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"docflow-backend/internal/entity"
	"docflow-backend/internal/repo"

	"github.com/labstack/gommon/log"
)

type Ingestion struct {
	client     *http.Client
	webhookURL string
}

func NewIngestion(client *http.Client, webhookURL string) repo.Ingestion {
	return &Ingestion{
		client:     client,
		webhookURL: webhookURL,
	}
}

func (i *Ingestion) UploadDocument(ctx context.Context, request *entity.IngestRequest) (*entity.IngestResult, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(request.FileName)))
	header.Set("Content-Type", request.MediaType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(request.RawBytes); err != nil {
		return nil, err
	}
	if err := writer.WriteField("project_id", request.ProjectID); err != nil {
		return nil, err
	}
	if err := writer.WriteField("user_id", request.UserID); err != nil {
		return nil, err
	}
	if err := writer.WriteField("title", request.Title); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, i.webhookURL, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := i.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		// Сервис обработки иногда отвечает кодом ошибки, хотя документ уже
		// принят и обработан. Непустое тело при таком коде считаем успехом —
		// это совместимость с известной особенностью коллаборатора, а не
		// обработка ошибки. Чинить нужно на его стороне
		if len(bytes.TrimSpace(respBody)) > 0 {
			log.Warnf("Сервис обработки вернул код %d с непустым телом, считаем загрузку успешной", resp.StatusCode)
			return &entity.IngestResult{Response: string(respBody)}, nil
		}
		return nil, fmt.Errorf("ingestion service returned status %d", resp.StatusCode)
	}

	return &entity.IngestResult{Response: string(respBody)}, nil
}

func escapeQuotes(s string) string {
	return strings.NewReplacer("\\", "\\\\", `"`, "\\\"").Replace(s)
}
