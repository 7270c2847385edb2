package repo

import (
	"context"

	"docflow-backend/internal/entity"
)

type Ingestion interface {
	// UploadDocument отправляет документ внешнему сервису обработки и
	// возвращает результат. Таймаут не накладывается: время обработки
	// документа на стороне сервиса не ограничено
	UploadDocument(ctx context.Context, request *entity.IngestRequest) (*entity.IngestResult, error)
}
