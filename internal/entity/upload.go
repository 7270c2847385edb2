package entity

import (
	"errors"
	"fmt"
	"mime"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// UploadStatus описывает состояние записи в очереди загрузки
type UploadStatus string

const (
	UploadStatusPending   UploadStatus = "pending"
	UploadStatusUploading UploadStatus = "uploading"
	UploadStatusSuccess   UploadStatus = "success"
	UploadStatusError     UploadStatus = "error"
)

// MaxUploadSize — максимальный размер одного документа (50 МиБ)
const MaxUploadSize = 50 << 20

// allowedMediaTypes — типы документов, которые принимает сервис обработки
var allowedMediaTypes = []string{
	"application/pdf",
	"image/jpeg",
	"image/png",
	"image/gif",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"text/plain",
}

var (
	ErrFileTooLarge    = errors.New("file exceeds the 50 MiB limit")
	ErrUnsupportedType = errors.New("unsupported file type")
)

// IncomingFile — сырой файл, который пользователь выбрал для загрузки
type IncomingFile struct {
	Name      string
	Size      int64
	MediaType string
	RawBytes  []byte
}

// Validate проверяет файл по списку допустимых типов и ограничению по размеру.
// Тип определяется по содержимому файла, заявленный тип используется как запасной вариант
func (f *IncomingFile) Validate() error {
	if f.Size > MaxUploadSize {
		return fmt.Errorf("%w: %q is %d bytes", ErrFileTooLarge, f.Name, f.Size)
	}
	declared := f.MediaType
	if parsed, _, err := mime.ParseMediaType(f.MediaType); err == nil {
		declared = parsed
	}
	var detected *mimetype.MIME
	if len(f.RawBytes) > 0 {
		detected = mimetype.Detect(f.RawBytes)
	}
	for _, allowed := range allowedMediaTypes {
		if declared == allowed {
			return nil
		}
		if detected != nil && detected.Is(allowed) {
			return nil
		}
	}
	if detected != nil {
		declared = detected.String()
	}
	return fmt.Errorf("%w: %q (%s)", ErrUnsupportedType, f.Name, declared)
}

// UploadEntry — один файл, проходящий жизненный цикл загрузки.
// Прогресс имитируется на стороне очереди и не отражает реальную передачу байтов:
// пока запись в состоянии uploading, прогресс растет по таймеру до 90 и
// достигает 100 только после подтверждения от сервиса обработки
type UploadEntry struct {
	ID        string       `json:"id"`
	FileName  string       `json:"file_name"`
	FileSize  int64        `json:"file_size"`
	MediaType string       `json:"media_type"`
	RawBytes  []byte       `json:"-"`
	Status    UploadStatus `json:"status"`
	Progress  int          `json:"progress"`
	Error     string       `json:"error,omitempty"`
	Title     string       `json:"title"`
	UserID    string       `json:"-"`
	ProjectID string       `json:"-"`
	CreatedAt time.Time    `json:"created_at"`
}

// Completed сообщает, завершилась ли запись (успехом или ошибкой)
func (e *UploadEntry) Completed() bool {
	return e.Status == UploadStatusSuccess || e.Status == UploadStatusError
}

// UploadEvent — событие перехода записи в терминальное состояние
type UploadEvent struct {
	EntryID   string       `json:"entry_id" msgpack:"entry_id"`
	FileName  string       `json:"file_name" msgpack:"file_name"`
	Status    UploadStatus `json:"status" msgpack:"status"`
	Error     string       `json:"error,omitempty" msgpack:"error"`
	UserID    string       `json:"user_id" msgpack:"user_id"`
	ProjectID string       `json:"project_id" msgpack:"project_id"`
	CreatedAt time.Time    `json:"created_at" msgpack:"created_at"`
}
