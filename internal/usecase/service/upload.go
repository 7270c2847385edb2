package service

import (
	"context"
	"sync"
	"time"

	"docflow-backend/internal/entity"
	"docflow-backend/internal/repo"
	"docflow-backend/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
)

const (
	// прогресс имитируется: раз в progressTickInterval прибавляем
	// progressStep, но не выше progressCeiling. До 100 прогресс доходит
	// только после ответа сервиса обработки
	progressTickInterval = 300 * time.Millisecond
	progressStep         = 10
	progressCeiling      = 90
)

type UploadQueue struct {
	ingestion repo.Ingestion
	events    repo.UploadEvent

	mu      sync.Mutex
	entries []*entity.UploadEntry
	// cancels хранит функции остановки имитации прогресса по айди записи,
	// чтобы таймер можно было погасить при завершении и при удалении
	cancels map[string]context.CancelFunc
}

func NewUploadQueue(ingestion repo.Ingestion, events repo.UploadEvent) usecase.UploadQueue {
	return &UploadQueue{
		ingestion: ingestion,
		events:    events,
		cancels:   make(map[string]context.CancelFunc),
	}
}

func (q *UploadQueue) Enqueue(userID string, projectID string, files []*entity.IncomingFile) []*entity.UploadEntry {
	added := make([]*entity.UploadEntry, 0, len(files))
	for _, file := range files {
		entry := &entity.UploadEntry{
			ID:        uuid.New().String(),
			FileName:  file.Name,
			FileSize:  file.Size,
			MediaType: file.MediaType,
			RawBytes:  file.RawBytes,
			Status:    entity.UploadStatusPending,
			Title:     file.Name,
			UserID:    userID,
			ProjectID: projectID,
			CreatedAt: time.Now(),
		}
		if err := file.Validate(); err != nil {
			entry.Status = entity.UploadStatusError
			entry.Error = err.Error()
		}
		added = append(added, entry)
	}

	// Enqueue только мутирует коллекцию: никаких сетевых вызовов,
	// в том числе для записей, не прошедших проверку
	q.mu.Lock()
	q.entries = append(q.entries, added...)
	q.mu.Unlock()

	return snapshot(added)
}

type uploadJob struct {
	id      string
	simCtx  context.Context
	request *entity.IngestRequest
}

func (q *UploadQueue) StartAll(ctx context.Context) {
	q.mu.Lock()
	var jobs []*uploadJob
	for _, entry := range q.entries {
		if entry.Status != entity.UploadStatusPending {
			continue
		}
		entry.Status = entity.UploadStatusUploading
		entry.Progress = 0
		simCtx, cancel := context.WithCancel(ctx)
		q.cancels[entry.ID] = cancel
		jobs = append(jobs, &uploadJob{
			id:     entry.ID,
			simCtx: simCtx,
			request: &entity.IngestRequest{
				FileName:  entry.FileName,
				MediaType: entry.MediaType,
				RawBytes:  entry.RawBytes,
				ProjectID: entry.ProjectID,
				UserID:    entry.UserID,
				Title:     entry.Title,
			},
		})
	}
	q.mu.Unlock()

	for _, job := range jobs {
		go q.simulateProgress(job.simCtx, job.id)
		go q.uploadOne(ctx, job)
	}
}

// uploadOne выполняет одну попытку загрузки. Попытки независимы,
// автоматических повторов нет: после ошибки запись остается в статусе error,
// и единственный путь повторить загрузку — удалить запись и добавить файл заново
func (q *UploadQueue) uploadOne(ctx context.Context, job *uploadJob) {
	result, err := q.ingestion.UploadDocument(ctx, job.request)

	id := job.id
	q.mu.Lock()
	q.stopProgress(id)
	entry := q.find(id)
	if entry == nil {
		// запись удалили, пока шла загрузка
		q.mu.Unlock()
		return
	}
	if err != nil {
		entry.Status = entity.UploadStatusError
		entry.Progress = 0
		entry.Error = err.Error()
		log.Errorf("Ошибка загрузки документа %q: %v", entry.FileName, err)
	} else {
		entry.Status = entity.UploadStatusSuccess
		entry.Progress = 100
		log.Infof("Документ %q обработан: %s", entry.FileName, result.Response)
	}
	event := entry
	q.mu.Unlock()

	q.publishEvent(event)
}

func (q *UploadQueue) simulateProgress(ctx context.Context, id string) {
	ticker := time.NewTicker(progressTickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			q.mu.Lock()
			entry := q.find(id)
			if entry == nil || entry.Status != entity.UploadStatusUploading {
				q.mu.Unlock()
				return
			}
			if entry.Progress < progressCeiling {
				entry.Progress = min(entry.Progress+progressStep, progressCeiling)
			}
			q.mu.Unlock()
		}
	}
}

func (q *UploadQueue) Remove(id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, entry := range q.entries {
		if entry.ID == id {
			q.stopProgress(id)
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return nil
		}
	}
	return usecase.ErrEntryNotFound
}

func (q *UploadQueue) UpdateTitle(id string, title string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	entry := q.find(id)
	if entry == nil {
		return usecase.ErrEntryNotFound
	}
	// после старта загрузки название уходит в сервис обработки,
	// менять его дальше нельзя
	if entry.Status == entity.UploadStatusUploading || entry.Status == entity.UploadStatusSuccess {
		return usecase.ErrTitleLocked
	}
	entry.Title = title
	return nil
}

func (q *UploadQueue) Entries() []*entity.UploadEntry {
	q.mu.Lock()
	defer q.mu.Unlock()
	return snapshot(q.entries)
}

func (q *UploadQueue) AllCompleted() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.entries) == 0 {
		return false
	}
	for _, entry := range q.entries {
		if !entry.Completed() {
			return false
		}
	}
	return true
}

func (q *UploadQueue) HasAnySuccess() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, entry := range q.entries {
		if entry.Status == entity.UploadStatusSuccess {
			return true
		}
	}
	return false
}

func (q *UploadQueue) PendingCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	count := 0
	for _, entry := range q.entries {
		if entry.Status == entity.UploadStatusPending {
			count++
		}
	}
	return count
}

// find возвращает запись по айди. Вызывается под мьютексом
func (q *UploadQueue) find(id string) *entity.UploadEntry {
	for _, entry := range q.entries {
		if entry.ID == id {
			return entry
		}
	}
	return nil
}

// stopProgress гасит таймер имитации прогресса записи. Вызывается под мьютексом
func (q *UploadQueue) stopProgress(id string) {
	if cancel, ok := q.cancels[id]; ok {
		cancel()
		delete(q.cancels, id)
	}
}

// publishEvent публикует событие завершения по принципу "лучших усилий"
func (q *UploadQueue) publishEvent(entry *entity.UploadEntry) {
	if q.events == nil {
		return
	}
	event := &entity.UploadEvent{
		EntryID:   entry.ID,
		FileName:  entry.FileName,
		Status:    entry.Status,
		Error:     entry.Error,
		UserID:    entry.UserID,
		ProjectID: entry.ProjectID,
		CreatedAt: time.Now(),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := q.events.PublishUploadEvent(ctx, event); err != nil {
		log.Errorf("Ошибка публикации события загрузки %s: %v", entry.ID, err)
	}
}

// snapshot копирует записи, чтобы читатели не видели промежуточных мутаций
func snapshot(entries []*entity.UploadEntry) []*entity.UploadEntry {
	out := make([]*entity.UploadEntry, 0, len(entries))
	for _, entry := range entries {
		e := *entry
		out = append(out, &e)
	}
	return out
}
