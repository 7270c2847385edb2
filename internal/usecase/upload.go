package usecase

import (
	"context"
	"errors"

	"docflow-backend/internal/entity"
)

var (
	// ErrEntryNotFound возвращается, если записи с таким айди нет в очереди
	ErrEntryNotFound = errors.New("upload entry not found")
	// ErrTitleLocked возвращается при попытке переименовать запись,
	// которая уже загружается или загружена
	ErrTitleLocked = errors.New("title can no longer be changed")
)

type UploadQueue interface {
	// Enqueue добавляет файлы в конец очереди, по записи на файл.
	// Файлы, не прошедшие проверку типа или размера, сразу получают статус
	// error и повторно не обрабатываются. Сетевых вызовов нет
	Enqueue(userID string, projectID string, files []*entity.IncomingFile) []*entity.UploadEntry
	// StartAll запускает загрузку всех записей в статусе pending,
	// каждую в отдельной горутине, без ограничения параллелизма.
	// Остальные записи не затрагиваются
	StartAll(ctx context.Context)
	// Remove удаляет запись из очереди независимо от статуса.
	// Порядок остальных записей сохраняется
	Remove(id string) error
	// UpdateTitle меняет отображаемое название записи.
	// После начала загрузки название зафиксировано
	UpdateTitle(id string, title string) error
	// Entries возвращает снимок очереди в порядке добавления
	Entries() []*entity.UploadEntry
	// AllCompleted — очередь не пуста и все записи завершились
	AllCompleted() bool
	// HasAnySuccess — хотя бы одна запись загружена успешно
	HasAnySuccess() bool
	// PendingCount — число записей, ожидающих загрузки
	PendingCount() int
}
