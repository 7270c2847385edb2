package postgres

import (
	"time"

	"docflow-backend/internal/entity"
	"docflow-backend/internal/repo"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// DefaultHistoryLimit используется, когда вызывающая сторона не указала лимит
const DefaultHistoryLimit = 20

type Message struct {
	db *sqlx.DB
}

func NewMessage(db *sqlx.DB) repo.Message {
	return &Message{
		db: db,
	}
}

func (m *Message) AddMessage(message *entity.Message) (string, error) {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	var messageID string
	row := m.db.QueryRow(`
		INSERT INTO chat_message (id, content, ai_content, role, agent_type, project_id, user_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`,
		message.ID,
		message.Content,
		message.AIContent,
		message.Role,
		message.AgentType,
		message.ProjectID,
		message.UserID,
		message.Metadata,
		message.CreatedAt,
	)
	if err := row.Scan(&messageID); err != nil {
		return "", err
	}
	return messageID, nil
}

func (m *Message) GetMessages(userID string, agentType string, limit int) ([]*entity.Message, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	query, args, err := sq.
		Select("id", "content", "ai_content", "role", "agent_type", "project_id", "user_id", "metadata", "created_at").
		From("chat_message").
		Where(sq.Eq{"user_id": userID, "agent_type": agentType}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := m.db.Queryx(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var messages []*entity.Message
	for rows.Next() {
		var message entity.Message
		if err := rows.StructScan(&message); err != nil {
			return nil, err
		}
		messages = append(messages, &message)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return messages, nil
}
