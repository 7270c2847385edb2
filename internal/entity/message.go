package entity

import "time"

// AgentTypeDocChat — метка агента, под которой сохраняется история диалогов
const AgentTypeDocChat = "doc-chat"

// Message — одна запись истории диалога с агентом
type Message struct {
	ID        string    `json:"id" db:"id"`
	Content   string    `json:"content" db:"content"`
	AIContent string    `json:"ai_content" db:"ai_content"`
	Role      string    `json:"role" db:"role"`
	AgentType string    `json:"agent_type" db:"agent_type"`
	ProjectID string    `json:"project_id" db:"project_id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Metadata  string    `json:"metadata" db:"metadata"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
