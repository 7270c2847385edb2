package entity

// ChatRequest — запрос пользователя к диалоговому агенту
type ChatRequest struct {
	Message    string   `json:"message"`
	ProjectIDs []string `json:"project_ids"`
}

// ChatResponse — ответ агента
type ChatResponse struct {
	Response string `json:"response"`
}

// AgentRequest — полезная нагрузка вебхука диалогового агента
type AgentRequest struct {
	Message    string   `json:"message"`
	ProjectIDs []string `json:"project_ids"`
	UserID     string   `json:"user_id"`
}

// IngestRequest — документ, отправляемый вебхуку сервиса обработки
type IngestRequest struct {
	FileName  string
	MediaType string
	RawBytes  []byte
	ProjectID string
	UserID    string
	Title     string
}

// IngestResult — результат обработки документа внешним сервисом
type IngestResult struct {
	Response string `json:"response"`
}
