package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"docflow-backend/internal/entity"
	"docflow-backend/internal/repo"
)

type Agent struct {
	client     *http.Client
	webhookURL string
}

func NewAgent(client *http.Client, webhookURL string) repo.Agent {
	return &Agent{
		client:     client,
		webhookURL: webhookURL,
	}
}

func (a *Agent) Ask(ctx context.Context, request *entity.AgentRequest) (string, error) {
	jsonData, err := json.Marshal(request)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.webhookURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("agent service returned status %d", resp.StatusCode)
	}

	// Агент может ответить как структурой с полем response, так и сырой
	// строкой. Сначала пробуем структурный вариант
	var serverAnswer struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(respBody, &serverAnswer); err == nil && serverAnswer.Response != "" {
		return serverAnswer.Response, nil
	}
	return strings.TrimSpace(string(respBody)), nil
}
