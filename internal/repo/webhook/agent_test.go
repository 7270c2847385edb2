package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"docflow-backend/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAskStructuredResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var request entity.AgentRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&request))
		assert.Equal(t, "что в договоре?", request.Message)
		assert.Equal(t, []string{"project-1", "project-2"}, request.ProjectIDs)
		assert.Equal(t, "user-1", request.UserID)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"response": "в договоре три пункта"})
	}))
	defer server.Close()

	agent := NewAgent(server.Client(), server.URL)
	answer, err := agent.Ask(context.Background(), &entity.AgentRequest{
		Message:    "что в договоре?",
		ProjectIDs: []string{"project-1", "project-2"},
		UserID:     "user-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "в договоре три пункта", answer)
}

func TestAskRawBodyFallback(t *testing.T) {
	// агент может ответить сырой строкой вместо структуры
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("просто текст ответа\n"))
	}))
	defer server.Close()

	agent := NewAgent(server.Client(), server.URL)
	answer, err := agent.Ask(context.Background(), &entity.AgentRequest{Message: "hi", UserID: "user-1"})
	require.NoError(t, err)
	assert.Equal(t, "просто текст ответа", answer)
}

func TestAskErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	agent := NewAgent(server.Client(), server.URL)
	_, err := agent.Ask(context.Background(), &entity.AgentRequest{Message: "hi", UserID: "user-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}
