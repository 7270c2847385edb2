// Заглушка вебхуков сервиса обработки документов и диалогового агента
// для локальной разработки. Принятые документы складываются в MinIO.
// При MOCK_FLAKY=true заглушка воспроизводит особенность боевого сервиса:
// отвечает кодом 500 с непустым телом, хотя документ принят
package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"docflow-backend/pkg/connector"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

const bucketName = "documents"

type agentRequest struct {
	Message    string   `json:"message"`
	ProjectIDs []string `json:"project_ids"`
	UserID     string   `json:"user_id"`
}

type agentResponse struct {
	Response string `json:"response"`
}

type mockServer struct {
	minioClient *minio.Client
	flaky       bool
}

func (s *mockServer) ingestHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(64 << 20); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer func() { _ = file.Close() }()

	objectName := uuid.New().String() + "_" + header.Filename
	_, err = s.minioClient.PutObject(r.Context(), bucketName, objectName, file, header.Size, minio.PutObjectOptions{
		ContentType: header.Header.Get("Content-Type"),
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	log.Printf("принят документ %q (title=%q, project=%s, user=%s)",
		header.Filename, r.FormValue("title"), r.FormValue("project_id"), r.FormValue("user_id"))

	if s.flaky {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("Document stored as " + objectName))
		return
	}
	_, _ = w.Write([]byte("Document stored as " + objectName))
}

func (s *mockServer) agentHandler(w http.ResponseWriter, r *http.Request) {
	var req agentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	time.Sleep(2 * time.Second)
	resp := agentResponse{
		Response: "Заглушка агента: по документам проектов " + strings.Join(req.ProjectIDs, ", ") +
			" ответ на вопрос «" + req.Message + "» пока не найден",
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func main() {
	minioEndpoint := os.Getenv("MINIO_ENDPOINT")
	if minioEndpoint == "" {
		minioEndpoint = "localhost:9000"
	}
	minioClient, err := connector.GetMinioConnector(
		minioEndpoint,
		os.Getenv("MINIO_ACCESS_KEY"),
		os.Getenv("MINIO_SECRET_KEY"),
		os.Getenv("MINIO_USE_SSL") == "true",
	)
	if err != nil {
		log.Fatalf("ошибка подключения к MinIO: %v", err)
	}
	exists, err := minioClient.BucketExists(context.Background(), bucketName)
	if err != nil {
		log.Fatalf("ошибка проверки бакета: %v", err)
	}
	if !exists {
		if err := minioClient.MakeBucket(context.Background(), bucketName, minio.MakeBucketOptions{}); err != nil {
			log.Fatalf("ошибка создания бакета: %v", err)
		}
	}

	server := &mockServer{
		minioClient: minioClient,
		flaky:       os.Getenv("MOCK_FLAKY") == "true",
	}
	http.HandleFunc("/webhook/ingest", server.ingestHandler)
	http.HandleFunc("/webhook/agent", server.agentHandler)
	log.Println("Mock server is running on port 8081")
	log.Fatal(http.ListenAndServe(":8081", nil))
}
