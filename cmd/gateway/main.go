package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	delivery "docflow-backend/internal/delivery/http"
	"docflow-backend/internal/delivery/http/utils"
	"docflow-backend/internal/repo"
	"docflow-backend/internal/repo/kafka"
	"docflow-backend/internal/repo/postgres"
	"docflow-backend/internal/repo/webhook"
	"docflow-backend/internal/usecase"
	"docflow-backend/internal/usecase/service"
	"docflow-backend/pkg/connector"
	"docflow-backend/pkg/goosehelper"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Info(".env файл не обнаружен")
	}
	jwtSecret := os.Getenv("JWT_SECRET")
	ingestWebhookURL := os.Getenv("INGEST_WEBHOOK_URL")
	agentWebhookURL := os.Getenv("AGENT_WEBHOOK_URL")
	dbConnectDSN := os.Getenv("DB_CONNECT_DSN")
	kafkaBrokers := os.Getenv("KAFKA_BROKERS")
	httpPort := os.Getenv("GATEWAY_HTTP_PORT")
	if httpPort == "" {
		httpPort = "8080"
	}

	// postgres
	DBConn, err := connector.GetPostgresConnector(dbConnectDSN)
	if err != nil {
		log.Fatalf("Ошибка при подключении к базе данных: %v", err)
	}
	defer func() {
		err := DBConn.Close()
		if err != nil {
			log.Fatalf("Ошибка при закрытии соединения с базой данных: %v", err)
		}
	}()
	goosehelper.MigrateUp(DBConn.DB, "./migrations")

	// У вызовов сервиса обработки нет таймаута: обработка документа может
	// длиться сколь угодно долго, обрывать ее по таймеру нельзя
	webhookClient := &http.Client{}

	// запускаем сервисы репозиториев
	messageRepo := postgres.NewMessage(DBConn)
	ingestionRepo := webhook.NewIngestion(webhookClient, ingestWebhookURL)
	agentRepo := webhook.NewAgent(webhookClient, agentWebhookURL)
	var uploadEventRepo repo.UploadEvent
	if kafkaBrokers != "" {
		uploadEventRepo, err = kafka.NewUploadEventKafkaRepository(strings.Split(kafkaBrokers, ","))
		if err != nil {
			log.Fatalf("Ошибка при подключении к Kafka: %v", err)
		}
	} else {
		log.Info("KAFKA_BROKERS не задан, события загрузок отключены")
	}

	// запускаем сервисы usecase (бизнес-логика)
	chatUseCase := service.NewChat(agentRepo, messageRepo)
	newQueue := func() usecase.UploadQueue {
		return service.NewUploadQueue(ingestionRepo, uploadEventRepo)
	}

	// запускаем сервисы delivery (обработка запросов)
	authManager := utils.NewAuthManager([]byte(jwtSecret), time.Hour*24*30)
	uploadDelivery := delivery.NewUpload(authManager, newQueue, uploadEventRepo)
	chatDelivery := delivery.NewChat(chatUseCase, authManager)

	// REST API
	echoServer := echo.New()
	echoServer.Use(middleware.BodyLimit(delivery.BodyLimit))
	echoServer.Use(middleware.Decompress())
	echoServer.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
	}))
	echoServer.Use(middleware.RequestID())

	// CORS
	echoServer.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			ctx.Response().Header().Set(echo.HeaderAccessControlAllowOrigin, "http://localhost:3000")
			ctx.Response().Header().Set(echo.HeaderAccessControlAllowMethods, strings.Join([]string{
				http.MethodGet,
				http.MethodPut,
				http.MethodPost,
				http.MethodDelete,
				http.MethodOptions,
			}, ","))
			ctx.Response().Header().Set(echo.HeaderAccessControlAllowHeaders, strings.Join([]string{
				echo.HeaderOrigin,
				echo.HeaderAccept,
				echo.HeaderXRequestedWith,
				echo.HeaderContentType,
				echo.HeaderAccessControlRequestMethod,
				echo.HeaderAccessControlRequestHeaders,
				echo.HeaderCookie,
			}, ","))
			ctx.Response().Header().Set(echo.HeaderAccessControlAllowCredentials, "true")
			ctx.Response().Header().Set(echo.HeaderAccessControlMaxAge, "86400")
			return next(ctx)
		}
	})

	api := echoServer.Group("/api")
	uploadDelivery.Configure(api.Group("/upload"))
	chatDelivery.Configure(api.Group("/chat"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	defer stop()

	go func() {
		if err := echoServer.Start(":" + httpPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Ошибка при запуске сервера: %v", err)
		}
	}()
	log.Infof("Gateway запущен на порту %s", httpPort)

	<-ctx.Done()
	log.Info("Получен сигнал завершения, останавливаем сервер...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := echoServer.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Ошибка при остановке сервера: %v", err)
	}
	log.Info("Gateway успешно остановлен")
}
