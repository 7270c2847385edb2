package kafka

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"docflow-backend/internal/entity"
	"docflow-backend/internal/repo"

	"github.com/segmentio/kafka-go"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	uploadEventsTopic = "upload-events"
	numPartitions     = 3
)

type UploadEventKafkaRepository struct {
	writer        *kafka.Writer
	readerFactory func(userID string) *kafka.Reader
	brokers       []string
}

// createTopicIfNotExists создает топик, если он еще не существует
func createTopicIfNotExists(brokers []string, topic string, replicationFactor int) error {
	conn, err := kafka.Dial("tcp", brokers[0])
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	partitions, err := conn.ReadPartitions(topic)
	if err != nil && !errors.Is(err, kafka.UnknownTopicOrPartition) {
		return err
	}
	if len(partitions) > 0 {
		return nil
	}

	controller, err := conn.Controller()
	if err != nil {
		return err
	}
	controllerConn, err := kafka.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		return err
	}
	defer func() { _ = controllerConn.Close() }()

	return controllerConn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     numPartitions,
		ReplicationFactor: replicationFactor,
	})
}

// availableReplicationFactor возвращает фактор репликации, не превышающий
// число реально доступных брокеров
func availableReplicationFactor(brokers []string, desired int) int {
	conn, err := kafka.Dial("tcp", brokers[0])
	if err != nil {
		return min(len(brokers), desired)
	}
	defer func() { _ = conn.Close() }()

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	brokerMetadata, err := conn.Brokers()
	if err != nil || len(brokerMetadata) == 0 {
		return min(len(brokers), desired)
	}
	return min(len(brokerMetadata), desired)
}

func NewUploadEventKafkaRepository(brokers []string) (repo.UploadEvent, error) {
	if len(brokers) == 0 {
		return nil, errors.New("не предоставлены брокеры Kafka")
	}

	replicationFactor := availableReplicationFactor(brokers, 3)
	if err := createTopicIfNotExists(brokers, uploadEventsTopic, replicationFactor); err != nil {
		return nil, fmt.Errorf("ошибка при создании топика событий загрузок: %w", err)
	}

	return &UploadEventKafkaRepository{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    uploadEventsTopic,
			Balancer: &kafka.LeastBytes{},
		},
		readerFactory: func(userID string) *kafka.Reader {
			// Уникальный GroupID на каждое подключение, чтобы подписчик
			// получал только новые события
			groupID := fmt.Sprintf("upload-listener-%s-%d", userID, time.Now().UnixNano())
			return kafka.NewReader(kafka.ReaderConfig{
				Brokers:     brokers,
				Topic:       uploadEventsTopic,
				GroupID:     groupID,
				MinBytes:    1,
				MaxBytes:    10e6,
				StartOffset: kafka.LastOffset,
			})
		},
		brokers: brokers,
	}, nil
}

func (r *UploadEventKafkaRepository) PublishUploadEvent(ctx context.Context, event *entity.UploadEvent) error {
	b, err := msgpack.Marshal(event)
	if err != nil {
		return err
	}
	return r.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.UserID),
		Value: b,
	})
}

func (r *UploadEventKafkaRepository) SubscribeUploadEvents(ctx context.Context, userID string) (<-chan *entity.UploadEvent, error) {
	reader := r.readerFactory(userID)
	ch := make(chan *entity.UploadEvent)
	go func() {
		defer close(ch)
		defer func() { _ = reader.Close() }()
		for {
			m, err := reader.ReadMessage(ctx)
			if err != nil {
				return
			}
			var event entity.UploadEvent
			if err := msgpack.Unmarshal(m.Value, &event); err == nil {
				if event.UserID == userID {
					select {
					case ch <- &event:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()
	return ch, nil
}
