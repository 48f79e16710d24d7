package kafka

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
)

// NewWriter cria um writer com criação automática de tópico
func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{}, // mesma chave (betID) cai na mesma partição
		AllowAutoTopicCreation: true,
		WriteTimeout:           5 * time.Second,
	}
}

// NewReader cria um reader de consumer group com commit periódico
func NewReader(brokers []string, topic string, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
	})
}

// Forward reenvia uma mensagem já serializada (ex.: para a DLQ) mantendo a chave
func Forward(ctx context.Context, w *kafka.Writer, key, payload []byte) error {
	return w.WriteMessages(ctx, kafka.Message{
		Key:   key,
		Value: payload,
		Time:  time.Now(),
	})
}
