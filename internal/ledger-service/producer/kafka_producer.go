package producer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/guyawaked93/apposta/pkg/contracts/events"
)

type KafkaPublisher struct {
	Writer *kafka.Writer
}

func NewKafkaPublisher(w *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{Writer: w}
}

// Publish usa o betID como chave para manter a ordem por aposta; eventos de banca vão com chave "bank"
func (p *KafkaPublisher) Publish(ctx context.Context, e events.LedgerEvent) error {
	if e.TsUnixMs == 0 {
		e.TsUnixMs = time.Now().UnixMilli()
	}
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", e.Type, err)
	}
	return p.Writer.WriteMessages(ctx, kafka.Message{Key: []byte(messageKey(e)), Value: b})
}

func messageKey(e events.LedgerEvent) string {
	if e.BetID != "" {
		return e.BetID
	}
	if e.Type == events.BetsImported {
		return "import"
	}
	return "bank"
}
