package consumer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/guyawaked93/apposta/internal/ledger-audit/repository"
	"github.com/guyawaked93/apposta/pkg/contracts/events"
)

// MessageReader é o subconjunto do kafka.Reader usado aqui
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// AuditRepo persiste um registro do histórico
type AuditRepo interface {
	Insert(ctx context.Context, rec repository.Record) error
}

// Processor consome ledger_events e grava cada evento na tabela de auditoria
// Callbacks de métricas podem ser usadas para monitoramento de cada etapa
type Processor struct {
	Log    *zap.Logger
	Reader MessageReader
	Repo   AuditRepo
	DLQ    func(ctx context.Context, m kafka.Message) error // opcional

	Retries int           // tentativas extras de insert antes da DLQ
	Backoff time.Duration // base do backoff linear

	OnConsumed func()       // métricas (counter++)
	OnPersist  func()       // métricas
	OnError    func(string) // métricas por fase
}

// Run inicia o loop principal de consumo; retorna quando o contexto é cancelado
func (p *Processor) Run(ctx context.Context) error {
	for {
		m, err := p.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err() // encerra se o contexto for cancelado
			}
			p.Log.Warn("kafka read failed", zap.Error(err))
			p.onError("read")
			sleep(ctx, 500*time.Millisecond)
			continue
		}
		if p.OnConsumed != nil {
			p.OnConsumed()
		}
		p.Handle(ctx, m)
	}
}

// Handle processa uma mensagem: decodifica, grava com retry e, se falhar, manda para a DLQ
func (p *Processor) Handle(ctx context.Context, m kafka.Message) {
	var ev events.LedgerEvent
	if err := json.Unmarshal(m.Value, &ev); err != nil || ev.Type == "" {
		p.Log.Warn("invalid ledger event", zap.Int64("offset", m.Offset), zap.Error(err))
		p.onError("decode")
		p.deadLetter(ctx, m)
		return
	}

	rec := repository.Record{Event: ev, Payload: m.Value, Partition: m.Partition, Offset: m.Offset}
	var err error
	for i := 0; i <= p.Retries; i++ {
		if i > 0 {
			sleep(ctx, time.Duration(i)*p.Backoff)
		}
		if err = p.Repo.Insert(ctx, rec); err == nil {
			break
		}
		p.Log.Warn("audit insert failed", zap.String("type", ev.Type), zap.Int("attempt", i+1), zap.Error(err))
	}
	if err != nil {
		p.onError("db_insert")
		p.deadLetter(ctx, m)
		return
	}

	if p.OnPersist != nil {
		p.OnPersist()
	}
	p.Log.Debug("ledger event recorded",
		zap.String("type", ev.Type),
		zap.String("betId", ev.BetID),
		zap.Int64("offset", m.Offset),
	)
}

func (p *Processor) deadLetter(ctx context.Context, m kafka.Message) {
	if p.DLQ == nil {
		return
	}
	if err := p.DLQ(ctx, m); err != nil {
		p.Log.Error("dlq write failed", zap.Error(err))
		p.onError("dlq")
	}
}

func (p *Processor) onError(stage string) {
	if p.OnError != nil {
		p.OnError(stage)
	}
}

func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
