package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/guyawaked93/apposta/pkg/contracts/events"
)

const auditSchema = `
CREATE TABLE IF NOT EXISTS ledger_audit (
	id              BIGSERIAL PRIMARY KEY,
	event_type      TEXT NOT NULL,
	bet_id          TEXT,
	status          TEXT,
	bank            DOUBLE PRECISION NOT NULL,
	added           INT NOT NULL DEFAULT 0,
	skipped         INT NOT NULL DEFAULT 0,
	payload         JSONB NOT NULL,
	occurred_at     TIMESTAMPTZ NOT NULL,
	recorded_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	kafka_partition INT NOT NULL,
	kafka_offset    BIGINT NOT NULL,
	UNIQUE (kafka_partition, kafka_offset)
)`

// Record é uma linha do histórico: o evento mais a posição no Kafka (chave de idempotência)
type Record struct {
	Event     events.LedgerEvent
	Payload   []byte
	Partition int
	Offset    int64
}

// PostgresRepo grava o histórico append-only de eventos do ledger
type PostgresRepo struct {
	DB *sql.DB
}

// NewPostgresRepo cria a tabela ledger_audit se ainda não existir
func NewPostgresRepo(ctx context.Context, db *sql.DB) (*PostgresRepo, error) {
	if _, err := db.ExecContext(ctx, auditSchema); err != nil {
		return nil, fmt.Errorf("create ledger_audit: %w", err)
	}
	return &PostgresRepo{DB: db}, nil
}

// Insert ignora reentregas da mesma partição/offset
func (r *PostgresRepo) Insert(ctx context.Context, rec Record) error {
	const q = `
		INSERT INTO ledger_audit
		  (event_type, bet_id, status, bank, added, skipped, payload, occurred_at, kafka_partition, kafka_offset)
		VALUES
		  ($1, NULLIF($2,''), NULLIF($3,''), $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (kafka_partition, kafka_offset) DO NOTHING
	`
	e := rec.Event
	_, err := r.DB.ExecContext(ctx, q,
		e.Type, e.BetID, e.Status, e.Bank, e.Added, e.Skipped,
		string(rec.Payload), time.UnixMilli(e.TsUnixMs).UTC(),
		rec.Partition, rec.Offset,
	)
	return err
}
