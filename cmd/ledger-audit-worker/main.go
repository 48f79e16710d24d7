package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/guyawaked93/apposta/internal/ledger-audit/consumer"
	"github.com/guyawaked93/apposta/internal/ledger-audit/repository"
	"github.com/guyawaked93/apposta/internal/shared/config"
	"github.com/guyawaked93/apposta/internal/shared/db"
	"github.com/guyawaked93/apposta/internal/shared/kafka"
	"github.com/guyawaked93/apposta/internal/shared/logger"
	"github.com/guyawaked93/apposta/internal/shared/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Errorf("config: %w", err))
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "ledger-audit-worker"
	}
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	brokers := cfg.Brokers()
	if len(brokers) == 0 {
		log.Fatal("KAFKA_BROKERS is required")
	}

	// Postgres guarda o histórico append-only
	pg, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	repo, err := repository.NewPostgresRepo(ctx, pg)
	if err != nil {
		log.Fatal("audit schema", zap.Error(err))
	}

	// Consumer group ledger-audit
	reader := kafka.NewReader(brokers, cfg.TopicLedgerEvents, "ledger-audit")
	defer reader.Close()

	var dlq func(context.Context, kafkago.Message) error
	if cfg.TopicLedgerEventsDLQ != "" {
		dlqWriter := kafka.NewWriter(brokers, cfg.TopicLedgerEventsDLQ)
		defer dlqWriter.Close()
		dlq = func(ctx context.Context, m kafkago.Message) error {
			return kafka.Forward(ctx, dlqWriter, m.Key, m.Value)
		}
	}

	// Métricas Prometheus para monitoramento do processamento
	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "ledger_audit_messages_consumed_total", Help: "mensagens consumidas"})
	persist := prometheus.NewCounter(prometheus.CounterOpts{Name: "ledger_audit_db_writes_total", Help: "eventos gravados em ledger_audit"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "ledger_audit_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, persist, errorsBy)

	proc := &consumer.Processor{
		Log:        log,
		Reader:     reader,
		Repo:       repo,
		DLQ:        dlq,
		Retries:    3,
		Backoff:    300 * time.Millisecond,
		OnConsumed: consumed.Inc,
		OnPersist:  persist.Inc,
		OnError:    func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}

	// Servidor HTTP para métricas e health check
	srv := metrics.StartMetricsServer(cfg.MetricsPort, pg.PingContext)
	defer srv.Close()
	log.Info("metrics/health listening", zap.String("addr", srv.Addr))

	log.Info("ledger-audit-worker started", zap.String("consume", cfg.TopicLedgerEvents))
	if err := proc.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("processor stopped with error", zap.Error(err))
	}
	log.Info("ledger-audit-worker stopped")
}
