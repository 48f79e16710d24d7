package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/guyawaked93/apposta/internal/ledger-service/backup"
	httpapi "github.com/guyawaked93/apposta/internal/ledger-service/http"
	"github.com/guyawaked93/apposta/internal/ledger-service/producer"
	"github.com/guyawaked93/apposta/internal/ledger-service/service"
	"github.com/guyawaked93/apposta/internal/ledger-service/ws"
	"github.com/guyawaked93/apposta/internal/shared/cache"
	"github.com/guyawaked93/apposta/internal/shared/config"
	"github.com/guyawaked93/apposta/internal/shared/db"
	"github.com/guyawaked93/apposta/internal/shared/kafka"
	"github.com/guyawaked93/apposta/internal/shared/logger"
	"github.com/guyawaked93/apposta/internal/shared/metrics"
	"github.com/guyawaked93/apposta/internal/state"
	"github.com/guyawaked93/apposta/internal/store"
	"github.com/guyawaked93/apposta/pkg/ledger"
)

func main() {
	// carrega config
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Errorf("config: %w", err))
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "ledger-service"
	}

	// inicia logger
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("starting service", zap.String("store", cfg.StoreDriver))

	// armazenamento do estado
	kv, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to open store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	defer closeStore()

	svc := service.New(ctx, kv, log)
	svc.OnMutation = func(kind string) { metrics.Mutations.WithLabelValues(kind).Inc() }
	svc.OnStoreError = func(op string) { metrics.StoreErrors.WithLabelValues(op).Inc() }
	svc.OnImport = func(added, skipped int) {
		metrics.ImportedBets.WithLabelValues("added").Add(float64(added))
		metrics.ImportedBets.WithLabelValues("skipped").Add(float64(skipped))
	}
	svc.OnSummary = observeSummary
	observeSummary(svc.Summary())

	// eventos de domínio (opcional: KAFKA_BROKERS vazio desliga)
	if brokers := cfg.Brokers(); len(brokers) > 0 {
		writer := kafka.NewWriter(brokers, cfg.TopicLedgerEvents)
		defer writer.Close()
		svc.Events = &countingPublisher{next: producer.NewKafkaPublisher(writer)}
		log.Info("kafka writer ready", zap.String("topic", cfg.TopicLedgerEvents))
	}

	// websocket de resumos
	hub := ws.NewHub(allowOrigin(cfg.CORSOrigins), log)
	hub.Snapshot = svc.Summary
	hub.OnConnect = metrics.WSClients.Inc
	hub.OnDisconnect = metrics.WSClients.Dec
	svc.Live = hub

	// backup agendado
	if cfg.BackupCron != "" {
		bk, err := backup.New(cfg.BackupCron, cfg.BackupDir, svc.Export, log)
		if err != nil {
			log.Fatal("invalid backup schedule", zap.Error(err))
		}
		bk.Start()
		defer bk.Stop()
	}

	// sobe servidor de métricas e health
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, svc.Ping)
	log.Info("metrics/health server starting", zap.String("addr", metricsSrv.Addr))

	api := &httpapi.API{Log: log, Svc: svc, Hub: hub, Origins: cfg.CORSOrigins}
	apiSrv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("ledger-service listening", zap.String("addr", apiSrv.Addr))
		if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("api server failed", zap.Error(err))
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	_ = apiSrv.Shutdown(shutdownCtx)
	_ = metricsSrv.Shutdown(shutdownCtx)
}

// openStore escolhe o backend pelo STORE_DRIVER
func openStore(ctx context.Context, cfg config.Config, log *zap.Logger) (store.KV, func(), error) {
	switch cfg.StoreDriver {
	case store.DriverMemory:
		log.Warn("memory store: state is lost on restart")
		return store.NewMemory(), func() {}, nil
	case store.DriverFile:
		f, err := store.NewFile(cfg.StateDir)
		if err != nil {
			return nil, nil, err
		}
		log.Info("file store ready", zap.String("path", f.Path(state.StorageKey)))
		return f, func() {}, nil
	case store.DriverSQLite:
		s, err := store.NewSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		log.Info("sqlite store ready", zap.String("path", cfg.SQLitePath))
		return s, func() { s.Close() }, nil
	case store.DriverRedis:
		rdb, err := cache.ConnectRedis(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, nil, err
		}
		log.Info("redis connected")
		return store.NewRedis(rdb), func() { rdb.Close() }, nil
	case store.DriverPostgres:
		pg, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		p, err := store.NewPostgres(ctx, pg)
		if err != nil {
			pg.Close()
			return nil, nil, err
		}
		log.Info("postgres connected")
		return p, func() { pg.Close() }, nil
	default:
		return nil, nil, store.ErrUnknownDriver(cfg.StoreDriver)
	}
}

// observeSummary atualiza os gauges do ledger
func observeSummary(s ledger.Summary) {
	metrics.Exposure.Set(s.Exposure)
	metrics.Balance.Set(s.Balance)
	metrics.BetCount.WithLabelValues(string(ledger.StatusPending)).Set(float64(s.Pending))
	metrics.BetCount.WithLabelValues(string(ledger.StatusWon)).Set(float64(s.Won))
	metrics.BetCount.WithLabelValues(string(ledger.StatusLost)).Set(float64(s.Lost))
}

// allowOrigin reaproveita a lista de CORS para o handshake do websocket
func allowOrigin(origins []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(origins, "*") || slices.Contains(origins, origin)
	}
}
