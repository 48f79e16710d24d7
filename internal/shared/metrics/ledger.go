package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Mutations conta mutações persistidas por tipo (upsert, status, delete, bank, import)
	Mutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_mutations_total",
		Help: "Mutações persistidas no ledger",
	}, []string{"kind"})

	// ImportedBets conta apostas adicionadas e ignoradas em importações CSV
	ImportedBets = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_import_bets_total",
		Help: "Apostas importadas via CSV por resultado",
	}, []string{"result"})

	// StoreErrors conta falhas do armazenamento por operação
	StoreErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_store_errors_total",
		Help: "Falhas de leitura/escrita no armazenamento",
	}, []string{"op"})

	// EventErrors conta falhas ao publicar eventos
	EventErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledger_event_publish_errors_total",
		Help: "Falhas ao publicar ledger_events",
	})

	Exposure = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ledger_exposure",
		Help: "Soma das stakes pendentes",
	})
	Balance = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ledger_balance",
		Help: "Banca + lucro realizado",
	})
	BetCount = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ledger_bets",
		Help: "Apostas por status",
	}, []string{"status"})

	WSClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ledger_ws_clients",
		Help: "Clientes WebSocket conectados",
	})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_http_requests_total",
		Help: "Requisições HTTP",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ledger_http_request_duration_seconds",
		Help:    "Duração das requisições HTTP",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "route"})
)

// Middleware registra contagem e latência por rota do chi (padrão, não o path cru)
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(sw.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// statusWriter captura o status devolvido ao cliente
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Unwrap permite que o http.ResponseController alcance o writer de baixo
func (w *statusWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// Hijack repassa o hijack para o upgrade do websocket
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	w.status = http.StatusSwitchingProtocols
	return h.Hijack()
}
