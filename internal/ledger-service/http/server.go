package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/guyawaked93/apposta/internal/ledger-service/dto"
	"github.com/guyawaked93/apposta/internal/ledger-service/service"
	"github.com/guyawaked93/apposta/internal/ledger-service/ws"
	"github.com/guyawaked93/apposta/internal/shared/metrics"
	"github.com/guyawaked93/apposta/pkg/calculator"
	"github.com/guyawaked93/apposta/pkg/ledger"
)

// maxImportBytes limita o corpo do POST /v1/import
const maxImportBytes = 5 << 20

// API expõe os endpoints REST do ledger
// Svc é o dono do estado; Hub (opcional) atende o WebSocket de resumos
type API struct {
	Log     *zap.Logger
	Svc     *service.Service
	Hub     *ws.Hub
	Origins []string // CORS

	now func() time.Time
}

// Router retorna o roteador HTTP com os endpoints REST
func (a *API) Router() http.Handler {
	if a.now == nil {
		a.now = time.Now
	}
	origins := a.Origins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	if a.Hub != nil {
		r.Get("/v1/ws", a.Hub.HandleWS) // resumos ao vivo
	}

	r.Group(func(r chi.Router) {
		r.Use(metrics.Middleware)

		r.Get("/v1/state", a.getState)     // Estado completo {bank, bets}
		r.Get("/v1/summary", a.getSummary) // Indicadores de banca e estatísticas

		r.Put("/v1/bank", a.setBank)
		r.Post("/v1/bank/adjust", a.adjustBank)

		r.Get("/v1/bets", a.listBets)
		r.Post("/v1/bets", a.createBet)
		r.Get("/v1/bets/{id}", a.getBet)
		r.Put("/v1/bets/{id}", a.updateBet)
		r.Patch("/v1/bets/{id}/status", a.setStatus)
		r.Delete("/v1/bets/{id}", a.deleteBet)

		r.Get("/v1/export.csv", a.exportCSV)
		r.Post("/v1/import", a.importCSV)

		r.Post("/v1/calculators/dutching", a.dutching)
		r.Post("/v1/calculators/each-way", a.eachWay)
	})
	return r
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, dto.ErrorResponse{Error: msg})
}

// fail traduz erros de domínio em status HTTP
func (a *API) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ledger.ErrInvalidBet), errors.Is(err, calculator.ErrTooFewRunners),
		errors.Is(err, service.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		a.Log.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("requestId", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// decode lê o corpo JSON; responde 400 e retorna false se inválido
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return false
	}
	return true
}
