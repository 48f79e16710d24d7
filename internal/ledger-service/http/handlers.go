package httpapi

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/guyawaked93/apposta/internal/ledger-service/dto"
	"github.com/guyawaked93/apposta/internal/ledger-service/service"
	"github.com/guyawaked93/apposta/pkg/ledger"
)

func (a *API) getState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, a.Svc.State())
}

func (a *API) getSummary(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, a.Svc.Summary())
}

// setBank aceita número ou texto com vírgula; inválido vira 0
func (a *API) setBank(w http.ResponseWriter, r *http.Request) {
	var req dto.BankRequest
	if !decode(w, r, &req) {
		return
	}
	st, err := a.Svc.SetBank(r.Context(), float64(req.Bank))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ledger.Summarize(st))
}

func (a *API) adjustBank(w http.ResponseWriter, r *http.Request) {
	var req dto.AdjustBankRequest
	if !decode(w, r, &req) {
		return
	}
	st, err := a.Svc.AdjustBank(r.Context(), float64(req.Delta))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ledger.Summarize(st))
}

// listBets: ?status=&sort=&dir=asc|desc&page=&size= (padrão: data desc)
func (a *API) listBets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("size"))
	bets, info := a.Svc.List(service.ListQuery{
		Status: strings.ToLower(q.Get("status")),
		Sort:   service.ParseSortKey(q.Get("sort")),
		Desc:   !strings.EqualFold(q.Get("dir"), "asc"),
		Page:   page,
		Size:   size,
	})
	writeJSON(w, http.StatusOK, dto.BetsPage{Bets: bets, Page: info})
}

func (a *API) getBet(w http.ResponseWriter, r *http.Request) {
	b, err := a.Svc.Get(chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (a *API) createBet(w http.ResponseWriter, r *http.Request) {
	var req dto.BetRequest
	if !decode(w, r, &req) {
		return
	}
	b, err := a.Svc.UpsertBet(r.Context(), req.Input("")) // criação sempre gera id novo
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (a *API) updateBet(w http.ResponseWriter, r *http.Request) {
	var req dto.BetRequest
	if !decode(w, r, &req) {
		return
	}
	b, err := a.Svc.UpsertBet(r.Context(), req.Input(chi.URLParam(r, "id")))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (a *API) setStatus(w http.ResponseWriter, r *http.Request) {
	var req dto.StatusRequest
	if !decode(w, r, &req) {
		return
	}
	st := ledger.Status(strings.ToLower(strings.TrimSpace(req.Status)))
	if !st.Valid() {
		writeError(w, http.StatusBadRequest, "status must be pending, won or lost")
		return
	}
	b, err := a.Svc.SetStatus(r.Context(), chi.URLParam(r, "id"), st)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (a *API) deleteBet(w http.ResponseWriter, r *http.Request) {
	if err := a.Svc.DeleteBet(r.Context(), chi.URLParam(r, "id")); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// exportCSV devolve o arquivo apostas_YYYY-MM-DD.csv
func (a *API) exportCSV(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+service.ExportFilename(a.now())+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, a.Svc.Export())
}

// importCSV recebe o CSV cru no corpo e retorna quantas apostas entraram e quantas eram duplicadas
func (a *API) importCSV(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "csv too large")
		return
	}
	res, err := a.Svc.Import(r.Context(), string(body))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ImportResponse{Added: res.Added, Skipped: res.Skipped})
}
