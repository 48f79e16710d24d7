package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/guyawaked93/apposta/internal/ledger-service/dto"
	"github.com/guyawaked93/apposta/internal/ledger-service/service"
	"github.com/guyawaked93/apposta/internal/store"
	"github.com/guyawaked93/apposta/pkg/calculator"
	"github.com/guyawaked93/apposta/pkg/ledger"
)

func newTestAPI(t *testing.T) (http.Handler, *service.Service) {
	t.Helper()
	log := zaptest.NewLogger(t)
	svc := service.New(context.Background(), store.NewMemory(), log)
	api := &API{
		Log: log,
		Svc: svc,
		now: func() time.Time { return time.Date(2025, 5, 20, 10, 0, 0, 0, time.UTC) },
	}
	return api.Router(), svc
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" && !strings.HasPrefix(path, "/v1/import") {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestBetLifecycle(t *testing.T) {
	h, _ := newTestAPI(t)

	rec := do(t, h, http.MethodPost, "/v1/bets",
		`{"date":"2025-05-01","game":"Palmeiras x Santos","market":"Over 2.5","odds":"1,90","stake":"20","status":"pending"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d body %s", rec.Code, rec.Body)
	}
	b := decodeBody[ledger.Bet](t, rec)
	if b.ID == "" || b.Odds != 1.9 || b.Stake != 20 {
		t.Fatalf("created = %+v", b)
	}

	rec = do(t, h, http.MethodPatch, "/v1/bets/"+b.ID+"/status", `{"status":"WON"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status code = %d body %s", rec.Code, rec.Body)
	}
	if got := decodeBody[ledger.Bet](t, rec); got.Status != ledger.StatusWon {
		t.Errorf("status = %s", got.Status)
	}

	sum := decodeBody[ledger.Summary](t, do(t, h, http.MethodGet, "/v1/summary", ""))
	if sum.Won != 1 || sum.Exposure != 0 || sum.RealizedProfit < 17.99 || sum.RealizedProfit > 18.01 {
		t.Errorf("summary = %+v", sum)
	}

	rec = do(t, h, http.MethodPut, "/v1/bets/"+b.ID,
		`{"date":"2025-05-01","game":"Palmeiras x Santos","market":"Over 2.5","odds":"2","stake":"20","status":"lost"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update = %d body %s", rec.Code, rec.Body)
	}
	if got := decodeBody[ledger.Bet](t, do(t, h, http.MethodGet, "/v1/bets/"+b.ID, "")); got.Status != ledger.StatusLost || got.Odds != 2 {
		t.Errorf("after update = %+v", got)
	}

	if rec := do(t, h, http.MethodDelete, "/v1/bets/"+b.ID, ""); rec.Code != http.StatusNoContent {
		t.Errorf("delete = %d", rec.Code)
	}
	if rec := do(t, h, http.MethodDelete, "/v1/bets/"+b.ID, ""); rec.Code != http.StatusNotFound {
		t.Errorf("second delete = %d", rec.Code)
	}
}

func TestErrors(t *testing.T) {
	h, _ := newTestAPI(t)
	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"bad json", http.MethodPost, "/v1/bets", `{`, http.StatusBadRequest},
		{"missing game", http.MethodPost, "/v1/bets", `{"date":"2025-01-01","market":"m","odds":"2","stake":"1"}`, http.StatusBadRequest},
		{"zero odds", http.MethodPost, "/v1/bets", `{"date":"2025-01-01","game":"g","market":"m","odds":"x","stake":"1"}`, http.StatusBadRequest},
		{"update unknown", http.MethodPut, "/v1/bets/nope", `{"date":"2025-01-01","game":"g","market":"m","odds":"2","stake":"1"}`, http.StatusNotFound},
		{"get unknown", http.MethodGet, "/v1/bets/nope", "", http.StatusNotFound},
		{"invalid status", http.MethodPatch, "/v1/bets/nope/status", `{"status":"void"}`, http.StatusBadRequest},
		{"status unknown bet", http.MethodPatch, "/v1/bets/nope/status", `{"status":"won"}`, http.StatusNotFound},
		{"odds as object", http.MethodPost, "/v1/bets", `{"date":"2025-01-01","game":"g","market":"m","odds":{},"stake":"1"}`, http.StatusBadRequest},
		{"one runner", http.MethodPost, "/v1/calculators/dutching", `{"budget":10,"odds":[2]}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.path, tt.body)
			if rec.Code != tt.want {
				t.Fatalf("code = %d, want %d (body %s)", rec.Code, tt.want, rec.Body)
			}
			if e := decodeBody[dto.ErrorResponse](t, rec); e.Error == "" {
				t.Error("empty error message")
			}
		})
	}
}

func TestBank(t *testing.T) {
	h, svc := newTestAPI(t)

	rec := do(t, h, http.MethodPut, "/v1/bank", `{"bank":"1.500,00"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	// "1.500,00" -> "1.500.00" não é número: vira 0
	if svc.State().Bank != 0 {
		t.Errorf("Bank = %v, want 0", svc.State().Bank)
	}

	do(t, h, http.MethodPut, "/v1/bank", `{"bank":"250,75"}`)
	if svc.State().Bank != 250.75 {
		t.Errorf("Bank = %v, want 250.75", svc.State().Bank)
	}
	rec = do(t, h, http.MethodPost, "/v1/bank/adjust", `{"delta":-50.75}`)
	sum := decodeBody[ledger.Summary](t, rec)
	if sum.Bank != 200 || sum.Balance != 200 {
		t.Errorf("summary = %+v", sum)
	}

	// soma que estoura para +Inf é rejeitada sem tocar na banca
	do(t, h, http.MethodPut, "/v1/bank", `{"bank":1e308}`)
	rec = do(t, h, http.MethodPost, "/v1/bank/adjust", `{"delta":1e308}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("overflow adjust = %d %s", rec.Code, rec.Body)
	}
	if svc.State().Bank != 1e308 {
		t.Errorf("Bank = %v, want 1e308", svc.State().Bank)
	}
}

func TestCreateBetNumericFields(t *testing.T) {
	h, svc := newTestAPI(t)

	rec := do(t, h, http.MethodPost, "/v1/bets",
		`{"date":"2025-05-04","game":"Grêmio x Inter","market":"1X2","odds":1.9,"stake":20,"status":"won"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create = %d %s", rec.Code, rec.Body)
	}
	b := decodeBody[ledger.Bet](t, rec)
	if b.Odds != 1.9 || b.Stake != 20 || b.Status != ledger.StatusWon {
		t.Errorf("created = %+v", b)
	}

	rec = do(t, h, http.MethodPut, "/v1/bets/"+b.ID,
		`{"date":"2025-05-04","game":"Grêmio x Inter","market":"1X2","odds":"2,1","stake":25.5,"status":"lost"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update = %d %s", rec.Code, rec.Body)
	}
	got, err := svc.Get(b.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Odds != 2.1 || got.Stake != 25.5 || got.Status != ledger.StatusLost {
		t.Errorf("updated = %+v", got)
	}
}

func TestImportExport(t *testing.T) {
	h, _ := newTestAPI(t)
	csv := "Date,Game,Market,Odds,Stake,Status,Note\r\n" +
		"2025-05-02,Bahia x Vitória,1X2,2.4,10,lost,\r\n" +
		"2025-05-03,Ceará x Fortaleza,BTTS,\"1,8\",15,won,\"clássico, tenso\"\r\n"

	rec := do(t, h, http.MethodPost, "/v1/import", csv)
	if rec.Code != http.StatusOK {
		t.Fatalf("import = %d %s", rec.Code, rec.Body)
	}
	if got := decodeBody[dto.ImportResponse](t, rec); got.Added != 2 || got.Skipped != 0 {
		t.Errorf("import = %+v", got)
	}

	rec = do(t, h, http.MethodGet, "/v1/export.csv", "")
	if cd := rec.Header().Get("Content-Disposition"); cd != `attachment; filename="apostas_2025-05-20.csv"` {
		t.Errorf("Content-Disposition = %q", cd)
	}
	exported := rec.Body.String()
	want := strings.Join(ledger.CSVHeader, ",") + "\n" +
		"2025-05-02,Bahia x Vitória,1X2,2.4,10,lost,\n" +
		"2025-05-03,Ceará x Fortaleza,BTTS,1.8,15,won,\"clássico, tenso\""
	if exported != want {
		t.Errorf("export = %q, want storage order %q", exported, want)
	}

	rec = do(t, h, http.MethodPost, "/v1/import", exported)
	if got := decodeBody[dto.ImportResponse](t, rec); got.Added != 0 || got.Skipped != 2 {
		t.Errorf("re-import = %+v", got)
	}
}

func TestListBets(t *testing.T) {
	h, svc := newTestAPI(t)
	ctx := context.Background()
	for i, d := range []string{"2025-01-03", "2025-01-01", "2025-01-02"} {
		st := "pending"
		if i == 0 {
			st = "won"
		}
		if _, err := svc.UpsertBet(ctx, ledger.BetInput{Date: d, Game: "g" + d, Market: "m", Odds: "2", Stake: "1", Status: st}); err != nil {
			t.Fatal(err)
		}
	}

	page := decodeBody[dto.BetsPage](t, do(t, h, http.MethodGet, "/v1/bets", ""))
	if len(page.Bets) != 3 || page.Bets[0].Date != "2025-01-03" || page.Page.Total != 3 {
		t.Errorf("default = %+v", page)
	}
	page = decodeBody[dto.BetsPage](t, do(t, h, http.MethodGet, "/v1/bets?sort=date&dir=asc&size=2&page=2", ""))
	if len(page.Bets) != 1 || page.Bets[0].Date != "2025-01-03" || page.Page.PageCount != 2 {
		t.Errorf("page 2 asc = %+v", page)
	}
	page = decodeBody[dto.BetsPage](t, do(t, h, http.MethodGet, "/v1/bets?status=pending", ""))
	if len(page.Bets) != 2 {
		t.Errorf("pending = %+v", page)
	}
}

func TestCalculators(t *testing.T) {
	h, _ := newTestAPI(t)

	rec := do(t, h, http.MethodPost, "/v1/calculators/dutching", `{"budget":"10","odds":[12,"4"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("dutching = %d %s", rec.Code, rec.Body)
	}
	d := decodeBody[calculator.DutchResult](t, rec)
	if d.Runners[0].Stake != 2.5 || d.Runners[1].Stake != 7.5 || d.ExpectedReturn != 30 {
		t.Errorf("dutching = %+v", d)
	}

	rec = do(t, h, http.MethodPost, "/v1/calculators/each-way", `{"budget":10,"odds":5}`)
	e := decodeBody[calculator.EachWayResult](t, rec)
	if e.PlaceOdds != 2 || e.PlacesPaid != 3 || e.PlaceTerms != "25%" || e.WinProfit != 25 {
		t.Errorf("each-way = %+v", e)
	}
}

func TestStateAndCORS(t *testing.T) {
	h, _ := newTestAPI(t)
	rec := do(t, h, http.MethodGet, "/v1/state", "")
	if rec.Body.String() != "{\"bank\":0,\"bets\":[]}\n" {
		t.Errorf("state = %q", rec.Body)
	}

	req := httptest.NewRequest(http.MethodOptions, "/v1/bets", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "PATCH")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Allow-Origin = %q", got)
	}
}
