package service_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/guyawaked93/apposta/internal/ledger-service/service"
	"github.com/guyawaked93/apposta/internal/state"
	"github.com/guyawaked93/apposta/internal/store"
	"github.com/guyawaked93/apposta/pkg/contracts/events"
	"github.com/guyawaked93/apposta/pkg/ledger"
)

type recorder struct {
	mu        sync.Mutex
	events    []events.LedgerEvent
	summaries []ledger.Summary
	fail      bool
}

func (r *recorder) Publish(_ context.Context, e events.LedgerEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	if r.fail {
		return errors.New("kafka down")
	}
	return nil
}

func (r *recorder) Broadcast(s ledger.Summary) {
	r.mu.Lock()
	r.summaries = append(r.summaries, s)
	r.mu.Unlock()
}

// brokenKV lê normalmente mas falha na escrita quando fail=true
type brokenKV struct {
	*store.Memory
	fail bool
}

func (b *brokenKV) Set(ctx context.Context, key, value string) error {
	if b.fail {
		return errors.New("disk full")
	}
	return b.Memory.Set(ctx, key, value)
}

func newService(t *testing.T) (*service.Service, *store.Memory, *recorder) {
	t.Helper()
	kv := store.NewMemory()
	rec := &recorder{}
	svc := service.New(context.Background(), kv, zaptest.NewLogger(t))
	svc.Events = rec
	svc.Live = rec
	return svc, kv, rec
}

func input(date, game string, odds, stake string) ledger.BetInput {
	return ledger.BetInput{Date: date, Game: game, Market: "1X2", Odds: odds, Stake: stake, Status: "pending"}
}

func TestUpsertPersistsAndNotifies(t *testing.T) {
	ctx := context.Background()
	svc, kv, rec := newService(t)

	b, err := svc.UpsertBet(ctx, input("2025-03-01", "Santos x Bahia", "2,0", "10"))
	if err != nil {
		t.Fatalf("UpsertBet() error = %v", err)
	}
	if b.ID == "" || b.Odds != 2 {
		t.Errorf("bet = %+v", b)
	}

	persisted := state.Load(ctx, kv)
	if len(persisted.Bets) != 1 || persisted.Bets[0].ID != b.ID {
		t.Errorf("persisted = %+v", persisted)
	}
	if len(rec.events) != 1 || rec.events[0].Type != events.BetUpserted || rec.events[0].BetID != b.ID {
		t.Errorf("events = %+v", rec.events)
	}
	if rec.events[0].TsUnixMs == 0 {
		t.Error("event timestamp not set")
	}
	if len(rec.summaries) != 1 || rec.summaries[0].Exposure != 10 {
		t.Errorf("summaries = %+v", rec.summaries)
	}

	// edição mantém o id e a posição
	in := input("2025-03-01", "Santos x Bahia", "2.2", "10")
	in.ID = b.ID
	edited, err := svc.UpsertBet(ctx, in)
	if err != nil || edited.ID != b.ID || edited.Odds != 2.2 {
		t.Errorf("edit = %+v, %v", edited, err)
	}
	if n := len(svc.State().Bets); n != 1 {
		t.Errorf("len(bets) = %d after edit, want 1", n)
	}
}

func TestUpsertErrors(t *testing.T) {
	ctx := context.Background()
	svc, _, rec := newService(t)

	if _, err := svc.UpsertBet(ctx, input("", "x", "2", "1")); !errors.Is(err, ledger.ErrInvalidBet) {
		t.Errorf("err = %v, want ErrInvalidBet", err)
	}
	in := input("2025-01-01", "x", "2", "1")
	in.ID = "missing"
	if _, err := svc.UpsertBet(ctx, in); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if len(rec.events) != 0 || len(svc.State().Bets) != 0 {
		t.Error("failed upsert must not change state or emit events")
	}
}

func TestSetStatusAndDelete(t *testing.T) {
	ctx := context.Background()
	svc, _, rec := newService(t)
	b, _ := svc.UpsertBet(ctx, input("2025-03-01", "A x B", "3", "10"))

	got, err := svc.SetStatus(ctx, b.ID, ledger.StatusWon)
	if err != nil || got.Status != ledger.StatusWon {
		t.Fatalf("SetStatus() = %+v, %v", got, err)
	}
	if s := svc.Summary(); s.RealizedProfit != 20 || s.Exposure != 0 {
		t.Errorf("summary after win = %+v", s)
	}
	if _, err := svc.SetStatus(ctx, b.ID, ledger.StatusPending); err != nil {
		t.Errorf("back to pending: %v", err)
	}
	if _, err := svc.SetStatus(ctx, "nope", ledger.StatusLost); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}

	if err := svc.DeleteBet(ctx, b.ID); err != nil {
		t.Fatalf("DeleteBet() error = %v", err)
	}
	if err := svc.DeleteBet(ctx, b.ID); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("second delete err = %v", err)
	}
	last := rec.events[len(rec.events)-1]
	if last.Type != events.BetDeleted || last.BetID != b.ID {
		t.Errorf("last event = %+v", last)
	}
}

func TestBank(t *testing.T) {
	ctx := context.Background()
	svc, kv, rec := newService(t)

	if _, err := svc.SetBank(ctx, 100); err != nil {
		t.Fatal(err)
	}
	st, err := svc.AdjustBank(ctx, -30.5)
	if err != nil {
		t.Fatal(err)
	}
	if st.Bank != 69.5 {
		t.Errorf("Bank = %v, want 69.5", st.Bank)
	}
	if state.Load(ctx, kv).Bank != 69.5 {
		t.Error("bank not persisted")
	}
	if rec.events[1].Type != events.BankChanged || rec.events[1].Bank != 69.5 {
		t.Errorf("event = %+v", rec.events[1])
	}
}

func TestImportExport(t *testing.T) {
	ctx := context.Background()
	svc, _, rec := newService(t)
	var added, skipped int
	svc.OnImport = func(a, s int) { added, skipped = a, s }

	csv := "date,game,market,odds,stake,status,note\n" +
		"2025-01-01,A x B,Over,1.9,10,won,\n" +
		"2025-01-02,C x D,BTTS,2.1,5,pending,\"nota, com vírgula\""
	res, err := svc.Import(ctx, csv)
	if err != nil {
		t.Fatal(err)
	}
	if res.Added != 2 || res.Skipped != 0 {
		t.Errorf("first import = %+v", res)
	}

	res, err = svc.Import(ctx, svc.Export())
	if err != nil {
		t.Fatal(err)
	}
	if res.Added != 0 || res.Skipped != 2 {
		t.Errorf("re-import = added %d skipped %d, want 0/2", res.Added, res.Skipped)
	}
	if added != 0 || skipped != 2 {
		t.Errorf("OnImport = %d/%d", added, skipped)
	}
	if n := len(svc.State().Bets); n != 2 {
		t.Errorf("len(bets) = %d, want 2", n)
	}

	exp := svc.Export()
	want := "date,game,market,odds,stake,status,note\n" +
		"2025-01-01,A x B,Over,1.9,10,won,\n" +
		"2025-01-02,C x D,BTTS,2.1,5,pending,\"nota, com vírgula\""
	if exp != want {
		t.Errorf("Export() =\n%s\nwant\n%s", exp, want)
	}
	last := rec.events[len(rec.events)-1]
	if last.Type != events.BetsImported || last.Skipped != 2 {
		t.Errorf("last event = %+v", last)
	}
}

func TestExportKeepsStorageOrder(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	csv := "date,game,market,odds,stake,status,note\n" +
		"2024-01-01,A,1X2,2,10,pending,\n" +
		"2024-03-01,B,1X2,2,10,pending,\n" +
		"2024-02-01,C,1X2,2,10,pending,"
	if _, err := svc.Import(ctx, csv); err != nil {
		t.Fatal(err)
	}
	stored := svc.State().Bets
	got := ledger.FromCSV(svc.Export())
	if len(got) != len(stored) {
		t.Fatalf("exported %d bets, stored %d", len(got), len(stored))
	}
	for i := range stored {
		if got[i].Game != stored[i].Game {
			t.Errorf("row %d = %s, stored %s", i, got[i].Game, stored[i].Game)
		}
	}
	if stored[0].Game != "A" || stored[1].Game != "B" || stored[2].Game != "C" {
		t.Errorf("stored order = %s %s %s", stored[0].Game, stored[1].Game, stored[2].Game)
	}

	// reimportar num ledger vazio reproduz a mesma ordem
	other, _, _ := newService(t)
	if _, err := other.Import(ctx, svc.Export()); err != nil {
		t.Fatal(err)
	}
	if other.Export() != svc.Export() {
		t.Errorf("round trip export =\n%s\nwant\n%s", other.Export(), svc.Export())
	}
}

func TestImportWithoutRowsIsNoop(t *testing.T) {
	ctx := context.Background()
	svc, kv, rec := newService(t)
	var calls int
	svc.OnMutation = func(string) { calls++ }

	for _, csv := range []string{"", "date,game,market,odds,stake,status,note\n", "\n  \n"} {
		res, err := svc.Import(ctx, csv)
		if err != nil {
			t.Fatalf("Import(%q) error = %v", csv, err)
		}
		if res.Added != 0 || res.Skipped != 0 {
			t.Errorf("Import(%q) = %+v", csv, res)
		}
	}
	if calls != 0 || len(rec.events) != 0 || len(rec.summaries) != 0 {
		t.Errorf("mutations=%d events=%d broadcasts=%d, want none", calls, len(rec.events), len(rec.summaries))
	}
	if _, ok, _ := kv.Get(ctx, state.StorageKey); ok {
		t.Error("empty import persisted state")
	}
}

func TestBankRejectsNonFinite(t *testing.T) {
	ctx := context.Background()
	svc, kv, rec := newService(t)

	if _, err := svc.AdjustBank(ctx, 1e308); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AdjustBank(ctx, 1e308); !errors.Is(err, service.ErrInvalidAmount) {
		t.Fatalf("AdjustBank(overflow) error = %v, want ErrInvalidAmount", err)
	}
	if _, err := svc.SetBank(ctx, math.Inf(1)); !errors.Is(err, service.ErrInvalidAmount) {
		t.Errorf("SetBank(+Inf) error = %v, want ErrInvalidAmount", err)
	}
	if got := svc.State().Bank; got != 1e308 {
		t.Errorf("Bank = %v, want 1e308", got)
	}
	if state.Load(ctx, kv).Bank != 1e308 || len(rec.events) != 1 {
		t.Errorf("persisted bank = %v, events = %d", state.Load(ctx, kv).Bank, len(rec.events))
	}
}

func TestList(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)
	for _, d := range []string{"2025-01-02", "2025-01-05", "2025-01-01"} {
		if _, err := svc.UpsertBet(ctx, input(d, "G "+d, "2", "1")); err != nil {
			t.Fatal(err)
		}
	}
	bets, info := svc.List(service.ListQuery{})
	if len(bets) != 3 || bets[0].Date != "2025-01-05" || bets[2].Date != "2025-01-01" {
		t.Errorf("default order = %+v", bets)
	}
	if info.Total != 3 || info.PageCount != 1 {
		t.Errorf("info = %+v", info)
	}

	bets, _ = svc.List(service.ListQuery{Sort: ledger.SortDate})
	if bets[0].Date != "2025-01-01" {
		t.Errorf("asc order = %+v", bets)
	}
	bets, info = svc.List(service.ListQuery{Status: "won"})
	if len(bets) != 0 || info.Start != 0 {
		t.Errorf("won = %+v %+v", bets, info)
	}
}

func TestSaveFailureKeepsPreviousState(t *testing.T) {
	ctx := context.Background()
	kv := &brokenKV{Memory: store.NewMemory()}
	rec := &recorder{}
	svc := service.New(ctx, kv, zaptest.NewLogger(t))
	svc.Events = rec
	var storeErrs int
	svc.OnStoreError = func(string) { storeErrs++ }

	if _, err := svc.SetBank(ctx, 50); err != nil {
		t.Fatal(err)
	}
	kv.fail = true
	if _, err := svc.SetBank(ctx, 80); err == nil {
		t.Fatal("SetBank() error = nil, want persist error")
	}
	if svc.State().Bank != 50 {
		t.Errorf("Bank = %v, want 50", svc.State().Bank)
	}
	if storeErrs != 1 || len(rec.events) != 1 {
		t.Errorf("storeErrs=%d events=%d", storeErrs, len(rec.events))
	}
}

func TestPublishFailureIsNotSurfaced(t *testing.T) {
	ctx := context.Background()
	svc, _, rec := newService(t)
	rec.fail = true
	if _, err := svc.SetBank(ctx, 10); err != nil {
		t.Errorf("SetBank() error = %v, publish failures must be swallowed", err)
	}
}

func TestLoadsExistingState(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	_ = state.Save(ctx, kv, ledger.AppState{Bank: 7, Bets: []ledger.Bet{{ID: "x", Date: "2025-01-01", Stake: 1, Odds: 2, Status: ledger.StatusLost}}})

	svc := service.New(ctx, kv, zaptest.NewLogger(t))
	if s := svc.Summary(); s.Bank != 7 || s.Bets != 1 || s.RealizedProfit != -1 {
		t.Errorf("summary = %+v", s)
	}
	if _, err := svc.Get("x"); err != nil {
		t.Errorf("Get(x) error = %v", err)
	}
	if err := svc.Ping(ctx); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func TestExportFilename(t *testing.T) {
	now := time.Date(2025, 4, 9, 23, 0, 0, 0, time.UTC)
	if got := service.ExportFilename(now); got != "apostas_2025-04-09.csv" {
		t.Errorf("ExportFilename() = %q", got)
	}
}

func TestParseSortKey(t *testing.T) {
	if service.ParseSortKey(" Odds ") != ledger.SortOdds {
		t.Error("ParseSortKey(Odds)")
	}
	if service.ParseSortKey("bogus") != "" {
		t.Error("ParseSortKey(bogus) should be empty")
	}
}

func TestConcurrentMutations(t *testing.T) {
	ctx := context.Background()
	svc, kv, _ := newService(t)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.AdjustBank(ctx, 1)
		}()
	}
	wg.Wait()
	if svc.State().Bank != 20 || state.Load(ctx, kv).Bank != 20 {
		t.Errorf("Bank = %v / persisted %v, want 20", svc.State().Bank, state.Load(ctx, kv).Bank)
	}
}
