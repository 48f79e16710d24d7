// Package service é o dono único do AppState do ledger-service: serializa as
// mutações, persiste após cada uma e só então notifica eventos e clientes.
package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/guyawaked93/apposta/internal/state"
	"github.com/guyawaked93/apposta/internal/store"
	"github.com/guyawaked93/apposta/pkg/contracts/events"
	"github.com/guyawaked93/apposta/pkg/ledger"
)

var (
	// ErrNotFound indica um id de aposta inexistente
	ErrNotFound = errors.New("bet not found")
	// ErrInvalidAmount indica uma banca que deixaria de ser um número finito
	ErrInvalidAmount = errors.New("invalid amount")
)

// Publisher envia eventos de domínio (Kafka em produção)
type Publisher interface {
	Publish(ctx context.Context, e events.LedgerEvent) error
}

// Broadcaster empurra o resumo atualizado para clientes ao vivo
type Broadcaster interface {
	Broadcast(s ledger.Summary)
}

// Service guarda o estado atual em memória, espelhado no store
type Service struct {
	Log    *zap.Logger
	Events Publisher   // opcional
	Live   Broadcaster // opcional

	OnMutation   func(kind string)        // métricas
	OnStoreError func(op string)          // métricas
	OnImport     func(added, skipped int) // métricas
	OnSummary    func(s ledger.Summary)   // gauges

	kv store.KV
	mu sync.Mutex
	st ledger.AppState
}

// New carrega o estado salvo (ou o padrão) do store
func New(ctx context.Context, kv store.KV, log *zap.Logger) *Service {
	st := state.Load(ctx, kv)
	log.Info("ledger state loaded", zap.Int("bets", len(st.Bets)), zap.Float64("bank", st.Bank))
	return &Service{Log: log, kv: kv, st: st}
}

// State retorna uma cópia do estado
func (s *Service) State() ledger.AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyState(s.st)
}

// Summary calcula os indicadores do estado atual
func (s *Service) Summary() ledger.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ledger.Summarize(s.st)
}

// ListQuery descreve filtro, ordenação e paginação da listagem
type ListQuery struct {
	Status string
	Sort   ledger.SortKey // vazio: data desc
	Desc   bool
	Page   int
	Size   int
}

// List retorna a página pedida e os dados de paginação
func (s *Service) List(q ListQuery) ([]ledger.Bet, ledger.PageInfo) {
	s.mu.Lock()
	bets := ledger.Filter(s.st.Bets, q.Status)
	s.mu.Unlock()

	if q.Sort == "" {
		bets = ledger.SortByDateDesc(bets)
	} else {
		bets = ledger.SortBy(bets, q.Sort, q.Desc)
	}
	return ledger.Page(bets, q.Page, q.Size)
}

// Get busca uma aposta pelo id
func (s *Service) Get(id string) (ledger.Bet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := ledger.Find(s.st.Bets, id)
	if !ok {
		return ledger.Bet{}, ErrNotFound
	}
	return b, nil
}

// SetBank define a banca inicial
func (s *Service) SetBank(ctx context.Context, bank float64) (ledger.AppState, error) {
	return s.mutate(ctx, "bank", func(st ledger.AppState) (ledger.AppState, *events.LedgerEvent, error) {
		if !finite(bank) {
			return st, nil, ErrInvalidAmount
		}
		st.Bank = bank
		return st, &events.LedgerEvent{Type: events.BankChanged}, nil
	})
}

// AdjustBank soma delta à banca (depósito positivo, saque negativo)
func (s *Service) AdjustBank(ctx context.Context, delta float64) (ledger.AppState, error) {
	return s.mutate(ctx, "bank", func(st ledger.AppState) (ledger.AppState, *events.LedgerEvent, error) {
		if !finite(st.Bank + delta) {
			return st, nil, fmt.Errorf("%w: bank %v + %v", ErrInvalidAmount, st.Bank, delta)
		}
		st.Bank += delta
		return st, &events.LedgerEvent{Type: events.BankChanged}, nil
	})
}

// UpsertBet valida o formulário e cria (sem id) ou substitui (com id existente) a aposta
func (s *Service) UpsertBet(ctx context.Context, in ledger.BetInput) (ledger.Bet, error) {
	b, err := in.Validate()
	if err != nil {
		return ledger.Bet{}, err
	}
	_, err = s.mutate(ctx, "upsert", func(st ledger.AppState) (ledger.AppState, *events.LedgerEvent, error) {
		if in.ID != "" {
			if _, ok := ledger.Find(st.Bets, in.ID); !ok {
				return st, nil, ErrNotFound
			}
		}
		st.Bets = ledger.Upsert(st.Bets, b)
		return st, &events.LedgerEvent{Type: events.BetUpserted, BetID: b.ID, Bet: &b}, nil
	})
	if err != nil {
		return ledger.Bet{}, err
	}
	return b, nil
}

// SetStatus altera o status; qualquer transição é permitida
func (s *Service) SetStatus(ctx context.Context, id string, status ledger.Status) (ledger.Bet, error) {
	var out ledger.Bet
	_, err := s.mutate(ctx, "status", func(st ledger.AppState) (ledger.AppState, *events.LedgerEvent, error) {
		bets, ok := ledger.SetStatus(st.Bets, id, status)
		if !ok {
			return st, nil, ErrNotFound
		}
		st.Bets = bets
		out, _ = ledger.Find(bets, id)
		return st, &events.LedgerEvent{Type: events.BetStatusChanged, BetID: id, Status: string(status), Bet: &out}, nil
	})
	return out, err
}

// DeleteBet remove a aposta
func (s *Service) DeleteBet(ctx context.Context, id string) error {
	_, err := s.mutate(ctx, "delete", func(st ledger.AppState) (ledger.AppState, *events.LedgerEvent, error) {
		bets, ok := ledger.Remove(st.Bets, id)
		if !ok {
			return st, nil, ErrNotFound
		}
		st.Bets = bets
		return st, &events.LedgerEvent{Type: events.BetDeleted, BetID: id}, nil
	})
	return err
}

// Import decodifica o CSV e mescla descartando chaves naturais já existentes.
// Um CSV sem linhas de aposta não altera nada.
func (s *Service) Import(ctx context.Context, csvText string) (ledger.MergeResult, error) {
	candidates := ledger.FromCSV(csvText)
	if len(candidates) == 0 {
		return ledger.MergeResult{Bets: []ledger.Bet{}}, nil
	}
	var res ledger.MergeResult
	_, err := s.mutate(ctx, "import", func(st ledger.AppState) (ledger.AppState, *events.LedgerEvent, error) {
		res = ledger.MergeImport(st.Bets, candidates)
		st.Bets = res.Bets
		return st, &events.LedgerEvent{Type: events.BetsImported, Added: res.Added, Skipped: res.Skipped}, nil
	})
	if err != nil {
		return ledger.MergeResult{}, err
	}
	if s.OnImport != nil {
		s.OnImport(res.Added, res.Skipped)
	}
	return res, nil
}

// Export gera o CSV na ordem em que as apostas estão guardadas
func (s *Service) Export() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ledger.ToCSV(s.st.Bets)
}

// ExportFilename segue o padrão apostas_YYYY-MM-DD.csv
func ExportFilename(now time.Time) string {
	return "apostas_" + now.Format("2006-01-02") + ".csv"
}

// Ping verifica o store com uma leitura da chave do estado
func (s *Service) Ping(ctx context.Context) error {
	_, _, err := s.kv.Get(ctx, state.StorageKey)
	return err
}

// mutate aplica fn sobre uma cópia, persiste e só então troca o estado em memória.
// Falha ao salvar mantém o estado anterior.
func (s *Service) mutate(ctx context.Context, kind string, fn func(ledger.AppState) (ledger.AppState, *events.LedgerEvent, error)) (ledger.AppState, error) {
	s.mu.Lock()
	next, ev, err := fn(copyState(s.st))
	if err != nil {
		s.mu.Unlock()
		return ledger.AppState{}, err
	}
	if err := state.Save(ctx, s.kv, next); err != nil {
		s.mu.Unlock()
		s.Log.Error("persist state failed", zap.String("kind", kind), zap.Error(err))
		if s.OnStoreError != nil {
			s.OnStoreError("save")
		}
		return ledger.AppState{}, fmt.Errorf("persist %s: %w", kind, err)
	}
	s.st = next
	sum := ledger.Summarize(next)
	out := copyState(next)
	s.mu.Unlock()

	if s.OnMutation != nil {
		s.OnMutation(kind)
	}
	if s.OnSummary != nil {
		s.OnSummary(sum)
	}
	if ev != nil {
		ev.Bank = next.Bank
		s.publish(ctx, *ev)
	}
	if s.Live != nil {
		s.Live.Broadcast(sum)
	}
	s.Log.Debug("ledger mutated", zap.String("kind", kind), zap.Int("bets", sum.Bets))
	return out, nil
}

// publish é fire-and-forget: falhas só são logadas
func (s *Service) publish(ctx context.Context, ev events.LedgerEvent) {
	if s.Events == nil {
		return
	}
	ev.TsUnixMs = time.Now().UnixMilli()
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := s.Events.Publish(ctx, ev); err != nil {
		s.Log.Warn("publish ledger event failed",
			zap.String("type", ev.Type),
			zap.String("betId", ev.BetID),
			zap.Error(err),
		)
	}
}

func finite(v float64) bool { return !math.IsInf(v, 0) && !math.IsNaN(v) }

func copyState(st ledger.AppState) ledger.AppState {
	bets := make([]ledger.Bet, len(st.Bets))
	copy(bets, st.Bets)
	return ledger.AppState{Bank: st.Bank, Bets: bets}
}

// ParseSortKey aceita as chaves conhecidas; desconhecida vira vazio (data desc)
func ParseSortKey(s string) ledger.SortKey {
	k := ledger.SortKey(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case ledger.SortDate, ledger.SortGame, ledger.SortMarket, ledger.SortOdds,
		ledger.SortStake, ledger.SortStatus, ledger.SortProfit:
		return k
	}
	return ""
}
