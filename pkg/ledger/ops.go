package ledger

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidBet indica um formulário de aposta incompleto ou com números inválidos
var ErrInvalidBet = errors.New("invalid bet")

// NewID gera um identificador único para uma aposta
func NewID() string { return uuid.NewString() }

// Upsert substitui a aposta de mesmo id (mantendo a posição) ou a insere no início
func Upsert(bets []Bet, b Bet) []Bet {
	out := make([]Bet, 0, len(bets)+1)
	for i, cur := range bets {
		if cur.ID == b.ID {
			out = append(out, bets[:i]...)
			out = append(out, b)
			return append(out, bets[i+1:]...)
		}
	}
	out = append(out, b)
	return append(out, bets...)
}

// Remove retira a aposta pelo id e informa se ela existia
func Remove(bets []Bet, id string) ([]Bet, bool) {
	out := make([]Bet, 0, len(bets))
	found := false
	for _, b := range bets {
		if b.ID == id {
			found = true
			continue
		}
		out = append(out, b)
	}
	return out, found
}

// SetStatus altera o status de uma aposta. Não há transições proibidas:
// uma aposta liquidada pode voltar a pending.
func SetStatus(bets []Bet, id string, st Status) ([]Bet, bool) {
	out := make([]Bet, len(bets))
	copy(out, bets)
	for i := range out {
		if out[i].ID == id {
			out[i].Status = st
			return out, true
		}
	}
	return out, false
}

// Find busca uma aposta pelo id
func Find(bets []Bet, id string) (Bet, bool) {
	for _, b := range bets {
		if b.ID == id {
			return b, true
		}
	}
	return Bet{}, false
}

// Filter mantém apenas as apostas com o status pedido ("" ou "all" mantém todas)
func Filter(bets []Bet, status string) []Bet {
	out := make([]Bet, 0, len(bets))
	if status == "" || status == "all" {
		return append(out, bets...)
	}
	for _, b := range bets {
		if string(b.Status) == status {
			out = append(out, b)
		}
	}
	return out
}

// SortKey é a coluna usada na ordenação da listagem
type SortKey string

const (
	SortDate   SortKey = "date"
	SortGame   SortKey = "game"
	SortMarket SortKey = "market"
	SortOdds   SortKey = "odds"
	SortStake  SortKey = "stake"
	SortStatus SortKey = "status"
	SortProfit SortKey = "profit"
)

// SortByDateDesc é a ordem de exibição padrão (mais recentes primeiro)
func SortByDateDesc(bets []Bet) []Bet {
	return SortBy(bets, SortDate, true)
}

// SortBy devolve uma cópia ordenada de forma estável; game/market ignoram caixa
func SortBy(bets []Bet, key SortKey, desc bool) []Bet {
	out := make([]Bet, len(bets))
	copy(out, bets)
	sort.SliceStable(out, func(i, j int) bool {
		c := compare(out[i], out[j], key)
		if desc {
			return c > 0
		}
		return c < 0
	})
	return out
}

func compare(a, b Bet, key SortKey) int {
	switch key {
	case SortGame:
		return strings.Compare(strings.ToLower(a.Game), strings.ToLower(b.Game))
	case SortMarket:
		return strings.Compare(strings.ToLower(a.Market), strings.ToLower(b.Market))
	case SortOdds:
		return cmpFloat(a.Odds, b.Odds)
	case SortStake:
		return cmpFloat(a.Stake, b.Stake)
	case SortStatus:
		return strings.Compare(string(a.Status), string(b.Status))
	case SortProfit:
		return cmpFloat(BetProfit(a), BetProfit(b))
	default:
		return strings.Compare(a.Date, b.Date)
	}
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// PageInfo descreve a janela retornada por Page
type PageInfo struct {
	Page      int `json:"page"`
	PageCount int `json:"page_count"`
	Size      int `json:"size"`
	Total     int `json:"total"`
	Start     int `json:"start"` // 1-based, 0 quando vazio
	End       int `json:"end"`
}

// DefaultPageSize é o tamanho de página da tabela de apostas
const DefaultPageSize = 10

// Page recorta a lista paginada; a página é limitada a [1, PageCount]
func Page(bets []Bet, page, size int) ([]Bet, PageInfo) {
	if size <= 0 {
		size = DefaultPageSize
	}
	total := len(bets)
	count := int(math.Max(1, math.Ceil(float64(total)/float64(size))))
	if page < 1 {
		page = 1
	}
	if page > count {
		page = count
	}
	start := (page - 1) * size
	end := start + size
	if end > total {
		end = total
	}
	info := PageInfo{Page: page, PageCount: count, Size: size, Total: total, End: end}
	if total > 0 {
		info.Start = start + 1
	}
	return bets[start:end], info
}

// BetInput são os valores do formulário de aposta, ainda em texto
type BetInput struct {
	ID     string `json:"id,omitempty"`
	Date   string `json:"date"`
	Game   string `json:"game"`
	Market string `json:"market"`
	Odds   string `json:"odds"`
	Stake  string `json:"stake"`
	Status string `json:"status"`
	Note   string `json:"note,omitempty"`
}

// Validate converte o formulário em Bet; mantém o id ao editar e gera um novo ao criar
func (in BetInput) Validate() (Bet, error) {
	odds := ParseNumber(in.Odds)
	stake := ParseNumber(in.Stake)
	switch {
	case strings.TrimSpace(in.Date) == "":
		return Bet{}, fmt.Errorf("%w: date required", ErrInvalidBet)
	case strings.TrimSpace(in.Game) == "":
		return Bet{}, fmt.Errorf("%w: game required", ErrInvalidBet)
	case strings.TrimSpace(in.Market) == "":
		return Bet{}, fmt.Errorf("%w: market required", ErrInvalidBet)
	case odds == 0:
		return Bet{}, fmt.Errorf("%w: odds required", ErrInvalidBet)
	case stake == 0:
		return Bet{}, fmt.Errorf("%w: stake required", ErrInvalidBet)
	}

	id := in.ID
	if id == "" {
		id = NewID()
	}
	return Bet{
		ID:     id,
		Date:   strings.TrimSpace(in.Date),
		Game:   strings.TrimSpace(in.Game),
		Market: strings.TrimSpace(in.Market),
		Odds:   odds,
		Stake:  stake,
		Status: ParseStatus(in.Status),
		Note:   strings.TrimSpace(in.Note),
	}, nil
}

// ExpectedReturn é o retorno previsto mostrado no formulário (stake * odds)
func (in BetInput) ExpectedReturn() float64 {
	odds, stake := ParseNumber(in.Odds), ParseNumber(in.Stake)
	if odds <= 0 || stake <= 0 {
		return 0
	}
	return stake * odds
}

// ExpectedProfit é o lucro previsto mostrado no formulário (stake * (odds-1))
func (in BetInput) ExpectedProfit() float64 {
	odds, stake := ParseNumber(in.Odds), ParseNumber(in.Stake)
	if odds <= 1 || stake <= 0 {
		return 0
	}
	return stake * (odds - 1)
}
