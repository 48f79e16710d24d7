package ledger

import (
	"math"
	"strings"
)

// Status é o resultado de uma aposta. Pode ser reeditado livremente.
type Status string

const (
	StatusPending Status = "pending"
	StatusWon     Status = "won"
	StatusLost    Status = "lost"
)

// Valid informa se o status pertence ao conjunto pending | won | lost
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusWon, StatusLost:
		return true
	}
	return false
}

// ParseStatus normaliza o texto (trim + lower) e cai para pending quando desconhecido
func ParseStatus(s string) Status {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return StatusPending
	}
	return st
}

// Bet é uma aposta registrada no ledger.
type Bet struct {
	ID     string  `json:"id"`
	Date   string  `json:"date"` // yyyy-mm-dd
	Game   string  `json:"game"`
	Market string  `json:"market"`
	Odds   float64 `json:"odds"`
	Stake  float64 `json:"stake"`
	Status Status  `json:"status"`
	Note   string  `json:"note"`
}

// AppState é o snapshot completo persistido: banca inicial + apostas
type AppState struct {
	Bank float64 `json:"bank"`
	Bets []Bet   `json:"bets"`
}

// DefaultState retorna o estado inicial (banca 0, lista vazia e não-nil)
func DefaultState() AppState {
	return AppState{Bank: 0, Bets: []Bet{}}
}

// BetProfit calcula o lucro realizado de uma aposta.
// Não valida odds/stake: valores não finitos atravessam a aritmética.
func BetProfit(b Bet) float64 {
	switch b.Status {
	case StatusWon:
		return (b.Odds - 1) * b.Stake
	case StatusLost:
		return -b.Stake
	}
	return 0
}

// Exposure soma o stake das apostas pendentes (capital em risco)
func Exposure(bets []Bet) float64 {
	var sum float64
	for _, b := range bets {
		if b.Status == StatusPending {
			sum += b.Stake
		}
	}
	return sum
}

// RealizedProfit soma o lucro das apostas liquidadas
func RealizedProfit(bets []Bet) float64 {
	var sum float64
	for _, b := range bets {
		if b.Status != StatusPending {
			sum += BetProfit(b)
		}
	}
	return sum
}

// SettledStake soma o stake das apostas liquidadas (denominador do ROI)
func SettledStake(bets []Bet) float64 {
	var sum float64
	for _, b := range bets {
		if b.Status != StatusPending {
			sum += b.Stake
		}
	}
	return sum
}

// WinRate retorna o percentual de vitórias entre as apostas liquidadas (0 se não houver)
func WinRate(bets []Bet) float64 {
	var settled, wins int
	for _, b := range bets {
		if b.Status == StatusPending {
			continue
		}
		settled++
		if b.Status == StatusWon {
			wins++
		}
	}
	if settled == 0 {
		return 0
	}
	return float64(wins) / float64(settled) * 100
}

// ROI retorna lucro realizado / stake liquidada em percentual (0 se stake liquidada for 0)
func ROI(bets []Bet) float64 {
	st := SettledStake(bets)
	if st == 0 || math.IsNaN(st) {
		return 0
	}
	return RealizedProfit(bets) / st * 100
}
