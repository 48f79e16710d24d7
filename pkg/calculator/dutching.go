// Package calculator reparte um orçamento entre resultados (dutching) ou entre
// vitória e colocação (each-way).
package calculator

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrTooFewRunners é retornado quando o dutching recebe menos de dois corredores
var ErrTooFewRunners = errors.New("dutching requires at least 2 runners")

// Runner é uma linha do dutching já calculada
type Runner struct {
	Odds   float64 `json:"odds"`
	Stake  float64 `json:"stake"`
	Return float64 `json:"return"`
	Profit float64 `json:"profit"`
}

// DutchResult é o resultado do dutching: mesmo retorno para qualquer vencedor
type DutchResult struct {
	Budget         float64  `json:"budget"`
	InverseSum     float64  `json:"inverse_sum"`
	ExpectedReturn float64  `json:"expected_return"`
	Runners        []Runner `json:"runners"`
}

// Dutch divide o orçamento proporcionalmente a 1/odds.
// Odds <= 0 contam como corredor vazio (stake 0).
func Dutch(budget float64, odds []float64) (DutchResult, error) {
	if len(odds) < 2 {
		return DutchResult{}, ErrTooFewRunners
	}

	inv := make([]float64, len(odds))
	var sumInv float64
	for i, o := range odds {
		if o > 0 {
			inv[i] = 1 / o
		}
		sumInv += inv[i]
	}

	res := DutchResult{Budget: budget, InverseSum: sumInv, Runners: make([]Runner, len(odds))}
	for i, o := range odds {
		var stake float64
		if sumInv > 0 {
			stake = inv[i] / sumInv * budget
		}
		ret := stake * o
		res.Runners[i] = Runner{Odds: o, Stake: stake, Return: ret, Profit: ret - budget}
	}
	if budget > 0 && sumInv > 0 {
		res.ExpectedReturn = res.Runners[0].Return
	}
	return res, nil
}

// Margin é a margem do mercado em percentual: positiva quando a soma de 1/odds passa de 1
func (r DutchResult) Margin() float64 {
	if r.InverseSum == 0 {
		return 0
	}
	return (r.InverseSum - 1) * 100
}

// Round arredonda valores monetários para centavos
func Round(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Rounded devolve uma cópia com valores monetários em centavos, para exibição
func (r DutchResult) Rounded() DutchResult {
	out := r
	out.ExpectedReturn = Round(r.ExpectedReturn)
	out.Runners = make([]Runner, len(r.Runners))
	for i, rn := range r.Runners {
		out.Runners[i] = Runner{Odds: rn.Odds, Stake: Round(rn.Stake), Return: Round(rn.Return), Profit: Round(rn.Profit)}
	}
	return out
}
