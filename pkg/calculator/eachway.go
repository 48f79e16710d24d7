package calculator

import (
	"fmt"
	"math"
)

// Frações de colocação usuais (1/2, 1/3, 1/4, 1/5)
var PlaceFractions = []float64{0.5, 1.0 / 3.0, 0.25, 0.2}

// DefaultPlaceFraction é 1/4 das odds
const DefaultPlaceFraction = 0.25

// DefaultPlacesPaid é o número de colocações pagas quando não informado
const DefaultPlacesPaid = 3

// EachWayResult é a divisão simplificada entre Win e Place
type EachWayResult struct {
	Budget      float64 `json:"budget"`
	Odds        float64 `json:"odds"`
	PlaceOdds   float64 `json:"place_odds"`
	PlacesPaid  int     `json:"places_paid"`
	PlaceTerms  string  `json:"place_terms"`
	WinStake    float64 `json:"win_stake"`
	PlaceStake  float64 `json:"place_stake"`
	WinReturn   float64 `json:"win_return"`
	PlaceReturn float64 `json:"place_return"`
	WinProfit   float64 `json:"win_profit"`   // se vencer: win + place
	PlaceProfit float64 `json:"place_profit"` // se apenas colocar
}

// EachWay divide o orçamento pela metade entre vitória e colocação.
// As regras variam por casa; esta é uma aproximação.
func EachWay(budget, odds, placeFraction float64, placesPaid int) EachWayResult {
	if placesPaid < 1 {
		placesPaid = 1
	}
	half := budget / 2
	winReturn := half * odds
	placeOdds := 1 + (odds-1)*placeFraction
	placeReturn := half * placeOdds
	return EachWayResult{
		Budget:      budget,
		Odds:        odds,
		PlaceOdds:   placeOdds,
		PlacesPaid:  placesPaid,
		PlaceTerms:  fmt.Sprintf("%d%%", int(math.Round(placeFraction*100))),
		WinStake:    half,
		PlaceStake:  half,
		WinReturn:   winReturn,
		PlaceReturn: placeReturn,
		WinProfit:   winReturn + placeReturn - budget,
		PlaceProfit: placeReturn - budget,
	}
}

// Rounded devolve uma cópia com valores monetários em centavos
func (r EachWayResult) Rounded() EachWayResult {
	out := r
	out.WinStake = Round(r.WinStake)
	out.PlaceStake = Round(r.PlaceStake)
	out.WinReturn = Round(r.WinReturn)
	out.PlaceReturn = Round(r.PlaceReturn)
	out.WinProfit = Round(r.WinProfit)
	out.PlaceProfit = Round(r.PlaceProfit)
	return out
}
