package httpapi

import (
	"net/http"

	"github.com/guyawaked93/apposta/internal/ledger-service/dto"
	"github.com/guyawaked93/apposta/pkg/calculator"
)

// dutching divide o orçamento para retorno igual em qualquer vencedor (valores em centavos)
func (a *API) dutching(w http.ResponseWriter, r *http.Request) {
	var req dto.DutchRequest
	if !decode(w, r, &req) {
		return
	}
	odds := make([]float64, len(req.Odds))
	for i, o := range req.Odds {
		odds[i] = float64(o)
	}
	res, err := calculator.Dutch(float64(req.Budget), odds)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res.Rounded())
}

// eachWay divide metade em vitória e metade em colocação
func (a *API) eachWay(w http.ResponseWriter, r *http.Request) {
	var req dto.EachWayRequest
	if !decode(w, r, &req) {
		return
	}
	fraction := calculator.DefaultPlaceFraction
	if req.PlaceFraction != nil {
		fraction = float64(*req.PlaceFraction)
	}
	places := req.PlacesPaid
	if places == 0 {
		places = calculator.DefaultPlacesPaid
	}
	res := calculator.EachWay(float64(req.Budget), float64(req.Odds), fraction, places)
	writeJSON(w, http.StatusOK, res.Rounded())
}
