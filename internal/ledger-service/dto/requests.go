package dto

import (
	"bytes"
	"encoding/json"

	"github.com/guyawaked93/apposta/pkg/ledger"
)

// Amount aceita número JSON ou texto ("12,50"); texto inválido vira 0
type Amount float64

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = Amount(ledger.ParseNumber(s))
		return nil
	}
	if bytes.Equal(b, []byte("null")) {
		*a = 0
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*a = Amount(f)
	return nil
}

// BetRequest é o corpo de POST/PUT /v1/bets; odds e stake aceitam número ou texto
type BetRequest struct {
	Date   string `json:"date"`
	Game   string `json:"game"`
	Market string `json:"market"`
	Odds   Amount `json:"odds"`
	Stake  Amount `json:"stake"`
	Status string `json:"status"`
	Note   string `json:"note,omitempty"`
}

// Input converte para o formulário do ledger, que valida e normaliza
func (r BetRequest) Input(id string) ledger.BetInput {
	return ledger.BetInput{
		ID:     id,
		Date:   r.Date,
		Game:   r.Game,
		Market: r.Market,
		Odds:   ledger.FormatNumber(float64(r.Odds)),
		Stake:  ledger.FormatNumber(float64(r.Stake)),
		Status: r.Status,
		Note:   r.Note,
	}
}

type BankRequest struct {
	Bank Amount `json:"bank"`
}

type AdjustBankRequest struct {
	Delta Amount `json:"delta"`
}

type StatusRequest struct {
	Status string `json:"status"`
}

type DutchRequest struct {
	Budget Amount   `json:"budget"`
	Odds   []Amount `json:"odds"`
}

type EachWayRequest struct {
	Budget        Amount  `json:"budget"`
	Odds          Amount  `json:"odds"`
	PlaceFraction *Amount `json:"place_fraction,omitempty"` // default 1/4
	PlacesPaid    int     `json:"places_paid,omitempty"`    // default 3
}
