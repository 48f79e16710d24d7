package dto

import "github.com/guyawaked93/apposta/pkg/ledger"

type BetsPage struct {
	Bets []ledger.Bet    `json:"bets"`
	Page ledger.PageInfo `json:"page"`
}

type ImportResponse struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
