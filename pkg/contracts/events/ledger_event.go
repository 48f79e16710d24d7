package events

import "github.com/guyawaked93/apposta/pkg/ledger"

// Tipos de LedgerEvent
const (
	BetUpserted      = "bet_upserted"
	BetStatusChanged = "bet_status_changed"
	BetDeleted       = "bet_deleted"
	BankChanged      = "bank_changed"
	BetsImported     = "bets_imported"
)

// LedgerEvent é publicado no tópico "ledger_events" após cada mutação persistida
type LedgerEvent struct {
	Type     string      `json:"type"`
	BetID    string      `json:"bet_id,omitempty"`
	Bet      *ledger.Bet `json:"bet,omitempty"`
	Status   string      `json:"status,omitempty"`
	Bank     float64     `json:"bank"`
	Added    int         `json:"added,omitempty"`
	Skipped  int         `json:"skipped,omitempty"`
	TsUnixMs int64       `json:"ts_unix_ms"`
}
