// Package state persiste o AppState inteiro como um blob JSON sob uma chave fixa.
package state

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/guyawaked93/apposta/internal/store"
	"github.com/guyawaked93/apposta/pkg/ledger"
)

// StorageKey é a chave versionada do blob
const StorageKey = "aposta-manager:v1"

// Load lê o estado salvo. Nunca falha: ausência, erro do store ou blob
// inválido resultam no estado padrão.
func Load(ctx context.Context, kv store.KV) ledger.AppState {
	raw, ok, err := kv.Get(ctx, StorageKey)
	if err != nil || !ok || raw == "" {
		return ledger.DefaultState()
	}
	st, err := Decode(raw)
	if err != nil {
		return ledger.DefaultState()
	}
	return st
}

// Save grava o estado sob StorageKey
func Save(ctx context.Context, kv store.KV, st ledger.AppState) error {
	raw, err := Encode(st)
	if err != nil {
		return err
	}
	if err := kv.Set(ctx, StorageKey, raw); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

// Encode serializa {bank, bets}; bets nunca sai como null
func Encode(st ledger.AppState) (string, error) {
	if st.Bets == nil {
		st.Bets = []ledger.Bet{}
	}
	b, err := json.Marshal(st)
	if err != nil {
		return "", fmt.Errorf("encode state: %w", err)
	}
	return string(b), nil
}

// Decode interpreta o blob e recompõe cada aposta com tipos corretos.
// bets precisa ser array (ou ausente/null) de objetos.
func Decode(raw string) (ledger.AppState, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &top); err != nil {
		return ledger.AppState{}, fmt.Errorf("decode state: %w", err)
	}
	if top == nil {
		return ledger.AppState{}, fmt.Errorf("decode state: null document")
	}

	st := ledger.DefaultState()
	if b, ok := top["bank"]; ok {
		var v any
		if err := json.Unmarshal(b, &v); err != nil {
			return ledger.AppState{}, fmt.Errorf("decode bank: %w", err)
		}
		st.Bank = number(v)
	}

	var items []map[string]any
	if b, ok := top["bets"]; ok {
		if err := json.Unmarshal(b, &items); err != nil {
			return ledger.AppState{}, fmt.Errorf("decode bets: %w", err)
		}
	}
	for i, m := range items {
		if m == nil {
			return ledger.AppState{}, fmt.Errorf("decode bets: item %d is not an object", i)
		}
		st.Bets = append(st.Bets, ledger.Bet{
			ID:     text(m["id"]),
			Date:   text(m["date"]),
			Game:   text(m["game"]),
			Market: text(m["market"]),
			Odds:   number(m["odds"]),
			Stake:  number(m["stake"]),
			Status: ledger.Status(text(m["status"])),
			Note:   text(m["note"]),
		})
	}
	return st, nil
}

// number força um valor JSON para float: string numérica (ponto ou vírgula),
// bool vira 1/0, o resto vira 0
func number(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case string:
		return ledger.ParseNumber(x)
	case bool:
		if x {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// text passa strings adiante e renderiza os demais escalares; null vira ""
func text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return ledger.FormatNumber(x)
	case bool:
		if x {
			return "true"
		}
		return "false"
	default:
		b, _ := json.Marshal(x)
		return string(b)
	}
}
