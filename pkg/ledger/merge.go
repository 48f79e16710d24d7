package ledger

// Key é a chave natural usada para detectar apostas duplicadas na importação.
// Odds e status ficam de fora de propósito.
type Key struct {
	Date   string
	Game   string
	Market string
	Stake  float64
}

// NaturalKey monta a chave (date, game, market, stake) de uma aposta
func NaturalKey(b Bet) Key {
	return Key{Date: b.Date, Game: b.Game, Market: b.Market, Stake: b.Stake}
}

// MergeResult é o resultado da reconciliação de uma importação
type MergeResult struct {
	Bets    []Bet `json:"-"`
	Added   int   `json:"added"`
	Skipped int   `json:"skipped"`
}

// MergeImport descarta candidatos cuja chave natural já existe no ledger e
// coloca os sobreviventes na frente da lista, preservando a ordem entre eles.
// Candidatos só são comparados com o ledger existente, não entre si.
func MergeImport(existing, candidates []Bet) MergeResult {
	seen := make(map[Key]struct{}, len(existing))
	for _, b := range existing {
		seen[NaturalKey(b)] = struct{}{}
	}

	fresh := make([]Bet, 0, len(candidates))
	for _, c := range candidates {
		if _, dup := seen[NaturalKey(c)]; dup {
			continue
		}
		fresh = append(fresh, c)
	}

	merged := make([]Bet, 0, len(fresh)+len(existing))
	merged = append(merged, fresh...)
	merged = append(merged, existing...)
	return MergeResult{
		Bets:    merged,
		Added:   len(fresh),
		Skipped: len(candidates) - len(fresh),
	}
}
