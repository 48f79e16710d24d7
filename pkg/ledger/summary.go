package ledger

import "math"

// Balance é a banca inicial somada ao lucro realizado
func Balance(bank float64, bets []Bet) float64 {
	return bank + RealizedProfit(bets)
}

// Available é o saldo livre depois de descontar a exposição, nunca negativo
func Available(bank float64, bets []Bet) float64 {
	return math.Max(Balance(bank, bets)-Exposure(bets), 0)
}

// TotalReturn soma stake*odds das apostas ganhas
func TotalReturn(bets []Bet) float64 {
	var sum float64
	for _, b := range bets {
		if b.Status == StatusWon {
			sum += b.Stake * b.Odds
		}
	}
	return sum
}

// AverageOdds é a média das odds de todas as apostas (0 quando vazio)
func AverageOdds(bets []Bet) float64 {
	if len(bets) == 0 {
		return 0
	}
	var sum float64
	for _, b := range bets {
		sum += b.Odds
	}
	return sum / float64(len(bets))
}

// Summary agrega os números exibidos nos painéis de banca e estatísticas
type Summary struct {
	Bets    int `json:"bets"`
	Pending int `json:"pending"`
	Settled int `json:"settled"`
	Won     int `json:"won"`
	Lost    int `json:"lost"`

	Bank           float64 `json:"bank"`
	RealizedProfit float64 `json:"realized_profit"`
	Exposure       float64 `json:"exposure"`
	Balance        float64 `json:"balance"`
	Available      float64 `json:"available"`
	SettledStake   float64 `json:"settled_stake"`
	TotalReturn    float64 `json:"total_return"`
	AverageOdds    float64 `json:"average_odds"`
	WinRate        float64 `json:"win_rate"`
	ROI            float64 `json:"roi"`
}

// Summarize recalcula todos os agregados a partir do estado (sem cache incremental)
func Summarize(st AppState) Summary {
	s := Summary{
		Bets:           len(st.Bets),
		Bank:           st.Bank,
		RealizedProfit: RealizedProfit(st.Bets),
		Exposure:       Exposure(st.Bets),
		Balance:        Balance(st.Bank, st.Bets),
		Available:      Available(st.Bank, st.Bets),
		SettledStake:   SettledStake(st.Bets),
		TotalReturn:    TotalReturn(st.Bets),
		AverageOdds:    AverageOdds(st.Bets),
		WinRate:        WinRate(st.Bets),
		ROI:            ROI(st.Bets),
	}
	for _, b := range st.Bets {
		switch b.Status {
		case StatusPending:
			s.Pending++
		case StatusWon:
			s.Won++
		case StatusLost:
			s.Lost++
		}
	}
	s.Settled = s.Bets - s.Pending
	return s
}
