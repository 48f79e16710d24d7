package ledger

import (
	"math"
	"strconv"
	"strings"
)

// ParseNumber converte texto numérico aceitando vírgula ou ponto como separador decimal.
// Texto vazio, inválido ou não finito vira 0.
func ParseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	// só a primeira vírgula é trocada, igual ao formulário
	s = strings.Replace(s, ",", ".", 1)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// FormatNumber é a conversão decimal padrão usada na exportação (sem locale, sem expoente)
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
