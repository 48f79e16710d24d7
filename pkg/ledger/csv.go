package ledger

import (
	"regexp"
	"strings"
)

// CSVHeader é a ordem de colunas gravada na exportação.
// Na importação as colunas são casadas pelo nome, em qualquer ordem.
var CSVHeader = []string{"date", "game", "market", "odds", "stake", "status", "note"}

var lineBreak = regexp.MustCompile(`\r?\n`)

// escapeCSV envolve em aspas campos com vírgula, aspas ou quebra de linha
func escapeCSV(v string) string {
	if !strings.ContainsAny(v, ",\"\n") {
		return v
	}
	return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
}

// ToCSV serializa as apostas na ordem recebida, sem quebra de linha final
func ToCSV(bets []Bet) string {
	rows := make([]string, 0, len(bets)+1)
	rows = append(rows, strings.Join(CSVHeader, ","))
	for _, b := range bets {
		fields := []string{
			b.Date,
			b.Game,
			b.Market,
			FormatNumber(b.Odds),
			FormatNumber(b.Stake),
			string(b.Status),
			b.Note,
		}
		for i, f := range fields {
			fields[i] = escapeCSV(f)
		}
		rows = append(rows, strings.Join(fields, ","))
	}
	return strings.Join(rows, "\n")
}

// splitCSVLine divide uma linha em campos respeitando aspas.
// Aspas sem fechamento seguem em modo citado até o fim da linha.
func splitCSVLine(line string) []string {
	var (
		res      []string
		current  strings.Builder
		inQuotes bool
	)
	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		if inQuotes {
			if ch == '"' {
				if i+1 < len(runes) && runes[i+1] == '"' {
					current.WriteRune('"')
					i++
				} else {
					inQuotes = false
				}
			} else {
				current.WriteRune(ch)
			}
			continue
		}
		switch ch {
		case ',':
			res = append(res, current.String())
			current.Reset()
		case '"':
			inQuotes = true
		default:
			current.WriteRune(ch)
		}
	}
	return append(res, current.String())
}

// columns resolve o índice de cada coluna conhecida a partir do cabeçalho (-1 = ausente)
type columns map[string]int

func newColumns(header []string) columns {
	cols := make(columns, len(CSVHeader))
	for _, name := range CSVHeader {
		cols[name] = -1
	}
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		// vale a primeira ocorrência do nome
		if idx, ok := cols[h]; ok && idx == -1 {
			cols[h] = i
		}
	}
	return cols
}

func (c columns) get(fields []string, name string) string {
	i := c[name]
	if i < 0 || i >= len(fields) {
		return ""
	}
	return fields[i]
}

// FromCSV lê o texto exportado (ou editado à mão) e devolve as apostas com ids novos.
// Nunca falha: colunas ausentes viram vazio/zero e status desconhecido vira pending.
func FromCSV(text string) []Bet {
	text = strings.TrimPrefix(text, "\ufeff")

	var lines []string
	for _, l := range lineBreak.Split(text, -1) {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	bets := []Bet{}
	if len(lines) == 0 {
		return bets
	}

	cols := newColumns(splitCSVLine(lines[0]))
	for _, line := range lines[1:] {
		fields := splitCSVLine(line)
		bets = append(bets, Bet{
			ID:     NewID(),
			Date:   strings.TrimSpace(cols.get(fields, "date")),
			Game:   strings.TrimSpace(cols.get(fields, "game")),
			Market: strings.TrimSpace(cols.get(fields, "market")),
			Odds:   ParseNumber(cols.get(fields, "odds")),
			Stake:  ParseNumber(cols.get(fields, "stake")),
			Status: ParseStatus(cols.get(fields, "status")),
			Note:   strings.TrimSpace(cols.get(fields, "note")),
		})
	}
	return bets
}
