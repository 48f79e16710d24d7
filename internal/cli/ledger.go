package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"

	"github.com/guyawaked93/apposta/internal/ledger-service/service"
	"github.com/guyawaked93/apposta/pkg/ledger"
)

// bankCmd define a banca inicial, ou ajusta com -add
type bankCmd struct {
	env *Env
	add bool
}

func (*bankCmd) Name() string     { return "bank" }
func (*bankCmd) Synopsis() string { return "set or adjust the starting bankroll" }
func (*bankCmd) Usage() string {
	return `apposta bank [-add] <value>

  Sets the starting bankroll. With -add, the value is added to it
  (use a negative value for a withdrawal). Comma decimals are accepted.
`
}

func (c *bankCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.add, "add", false, "add the value to the current bankroll")
}

func (c *bankCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return c.env.usagef("usage: %s", c.Usage())
	}
	v := ledger.ParseNumber(f.Arg(0))
	svc, err := c.env.open(ctx)
	if err != nil {
		return c.env.failf("opening ledger: %v", err)
	}
	var st ledger.AppState
	if c.add {
		st, err = svc.AdjustBank(ctx, v)
	} else {
		st, err = svc.SetBank(ctx, v)
	}
	if err != nil {
		return c.env.failf("saving bankroll: %v", err)
	}
	s := ledger.Summarize(st)
	fmt.Fprintf(c.env.Out, "Banca: %s  Saldo: %s  Disponível: %s\n", brl(s.Bank), brl(s.Balance), brl(s.Available))
	return subcommands.ExitSuccess
}

// statsCmd mostra os painéis de banca e estatísticas em markdown
type statsCmd struct {
	env *Env
	raw bool
}

func (*statsCmd) Name() string     { return "stats" }
func (*statsCmd) Synopsis() string { return "display bankroll and performance statistics" }
func (*statsCmd) Usage() string {
	return `apposta stats [-raw]

  Displays the bankroll panel (realized profit, exposure, balance, available)
  and the statistics panel (win rate, ROI, average odds, total return).
`
}

func (c *statsCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.raw, "raw", false, "print markdown without terminal rendering")
}

func (c *statsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	svc, err := c.env.open(ctx)
	if err != nil {
		return c.env.failf("opening ledger: %v", err)
	}
	md := summaryMarkdown(svc.Summary())
	if c.raw {
		fmt.Fprint(c.env.Out, md)
		return subcommands.ExitSuccess
	}
	out, err := renderMarkdown(md, "")
	if err != nil {
		return c.env.failf("rendering report: %v", err)
	}
	fmt.Fprint(c.env.Out, out)
	return subcommands.ExitSuccess
}

// summaryMarkdown monta o relatório com as duas tabelas
func summaryMarkdown(s ledger.Summary) string {
	var b strings.Builder
	b.WriteString("# Banca\n\n")
	b.WriteString("| Indicador | Valor |\n|---|---:|\n")
	fmt.Fprintf(&b, "| Banca inicial | %s |\n", brl(s.Bank))
	fmt.Fprintf(&b, "| Lucro realizado | %s |\n", brl(s.RealizedProfit))
	fmt.Fprintf(&b, "| Exposição | %s |\n", brl(s.Exposure))
	fmt.Fprintf(&b, "| Saldo | %s |\n", brl(s.Balance))
	fmt.Fprintf(&b, "| Disponível | %s |\n", brl(s.Available))

	b.WriteString("\n# Estatísticas\n\n")
	b.WriteString("| Indicador | Valor |\n|---|---:|\n")
	fmt.Fprintf(&b, "| Apostas | %d (%d pendentes, %d ganhas, %d perdidas) |\n", s.Bets, s.Pending, s.Won, s.Lost)
	fmt.Fprintf(&b, "| Taxa de acerto | %s |\n", pct(s.WinRate))
	fmt.Fprintf(&b, "| ROI | %s |\n", pct(s.ROI))
	fmt.Fprintf(&b, "| Odd média | %s |\n", odds(s.AverageOdds))
	fmt.Fprintf(&b, "| Total apostado (resolvidas) | %s |\n", brl(s.SettledStake))
	fmt.Fprintf(&b, "| Retorno total | %s |\n", brl(s.TotalReturn))
	return b.String()
}

// renderMarkdown usa glamour; style vazio detecta o terminal
func renderMarkdown(md, style string) (string, error) {
	opt := glamour.WithAutoStyle()
	if style != "" {
		opt = glamour.WithStandardStyle(style)
	}
	r, err := glamour.NewTermRenderer(opt, glamour.WithWordWrap(100))
	if err != nil {
		return "", err
	}
	return r.Render(md)
}

// importCmd mescla um CSV no ledger, ignorando apostas já existentes
type importCmd struct{ env *Env }

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import bets from a CSV file" }
func (*importCmd) Usage() string {
	return `apposta import <file.csv>

  Imports bets from a CSV file with the header
  date,game,market,odds,stake,status,note (any column order).
  Rows matching an existing bet on date, game, market and stake are skipped.
`
}

func (*importCmd) SetFlags(_ *flag.FlagSet) {}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return c.env.usagef("usage: %s", c.Usage())
	}
	data, err := os.ReadFile(f.Arg(0))
	if err != nil {
		return c.env.failf("reading %s: %v", f.Arg(0), err)
	}
	svc, err := c.env.open(ctx)
	if err != nil {
		return c.env.failf("opening ledger: %v", err)
	}
	res, err := svc.Import(ctx, string(data))
	if err != nil {
		return c.env.failf("importing: %v", err)
	}
	fmt.Fprintf(c.env.Out, "%d apostas importadas, %d duplicadas ignoradas\n", res.Added, res.Skipped)
	return subcommands.ExitSuccess
}

// exportCmd grava o CSV, na ordem guardada, em arquivo ou stdout
type exportCmd struct {
	env    *Env
	output string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export bets as CSV" }
func (*exportCmd) Usage() string {
	return `apposta export [-o <file>]

  Writes all bets as CSV, newest first. Use -o . to write apostas_YYYY-MM-DD.csv
  in the current directory.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "output file (default stdout)")
}

func (c *exportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	svc, err := c.env.open(ctx)
	if err != nil {
		return c.env.failf("opening ledger: %v", err)
	}
	csv := svc.Export()
	switch c.output {
	case "":
		fmt.Fprintln(c.env.Out, csv)
	default:
		path := c.output
		if path == "." {
			path = service.ExportFilename(time.Now())
		}
		if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
			return c.env.failf("writing %s: %v", path, err)
		}
		fmt.Fprintln(c.env.Out, path)
	}
	return subcommands.ExitSuccess
}
