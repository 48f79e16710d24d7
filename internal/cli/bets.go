package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/subcommands"

	"github.com/guyawaked93/apposta/internal/ledger-service/service"
	"github.com/guyawaked93/apposta/pkg/ledger"
)

// addCmd registra (ou edita, com -id) uma aposta
type addCmd struct {
	env *Env
	in  ledger.BetInput
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "record a bet" }
func (*addCmd) Usage() string {
	return `apposta add -game <game> -market <market> -odds <odds> -stake <stake> [-date YYYY-MM-DD] [-status pending|won|lost] [-note <text>] [-id <id>]

  Records a new bet, or replaces the bet with the given -id.
  Odds and stake accept comma or dot decimals.
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.in.ID, "id", "", "id of the bet to edit")
	f.StringVar(&c.in.Date, "date", time.Now().Format("2006-01-02"), "bet date")
	f.StringVar(&c.in.Game, "game", "", "game, e.g. \"Flamengo x Vasco\"")
	f.StringVar(&c.in.Market, "market", "", "market, e.g. \"Over 2.5\"")
	f.StringVar(&c.in.Odds, "odds", "", "decimal odds")
	f.StringVar(&c.in.Stake, "stake", "", "stake")
	f.StringVar(&c.in.Status, "status", string(ledger.StatusPending), "pending, won or lost")
	f.StringVar(&c.in.Note, "note", "", "free text note")
}

func (c *addCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	svc, err := c.env.open(ctx)
	if err != nil {
		return c.env.failf("opening ledger: %v", err)
	}
	b, err := svc.UpsertBet(ctx, c.in)
	if errors.Is(err, ledger.ErrInvalidBet) {
		return c.env.usagef("%v", err)
	}
	if err != nil {
		return c.env.failf("saving bet: %v", err)
	}
	fmt.Fprintf(c.env.Out, "%s\t%s\t%s @ %s\t%s\n", b.ID, b.Game, b.Market, odds(b.Odds), brl(b.Stake))
	return subcommands.ExitSuccess
}

// listCmd lista as apostas paginadas, mais recentes primeiro
type listCmd struct {
	env    *Env
	status string
	sort   string
	asc    bool
	page   int
	size   int
}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "list bets" }
func (*listCmd) Usage() string {
	return `apposta list [-status pending|won|lost] [-sort date|game|market|odds|stake|status|profit] [-asc] [-page N] [-size N]
`
}

func (c *listCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.status, "status", "all", "filter by status")
	f.StringVar(&c.sort, "sort", "", "sort column (default: date, newest first)")
	f.BoolVar(&c.asc, "asc", false, "ascending order")
	f.IntVar(&c.page, "page", 1, "page number")
	f.IntVar(&c.size, "size", ledger.DefaultPageSize, "page size")
}

func (c *listCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	svc, err := c.env.open(ctx)
	if err != nil {
		return c.env.failf("opening ledger: %v", err)
	}
	bets, info := svc.List(service.ListQuery{
		Status: c.status,
		Sort:   service.ParseSortKey(c.sort),
		Desc:   !c.asc,
		Page:   c.page,
		Size:   c.size,
	})

	w := tabwriter.NewWriter(c.env.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATA\tJOGO\tMERCADO\tODDS\tSTAKE\tSTATUS\tLUCRO")
	for _, b := range bets {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			b.ID, b.Date, b.Game, b.Market, odds(b.Odds), brl(b.Stake), b.Status, brl(ledger.BetProfit(b)))
	}
	w.Flush()
	fmt.Fprintf(c.env.Out, "Mostrando %d a %d de %d (página %d/%d)\n", info.Start, info.End, info.Total, info.Page, info.PageCount)
	return subcommands.ExitSuccess
}

// settleCmd altera o status de uma aposta
type settleCmd struct{ env *Env }

func (*settleCmd) Name() string             { return "settle" }
func (*settleCmd) Synopsis() string         { return "change the status of a bet" }
func (*settleCmd) Usage() string            { return "apposta settle <id> pending|won|lost\n" }
func (*settleCmd) SetFlags(_ *flag.FlagSet) {}

func (c *settleCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		return c.env.usagef("usage: %s", c.Usage())
	}
	st := ledger.Status(strings.ToLower(strings.TrimSpace(f.Arg(1))))
	if !st.Valid() {
		return c.env.usagef("invalid status %q: must be pending, won or lost", f.Arg(1))
	}
	svc, err := c.env.open(ctx)
	if err != nil {
		return c.env.failf("opening ledger: %v", err)
	}
	b, err := svc.SetStatus(ctx, f.Arg(0), st)
	if err != nil {
		return c.env.failf("%v", err)
	}
	fmt.Fprintf(c.env.Out, "%s\t%s\t%s\n", b.ID, b.Status, brl(ledger.BetProfit(b)))
	return subcommands.ExitSuccess
}

// rmCmd remove uma aposta
type rmCmd struct{ env *Env }

func (*rmCmd) Name() string             { return "rm" }
func (*rmCmd) Synopsis() string         { return "delete a bet" }
func (*rmCmd) Usage() string            { return "apposta rm <id>\n" }
func (*rmCmd) SetFlags(_ *flag.FlagSet) {}

func (c *rmCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return c.env.usagef("usage: %s", c.Usage())
	}
	svc, err := c.env.open(ctx)
	if err != nil {
		return c.env.failf("opening ledger: %v", err)
	}
	if err := svc.DeleteBet(ctx, f.Arg(0)); err != nil {
		return c.env.failf("%v", err)
	}
	return subcommands.ExitSuccess
}
