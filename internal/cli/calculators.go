package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"text/tabwriter"

	"github.com/google/subcommands"

	"github.com/guyawaked93/apposta/pkg/calculator"
	"github.com/guyawaked93/apposta/pkg/ledger"
)

// dutchCmd reparte o orçamento entre corredores para retorno igual
type dutchCmd struct {
	env    *Env
	budget string
}

func (*dutchCmd) Name() string     { return "dutch" }
func (*dutchCmd) Synopsis() string { return "split a budget across runners for an equal return" }
func (*dutchCmd) Usage() string {
	return `apposta dutch -budget <value> <odds> <odds> [<odds>...]

  Dutching calculator: stakes proportional to 1/odds so that any winning
  runner returns the same amount.
`
}

func (c *dutchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.budget, "budget", "10", "total budget")
}

func (c *dutchCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	oddsIn := make([]float64, f.NArg())
	for i, a := range f.Args() {
		oddsIn[i] = ledger.ParseNumber(a)
	}
	res, err := calculator.Dutch(ledger.ParseNumber(c.budget), oddsIn)
	if errors.Is(err, calculator.ErrTooFewRunners) {
		return c.env.usagef("%v", err)
	}
	if err != nil {
		return c.env.failf("%v", err)
	}

	w := tabwriter.NewWriter(c.env.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tODDS\tSTAKE\tRETORNO\tLUCRO")
	for i, r := range res.Runners {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", i+1, odds(r.Odds), brl(r.Stake), brl(r.Return), brl(r.Profit))
	}
	w.Flush()
	fmt.Fprintf(c.env.Out, "Retorno esperado: %s  Margem: %s\n", brl(res.ExpectedReturn), pct(res.Margin()))
	return subcommands.ExitSuccess
}

// eachWayCmd divide metade em vitória e metade em colocação
type eachWayCmd struct {
	env      *Env
	budget   string
	odds     string
	fraction string
	places   int
}

func (*eachWayCmd) Name() string     { return "eachway" }
func (*eachWayCmd) Synopsis() string { return "simplified each-way split" }
func (*eachWayCmd) Usage() string {
	return `apposta eachway -budget <value> -odds <odds> [-fraction 1/4] [-places 3]

  Splits the budget in half between win and place. Place odds are
  1 + (odds-1) x fraction. Rules vary by bookmaker; this is an approximation.
`
}

func (c *eachWayCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.budget, "budget", "10", "total budget")
	f.StringVar(&c.odds, "odds", "", "win odds")
	f.StringVar(&c.fraction, "fraction", "1/4", "place fraction: 1/2, 1/3, 1/4, 1/5 or a decimal")
	f.IntVar(&c.places, "places", calculator.DefaultPlacesPaid, "places paid")
}

func (c *eachWayCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	fr, ok := parseFraction(c.fraction)
	if !ok {
		return c.env.usagef("invalid -fraction %q", c.fraction)
	}
	res := calculator.EachWay(ledger.ParseNumber(c.budget), ledger.ParseNumber(c.odds), fr, c.places)

	fmt.Fprintf(c.env.Out, "Win:   %s @ %s -> %s\n", brl(res.WinStake), odds(res.Odds), brl(res.WinReturn))
	fmt.Fprintf(c.env.Out, "Place: %s @ %s (%s, %d colocações) -> %s\n",
		brl(res.PlaceStake), odds(res.PlaceOdds), res.PlaceTerms, res.PlacesPaid, brl(res.PlaceReturn))
	fmt.Fprintf(c.env.Out, "Lucro se vencer: %s  Lucro se colocar: %s\n", brl(res.WinProfit), brl(res.PlaceProfit))
	return subcommands.ExitSuccess
}

// parseFraction aceita "1/4" ou número decimal
func parseFraction(s string) (float64, bool) {
	var num, den float64
	if n, _ := fmt.Sscanf(s, "%g/%g", &num, &den); n == 2 {
		if den == 0 {
			return 0, false
		}
		return num / den, true
	}
	v := ledger.ParseNumber(s)
	return v, v > 0
}
