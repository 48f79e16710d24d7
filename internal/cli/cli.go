// Package cli implementa os subcomandos da linha de comando apposta sobre o
// mesmo service usado pelo ledger-service, com o estado em arquivo local.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/guyawaked93/apposta/internal/ledger-service/service"
	"github.com/guyawaked93/apposta/internal/store"
)

// Env é o contexto compartilhado pelos subcomandos
type Env struct {
	Dir string // diretório do estado (flag global -dir)
	Out io.Writer
	Err io.Writer
	Log *zap.Logger
}

// DefaultDir usa APPOSTA_DIR ou ./data
func DefaultDir() string {
	if v := os.Getenv("APPOSTA_DIR"); v != "" {
		return v
	}
	return "data"
}

// Commands lista os subcomandos registrados no commander
func Commands(env *Env) []subcommands.Command {
	return []subcommands.Command{
		&addCmd{env: env},
		&listCmd{env: env},
		&settleCmd{env: env},
		&rmCmd{env: env},
		&bankCmd{env: env},
		&statsCmd{env: env},
		&importCmd{env: env},
		&exportCmd{env: env},
		&dutchCmd{env: env},
		&eachWayCmd{env: env},
	}
}

// open carrega o service sobre o store em arquivo
func (e *Env) open(ctx context.Context) (*service.Service, error) {
	kv, err := store.NewFile(e.Dir)
	if err != nil {
		return nil, err
	}
	return service.New(ctx, kv, e.Log), nil
}

func (e *Env) failf(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(e.Err, "Error: "+format+"\n", args...)
	return subcommands.ExitFailure
}

func (e *Env) usagef(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(e.Err, format+"\n", args...)
	return subcommands.ExitUsageError
}

// brl formata em reais, arredondando para centavos ("R$1.234,50")
func brl(v float64) string {
	cents := decimal.NewFromFloat(v).Shift(2).Round(0).IntPart()
	return money.New(cents, money.BRL).Display()
}

// pct formata percentuais com vírgula decimal ("12,50%")
func pct(v float64) string {
	return strings.Replace(decimal.NewFromFloat(v).StringFixed(2), ".", ",", 1) + "%"
}

// odds formata cotações com duas casas ("1,85")
func odds(v float64) string {
	return strings.Replace(decimal.NewFromFloat(v).StringFixed(2), ".", ",", 1)
}
