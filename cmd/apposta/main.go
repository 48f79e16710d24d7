package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path"

	"github.com/google/subcommands"

	"github.com/guyawaked93/apposta/internal/cli"
	"github.com/guyawaked93/apposta/internal/shared/logger"
)

func main() {
	env := &cli.Env{Out: os.Stdout, Err: os.Stderr}
	flag.StringVar(&env.Dir, "dir", cli.DefaultDir(), "directory holding the ledger state")
	verbose := flag.Bool("v", false, "verbose logging")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	for _, c := range cli.Commands(env) {
		commander.Register(c, "")
	}

	flag.Parse()

	log, err := logger.NewCLI(*verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	env.Log = log

	status := commander.Execute(context.Background())
	_ = log.Sync()
	os.Exit(int(status))
}
