package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/etnz/bloodpressure"
	"github.com/etnz/bloodpressure/server"
	"github.com/google/subcommands"
)

type serveCmd struct {
	addr   string
	memory bool
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve the ledger on a local HTTP API" }
func (*serveCmd) Usage() string {
	return `bp serve [-addr <host:port>] [-memory]

  Serves the ledger on a local HTTP API until interrupted. See "bp topic serve".
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", "", "Address to listen on (env BP_ADDR, default 127.0.0.1:8080)")
	f.BoolVar(&c.memory, "memory", false, "Serve an empty ledger that is never saved")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	addr := c.addr
	if addr == "" {
		addr = config.Addr
	}

	var l *bloodpressure.Ledger
	if c.memory {
		opts, err := ledgerOptions()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		l = bloodpressure.NewLedger(nil, opts...)
	} else {
		var closeLedger func() error
		var err error
		l, closeLedger, err = OpenLedger()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening ledger: %v\n", err)
			return subcommands.ExitFailure
		}
		defer closeLedger()
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(os.Stderr, "Serving %s on http://%s\n", plural(l.Len(), "reading"), addr)
	if err := server.New(server.Config{Addr: addr}, l).Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: server stopped: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
