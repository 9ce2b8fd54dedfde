// Command redux runs, replays and inspects scenarios against the example
// applications built on the dispatch runtime.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/roach88/redux/internal/cli"
	"github.com/roach88/redux/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "redux: %v\n", err)
		os.Exit(cli.ExitCommandError)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err = cli.NewRootCommand(cfg).ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "redux: %v\n", err)
	}
	os.Exit(cli.GetExitCode(err))
}
