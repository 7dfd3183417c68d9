package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/elilab/mediakit/internal/cli"
)

var version = "dev"

func main() {
	cli.SetVersion(version)

	// Batch commands stop between files on Ctrl-C.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cli.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", cli.FormatError(err))
		os.Exit(1)
	}
}
