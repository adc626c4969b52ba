// Command pipebuilder assembles pipelines of catalog blocks and generates
// run.py job scripts.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/opencode-ai/pipebuilder/internal/cli"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetVersion(version)
	code := cli.Execute(ctx)
	stop()
	os.Exit(code)
}
