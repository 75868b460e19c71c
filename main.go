package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/felipemarinho97/torrent-finder/cli"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cli.Execute(ctx); err != nil {
		os.Exit(1)
	}
}
