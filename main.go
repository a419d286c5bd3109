package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ardnew/j2env/cli"
	"github.com/ardnew/j2env/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := cli.Run(ctx, os.Exit, os.Args[1:]...)

	stop()

	if err != nil {
		log.Error("run failed", log.Err(err))
		os.Exit(1)
	}
}
