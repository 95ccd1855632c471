package main

import (
	"context"
	"os"
	"time"

	"github.com/yndnr/cfkv/internal/cli/command"
	"github.com/yndnr/cfkv/internal/infra/shutdown"
)

func main() {
	ctx, stop := shutdown.NewHandler(10*time.Second).NotifyContext(context.Background())

	app := command.App()
	err := app.RunContext(ctx, os.Args)
	stop()
	if err != nil {
		command.PrintError(os.Stderr, "%v", err)
		os.Exit(1)
	}
}
