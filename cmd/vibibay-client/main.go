package main

import (
	"context"
	"fmt"
	"os"

	"vibibay-client-go/internal/bootstrap"
	"vibibay-client-go/internal/transport/cli"
)

func main() {
	ctx := context.Background()
	args := os.Args[1:]

	// `serve` runs the local web facade with its own signal handling; every
	// other command is a one-shot CLI invocation.
	if len(args) > 0 && args[0] == "serve" {
		if err := bootstrap.Run(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "vibibay-client: %v\n", err)
			os.Exit(1)
		}
		return
	}

	app, err := bootstrap.Build(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vibibay-client: %v\n", err)
		os.Exit(1)
	}
	defer app.Close(ctx)

	cliApp, err := cli.New(app.Queries, app.History, app.Bus, app.Logger, os.Stdout, os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vibibay-client: %v\n", err)
		os.Exit(1)
	}

	if err := cliApp.Run(ctx, args); err != nil {
		fmt.Fprintf(os.Stderr, "vibibay-client: %v\n", err)
		os.Exit(1)
	}
}
