// tmichat - a terminal client for Twitch chat.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"tmichat/cmd"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cmd.Execute(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "tmichat: %v\n", err)
		os.Exit(1)
	}
}
