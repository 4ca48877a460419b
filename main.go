// ndnpoke publishes a single NDN Data packet read from stdin.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ndnpoke/cmd"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err := cmd.Execute(ctx, os.Args[1:])
	if err != nil && !cmd.Reported(err) {
		fmt.Fprintf(os.Stderr, "ndnpoke: %v\n", err)
	}
	cancel()
	os.Exit(cmd.ExitCode(err))
}
