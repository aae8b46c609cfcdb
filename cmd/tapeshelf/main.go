package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"tapeshelf/internal/failures"
)

// Exit statuses. Fatal run conditions (bad config, unparsable catalog,
// unresolvable or missing sources) are told apart from command failures.
const (
	exitOK      = 0
	exitFailure = 1
	exitFatal   = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCommand()
	err := cmd.ExecuteContext(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, err)
	}
	if code := exitCode(err); code != exitOK {
		stop()
		os.Exit(code)
	}
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case failures.IsFatal(err):
		return exitFatal
	default:
		return exitFailure
	}
}
