// Command petrarun runs workout plans in the terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/myrjola/petrarun/internal/clock"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCommand(clock.NewReal()).ExecuteContext(ctx)
	stop()
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
