// Command facet evaluates implicit-surface programs written in the shape
// DSL: it prints point queries, samples grids and extracts meshes.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "facet:", err)
		stop()
		os.Exit(1)
	}
}
