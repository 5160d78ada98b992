// Command covidts builds the New Zealand COVID-19 daily time series from the
// Ministry of Health media releases.
//
// Usage:
//
//	covidts [run]                  fetch, extract, reconcile and write the artifact
//	covidts extract [file...]      print the facts extracted from release pages
//	covidts validate <artifact>    check an artifact against the output contract
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	run := newRunCmd()
	root := &cobra.Command{
		Use:           "covidts",
		Short:         "New Zealand COVID-19 daily time-series ETL",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          run.RunE,
	}
	root.AddCommand(run, newExtractCmd(), newValidateCmd())
	return root
}
