package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/covid-timeseries-etl/internal/adapter/file"
	"github.com/couchcryptid/covid-timeseries-etl/internal/domain"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <artifact.json>",
		Short: "Check an artifact against the output contract",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := file.Read(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if err := domain.ValidateArtifact(a); err != nil {
				for _, e := range unjoin(err) {
					fmt.Fprintln(out, "FAIL:", e)
				}
				return fmt.Errorf("%s is not a valid artifact", args[0])
			}

			first, last := "", ""
			if n := len(a.TimeseriesDates); n > 0 {
				first, last = a.TimeseriesDates[0], a.TimeseriesDates[n-1]
			}
			fmt.Fprintf(out, "OK: %d days (%s to %s), %d source keys\n",
				len(a.TimeseriesDates), first, last, len(a.Sources.Keys))
			return nil
		},
	}
}

// unjoin flattens an errors.Join result into its parts.
func unjoin(err error) []error {
	var j interface{ Unwrap() []error }
	if errors.As(err, &j) {
		return j.Unwrap()
	}
	return []error{err}
}
