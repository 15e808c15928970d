package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/syssam/timescape/compiler/gen/bundle"
	"github.com/syssam/timescape/compiler/load"
)

// newCheckCommand creates the check command
func newCheckCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate sources without generating anything",
		Long: `Check loads the sources and reports every descriptor, reference and
schema problem at once.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := load.Dir(a.cfg.Source, a.cfg.Output)
			if err == nil {
				err = bundle.Check(in.Handlers, in.Modules, in.Schemas)
			}
			if err != nil {
				n := report(cmd.ErrOrStderr(), err)
				return fmt.Errorf("check failed with %d problem(s)", n)
			}
			successColor.Fprintf(cmd.OutOrStdout(), "✓ %d schemas, %d handlers, %d modules\n",
				len(in.Schemas), len(in.Handlers), len(in.Modules))
			return nil
		},
	}
}

// report prints each leaf of a joined error on its own line and returns
// how many were printed.
func report(w io.Writer, err error) int {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		n := 0
		for _, e := range joined.Unwrap() {
			n += report(w, e)
		}
		return n
	}
	errorColor.Fprintf(w, "  ✗ %v\n", err)
	return 1
}
