package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/syssam/timescape/compiler/gen"
	"github.com/syssam/timescape/compiler/load"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
)

// newGenerateCommand creates the generate command
func newGenerateCommand(a *app) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:     "generate",
		Aliases: []string{"gen"},
		Short:   "Generate TypeScript sources and the manifest bundle",
		Long: `Generate reads every .json, .yaml and .yml source under the source
directory and writes types, validators, the client, transformers and
manifest.json to the output directory.

Transformer files that already exist are never overwritten.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			res, cfg, err := a.generate(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if dryRun {
				for _, p := range res.Paths() {
					fmt.Fprintln(out, p)
				}
				return nil
			}
			if err := a.write(ctx, cfg, res); err != nil {
				return err
			}
			successColor.Fprintf(out, "✓ Generated %d files in %s\n", len(res.Files), a.cfg.Output)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list the files that would be written")
	return cmd
}

// generate loads the sources and renders every output file.
func (a *app) generate(ctx context.Context) (*gen.Result, *gen.Config, error) {
	in, err := load.Dir(a.cfg.Source, a.cfg.Output)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := a.cfg.genConfig(a.logger)
	if err != nil {
		return nil, nil, err
	}
	res, err := gen.Generate(ctx, cfg, in)
	if err != nil {
		return nil, nil, err
	}
	return res, cfg, nil
}

// write persists a result and removes the output of disabled features.
func (a *app) write(ctx context.Context, cfg *gen.Config, res *gen.Result) error {
	if err := gen.Write(ctx, a.cfg.Output, res.Files); err != nil {
		return err
	}
	return cfg.Cleanup(a.cfg.Output)
}
