package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"geemysql/log"
)

type rootOptions struct {
	Verbose bool
	Format  string
}

var validFormats = []string{"text", "json", "yaml", "proto"}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "geemysql",
		Short:         "Compile loosely structured queries into MySQL statements",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, validFormats)
			}
			log.SetOutput(cmd.ErrOrStderr())
			if opts.Verbose {
				log.SetLevel(log.DebugLevel)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json|yaml|proto)")

	cmd.AddCommand(newCompileCommand(opts))
	cmd.AddCommand(newWhereCommand(opts))
	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range validFormats {
		if f == format {
			return true
		}
	}
	return false
}
