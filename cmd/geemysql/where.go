package main

import (
	"github.com/spf13/cobra"

	"geemysql/clause"
	"geemysql/condition"
	"geemysql/value"
)

type whereOptions struct {
	*rootOptions
	Having bool
}

func newWhereCommand(rootOpts *rootOptions) *cobra.Command {
	opts := &whereOptions{rootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "where <condition>",
		Short: "Compile one condition written in YAML or JSON",
		Example: `  geemysql where '{status: [1, 2], "age >=": 18}'
  geemysql where --having '[{"cnt >": 1}]'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cond, err := value.ParseYAML([]byte(args[0]))
			if err != nil {
				return err
			}
			compile := condition.Where
			if opts.Having {
				compile = condition.Having
			}
			f, err := compile(cond)
			if err != nil {
				return err
			}
			return writeStatement(cmd.OutOrStdout(), opts.Format, clause.Statement{Fragment: f})
		},
	}

	cmd.Flags().BoolVar(&opts.Having, "having", false, "compile a HAVING clause")
	return cmd
}
