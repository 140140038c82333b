package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/epistemolab/epistemo/worlds"
)

var evalFlags struct {
	props int
}

var evalCmd = &cobra.Command{
	Use:   "eval <expression>",
	Short: "Evaluate a boolean expression over the base propositions",
	Long: `Evaluates an expression like "B1 & !B2 | B3" against the space of
possible worlds and lists the worlds satisfying it. Connectives may be
written as & | ! or as their set-theoretic forms.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		space, err := worlds.New(evalFlags.props, nil)
		if err != nil {
			return err
		}
		res, err := space.EvalExpr(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), titleStyle.Render(res.Notation))
		if len(res.Worlds) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("no world satisfies the expression"))
			return nil
		}
		rows := make([][]string, len(res.Worlds))
		for i := range res.Worlds {
			rows[i] = []string{res.Labels[i], res.Bitstrings[i], res.Notations[i]}
		}
		fmt.Fprint(cmd.OutOrStdout(), renderTable(
			fmt.Sprintf("%d satisfying worlds", len(res.Worlds)),
			[]string{"World", "Bits", "Notation"}, rows))
		return nil
	},
}

func init() {
	evalCmd.Flags().IntVar(&evalFlags.props, "props", 2, "number of base propositions (1..20)")
	rootCmd.AddCommand(evalCmd)
}
