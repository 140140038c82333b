// Command epistemo explores possible-worlds spaces from the terminal and
// serves the belief-revision agent API.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "epistemo",
	Short: "Possible-worlds spaces, evidence and belief revision",
	Long: `epistemo models epistemic states as possible-worlds spaces: enumerate
worlds, evaluate boolean expressions over base propositions, and run a
belief-revision agent server backed by sqlite.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
