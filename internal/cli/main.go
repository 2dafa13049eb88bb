// Package cli is the command-line surface: one cobra root with
// subcommands for building shorts, inspecting the store and managing the
// background clip pool.
package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mgaillard/shortforge/internal/logging"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	root := &cobra.Command{
		Use:           "shortforge",
		Short:         "Assemble platform-legal vertical shorts from narrated videos",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			verbose, _ := cmd.Flags().GetBool("verbose")
			logging.Init(verbose)
		},
	}
	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)

	root.PersistentFlags().String("config", "", "Config file path (default: shortforge.yaml if present)")
	root.PersistentFlags().BoolP("verbose", "v", false, "Debug logging")

	root.AddCommand(
		buildCmd(),
		batchCmd(),
		listCmd(),
		statsCmd(),
		purgeCmd(),
		fondsCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
