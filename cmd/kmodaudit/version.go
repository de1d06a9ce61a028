package kmodaudit

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kmodaudit/kmodaudit/internal/policy"
)

func init() {
	rootCmd.Version = version
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "kmodaudit %s (pattern schema %s, %d built-in patterns)\n",
				version, policy.SchemaVersion, policy.Default().Len())
		},
	})
}
