package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lakshaymaurya-felt/reclaim/internal/core"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "reclaim %s (commit %s, built %s) %s\n",
			appVersion, appCommit, appDate, core.PlatformString())
	},
}
