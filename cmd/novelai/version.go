package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/novelai/internal/api"
	"github.com/jackzampolin/novelai/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "novelai %s\n", version.GitRelease)
		fmt.Fprintf(out, "  Go:         %s\n", version.GoInfo)
		fmt.Fprintf(out, "  Commit:     %s\n", version.GitCommit)
		fmt.Fprintf(out, "  Date:       %s\n", version.GitCommitDate)
		fmt.Fprintf(out, "  User-Agent: %s\n", api.DefaultUserAgent())
	},
}
