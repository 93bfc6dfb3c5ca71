package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/willfong/mysqldb/internal/ui"
)

// Version information - set at build time via ldflags
var (
	Version   = "dev"
	GitCommit = "none"
	BuildDate = "unknown"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		u := newUI(cmd)

		u.Println(u.Header("mysqldb"))
		u.Println("")
		u.Println(u.SummaryBox("Build", []ui.KV{
			{Key: "Version", Value: Version},
			{Key: "Git Commit", Value: GitCommit},
			{Key: "Built", Value: BuildDate},
			{Key: "Go Version", Value: runtime.Version()},
			{Key: "OS/Arch", Value: fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)},
		}))
	},
}

func init() {
	rootCmd.Version = Version
	rootCmd.AddCommand(versionCmd)
}
