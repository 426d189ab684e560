package cmd

import (
	"runtime"

	"github.com/huangsam/snapguard/internal/contract"
	"github.com/spf13/cobra"
)

// versionCmd shows the verbose version for diagnostic purposes.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of snapguard.",
	Long: `Display version information including build details.

The plugin line is the identity exempted by "check --integration-test"
when --self-plugin is not given.`,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("snapguard CLI\n")
		cmd.Printf("  Version: %s\n", version)
		cmd.Printf("  Commit:  %s\n", commit)
		cmd.Printf("  Built:   %s\n", date)
		cmd.Printf("  Runtime: %s\n", runtime.Version())
		cmd.Printf("  Plugin:  %s\n", contract.DefaultSelfPlugin(version))
	},
}
