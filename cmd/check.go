package cmd

import (
	"errors"

	"github.com/huangsam/snapguard/core"
	"github.com/huangsam/snapguard/internal/contract"
	"github.com/spf13/cobra"
)

// checkCmd focused on release gating.
var checkCmd = &cobra.Command{
	Use:   "check [reactor-path]",
	Short: "Fail the release when a build plugin depends on a SNAPSHOT artifact",
	Long: `Load every project of a Maven reactor and inspect the dependencies of its build plugins.

Inspected plugin declarations:
- build plugins and build plugin management
- build plugins and build plugin management of every profile

A dependency is a SNAPSHOT when its version ends with "-SNAPSHOT". Any such
dependency fails the check with a non-zero exit code, listing every offending
project, plugin and dependency.

The reactor path may be a root pom.xml, the directory holding it, or a YAML/JSON
reactor descriptor exported by another build tool.

Examples:
  # Check the reactor in the current directory
  snapguard check

  # Check a multi-module build with four workers
  snapguard check ../my-service --workers 4

  # Self test of the snapguard plugin, exempting its own declaration
  snapguard check --integration-test --self-plugin io.github.huangsam:snapguard-maven-plugin:1.0.0

  # Machine-readable verdict for CI
  snapguard check --output json --output-file snapguard.json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		err := core.ExecuteSnapshotCheck(rootCtx, cfg, historyManager, log)
		_ = log.Sync()
		if errors.Is(err, core.ErrReleaseBlocked) {
			contract.LogFatal("Release check failed", err)
		}
		if err != nil {
			contract.LogFatal("Unable to run release check", err)
		}
	},
}
