package cli

import (
	"github.com/spf13/cobra"

	"github.com/aidanlsb/fsm/internal/buildinfo"
)

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version and build information",
		Args:  argsWith(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			info := buildinfo.Current()
			if a.jsonOutput {
				a.outputSuccess(info, nil)
				return nil
			}

			a.printf("fsm %s\n", info.Version)
			a.printf("module: %s\n", info.ModulePath)
			if info.Commit != "" {
				a.printf("commit: %s\n", info.Commit)
			}
			if info.CommitTime != "" {
				a.printf("commit_time: %s\n", info.CommitTime)
			}
			a.printf("go: %s\n", info.GoVersion)
			a.printf("platform: %s\n", info.Platform)
			a.printf("modified: %t\n", info.Modified)
			return nil
		},
	}
}
