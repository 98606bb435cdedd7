package cli

import (
	"github.com/spf13/cobra"

	"github.com/aidanlsb/fsm/internal/ui"
)

func (a *app) openCmd() *cobra.Command {
	var (
		key       string
		self      bool
		printOnly bool
	)

	cmd := &cobra.Command{
		Use:   "open -t <key> [--self | path]",
		Short: "Open a URL stored in a tag",
		Long: `Looks up a tag on a path (default: the current directory) or on the
repository itself and hands its URL to the configured opener, or to the
operating system's default handler.

Examples:
  fsm open -t home --self
  fsm open -t issue src/main.go
  fsm open -t docs --print .`,
		Args: argsWith(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if key == "" {
				return invalidInputf("a tag key is required (-t)")
			}
			if self && len(args) > 0 {
				return invalidInputf("--self does not take a path")
			}
			path := "."
			if len(args) == 1 {
				path = args[0]
			}

			h, r, err := a.load()
			if err != nil {
				return err
			}
			t, err := a.target(h, path, self)
			if err != nil {
				return err
			}
			u, err := r.OpenableURL(t, key)
			if err != nil {
				return err
			}

			target := u.String()
			if !printOnly {
				if err := a.opener.Open(target); err != nil {
					return err
				}
			}

			if a.jsonOutput {
				a.outputSuccess(map[string]interface{}{
					"url":    target,
					"key":    key,
					"target": t.String(),
					"opened": !printOnly,
				}, nil)
				return nil
			}
			if printOnly {
				a.println(target)
				return nil
			}
			a.println(ui.Successf("Opened %s", ui.FilePath(target)))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&key, "tag", "t", "", "Tag holding the URL (required)")
	f.BoolVar(&self, "self", false, "Read the tag from the repository itself")
	f.BoolVar(&printOnly, "print", false, "Print the URL instead of opening it")
	return cmd
}
