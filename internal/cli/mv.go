package cli

import (
	"github.com/spf13/cobra"

	"github.com/aidanlsb/fsm/internal/repo"
	"github.com/aidanlsb/fsm/internal/store"
	"github.com/aidanlsb/fsm/internal/ui"
)

func (a *app) mvCmd() *cobra.Command {
	var (
		onlyTags    bool
		onlyComment bool
		force       bool
	)

	cmd := &cobra.Command{
		Use:   "mv <from> <to>",
		Short: "Move metadata from one path to another",
		Long: `Moves the tags and comment of one path to another and rewrites collection
memberships. Files themselves are not touched; run this after renaming a
file to carry its metadata along.

With --tags or --comment only that part moves and memberships stay put.
--force merges into an existing entry: incoming tags overwrite and an
incoming comment replaces the old one.

Examples:
  fsm mv draft.md final.md
  fsm mv --tags a.txt b.txt --force`,
		Args: argsWith(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if onlyTags && onlyComment {
				return invalidInputf("--tags and --comment are mutually exclusive")
			}
			part := repo.MoveAll
			switch {
			case onlyTags:
				part = repo.MoveTags
			case onlyComment:
				part = repo.MoveComment
			}

			var from, to repo.Target
			err := a.edit(func(s *store.Session, ed *store.Editor) error {
				var err error
				if from, err = ed.Target(args[0], false); err != nil {
					return err
				}
				if to, err = ed.Target(args[1], false); err != nil {
					return err
				}
				return s.Repository().MoveEntry(from.Key, to.Key, part, force)
			})
			if err != nil {
				return err
			}

			if a.jsonOutput {
				a.outputSuccess(map[string]interface{}{
					"from": from.Key,
					"to":   to.Key,
				}, nil)
				return nil
			}
			a.println(ui.Successf("Moved %s → %s", ui.FilePath(args[0]), ui.FilePath(args[1])))
			return nil
		},
	}

	f := cmd.Flags()
	f.BoolVar(&onlyTags, "tags", false, "Move only the tags")
	f.BoolVar(&onlyComment, "comment", false, "Move only the comment")
	f.BoolVarP(&force, "force", "f", false, "Merge into an existing entry")
	return cmd
}
