package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/fsm/internal/store"
	"github.com/aidanlsb/fsm/internal/ui"
)

func (a *app) rmCmd() *cobra.Command {
	var missing bool

	cmd := &cobra.Command{
		Use:   "rm [path...]",
		Short: "Delete the metadata of paths",
		Long: `Deletes the entries of the listed paths. With --missing every entry whose
file no longer exists is deleted. Collections are left as they are; use
'fsm coll pop --missing' to clean those.

Examples:
  fsm rm old.txt
  fsm rm --missing`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && !missing {
				return invalidInputf("at least one path is required (or --missing)")
			}

			var (
				removed  []string
				warnings []Warning
			)
			err := a.edit(func(s *store.Session, ed *store.Editor) error {
				r := s.Repository()
				for _, p := range args {
					t, err := ed.Target(p, false)
					if err != nil {
						return err
					}
					if !r.DeleteEntry(t.Key) {
						warnings = append(warnings, Warning{
							Code:    WarnEntryNotFound,
							Message: fmt.Sprintf("%q not found", p),
							Ref:     t.Key,
						})
						continue
					}
					removed = append(removed, t.Key)
				}
				if missing {
					h := s.Handle()
					removed = append(removed, r.PruneEntries(func(key string) bool {
						return exists(h, key)
					})...)
				}
				return nil
			})
			if err != nil {
				return err
			}

			if a.jsonOutput {
				data := map[string]interface{}{"removed": removed}
				a.outputSuccess(data, &Meta{Count: len(removed)}, warnings...)
				return nil
			}
			for _, w := range warnings {
				fmt.Fprintln(a.errOut, ui.Warning(w.Message))
			}
			a.println(ui.Successf("Removed %d %s", len(removed), plural(len(removed), "entry", "entries")))
			return nil
		},
	}

	cmd.Flags().BoolVar(&missing, "missing", false, "Delete every entry whose file no longer exists")
	return cmd
}
