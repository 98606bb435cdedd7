package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/fsm/internal/repo"
	"github.com/aidanlsb/fsm/internal/store"
	"github.com/aidanlsb/fsm/internal/ui"
)

func (a *app) collCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coll",
		Short: "Manage collections",
		Long: `Collections are named, ordered lists of paths. A path may belong to any
number of collections; membership does not require the path to carry tags.`,
	}
	cmd.AddCommand(
		a.collCreateCmd(),
		a.collDeleteCmd(),
		a.collPushCmd(),
		a.collPopCmd(),
		a.collViewCmd(),
	)
	return cmd
}

func (a *app) collCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create an empty collection",
		Args:  argsWith(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			err := a.edit(func(_ *store.Session, ed *store.Editor) error {
				return ed.CreateCollection(name)
			})
			if err != nil {
				return err
			}
			if a.jsonOutput {
				a.outputSuccess(map[string]interface{}{"created": name}, nil)
				return nil
			}
			a.println(ui.Successf("Created collection %s", ui.AccentBold.Render(name)))
			return nil
		},
	}
}

func (a *app) collDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a collection (member entries are kept)",
		Args:  argsWith(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			err := a.edit(func(_ *store.Session, ed *store.Editor) error {
				return ed.DeleteCollection(name)
			})
			if err != nil {
				return err
			}
			if a.jsonOutput {
				a.outputSuccess(map[string]interface{}{"deleted": name}, nil)
				return nil
			}
			a.println(ui.Successf("Deleted collection %s", ui.AccentBold.Render(name)))
			return nil
		},
	}
}

func (a *app) collPushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "push <name> <path>...",
		Short: "Add paths to a collection",
		Long: `Appends each path that is not already a member. If any path falls outside
the repository nothing is added.`,
		Args: argsWith(cobra.MinimumNArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			var added int
			err := a.edit(func(_ *store.Session, ed *store.Editor) error {
				n, err := ed.Push(name, args[1:]...)
				added = n
				return err
			})
			if err != nil {
				return err
			}
			if a.jsonOutput {
				a.outputSuccess(map[string]interface{}{
					"collection": name,
					"added":      added,
				}, &Meta{Count: added})
				return nil
			}
			a.println(ui.Successf("Added %d %s to %s", added, plural(added, "path", "paths"), ui.AccentBold.Render(name)))
			return nil
		},
	}
}

func (a *app) collPopCmd() *cobra.Command {
	var missing bool

	cmd := &cobra.Command{
		Use:   "pop <name> [path...]",
		Short: "Remove paths from a collection",
		Long: `Removes each listed path from the collection. With --missing, members whose
files no longer exist are removed as well.

Examples:
  fsm coll pop reading old.pdf
  fsm coll pop reading --missing`,
		Args: argsWith(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if len(args) == 1 && !missing {
				return invalidInputf("at least one path is required (or --missing)")
			}

			removed := 0
			var dropped []string
			err := a.edit(func(s *store.Session, ed *store.Editor) error {
				if len(args) > 1 {
					n, err := ed.Pop(name, args[1:]...)
					if err != nil {
						return err
					}
					removed = n
				}
				if missing {
					h := s.Handle()
					gone, err := s.Repository().Retain(name, func(key string) bool {
						return exists(h, key)
					})
					if err != nil {
						return err
					}
					dropped = gone
					removed += len(gone)
				}
				return nil
			})
			if err != nil {
				return err
			}

			if a.jsonOutput {
				a.outputSuccess(map[string]interface{}{
					"collection": name,
					"removed":    removed,
					"missing":    dropped,
				}, &Meta{Count: removed})
				return nil
			}
			for _, key := range dropped {
				a.println(ui.Hint("  missing: " + key))
			}
			a.println(ui.Successf("Removed %d %s from %s", removed, plural(removed, "path", "paths"), ui.AccentBold.Render(name)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&missing, "missing", false, "Also remove members whose files no longer exist")
	return cmd
}

type collectionJSON struct {
	Name    string   `json:"name"`
	Count   int      `json:"count"`
	Members []string `json:"members,omitempty"`
}

func (a *app) collViewCmd() *cobra.Command {
	var files bool

	cmd := &cobra.Command{
		Use:   "view [name]",
		Short: "List collections and their members",
		Args:  argsWith(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, r, err := a.load()
			if err != nil {
				return err
			}

			names := r.CollectionNames()
			if len(args) == 1 {
				if _, err := r.Collection(args[0]); err != nil {
					return err
				}
				names = []string{args[0]}
				files = true
			}

			if a.jsonOutput {
				out := make([]collectionJSON, 0, len(names))
				for _, name := range names {
					c := r.Collections[name]
					cj := collectionJSON{Name: name, Count: len(c.Members)}
					if files {
						cj.Members = append([]string{}, c.Members...)
					}
					out = append(out, cj)
				}
				a.outputSuccess(map[string]interface{}{"collections": out}, &Meta{Count: len(out)})
				return nil
			}

			if len(names) == 0 {
				a.println(ui.Hint("No collections"))
				return nil
			}
			a.printCollections(h.Normalizer(a.cwd).Display, r, names, files)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&files, "files", "f", false, "List the members of each collection")
	return cmd
}

func (a *app) printCollections(display func(string) string, r *repo.Repository, names []string, files bool) {
	if !files {
		var tbl ui.Table
		for _, name := range names {
			n := len(r.Collections[name].Members)
			tbl.Add(ui.AccentBold.Render(name)+":", ui.Count(n, "file", "files"))
		}
		_ = tbl.Fprint(a.out)
		return
	}
	for i, name := range names {
		c := r.Collections[name]
		if i > 0 {
			fmt.Fprintln(a.out)
		}
		fmt.Fprintf(a.out, "%s: %s\n", ui.AccentBold.Render(name), ui.Count(len(c.Members), "file", "files"))
		for _, key := range c.Members {
			fmt.Fprintf(a.out, "  %s\n", ui.FilePath(display(key)))
		}
	}
}
