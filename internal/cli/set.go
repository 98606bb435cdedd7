package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/fsm/internal/repo"
	"github.com/aidanlsb/fsm/internal/store"
	"github.com/aidanlsb/fsm/internal/tags"
	"github.com/aidanlsb/fsm/internal/ui"
)

// tagEdit is the parsed form of set's tag and comment flags.
type tagEdit struct {
	dropAll     bool
	drop        []string
	assign      []tags.Assignment
	comment     *string
	dropComment bool
}

func (e *tagEdit) empty() bool {
	return !e.dropAll && len(e.drop) == 0 && len(e.assign) == 0 && e.comment == nil && !e.dropComment
}

// apply runs the edit against one target: clear, drops, assignments, then
// the comment.
func (e *tagEdit) apply(r *repo.Repository, t repo.Target) {
	if e.dropAll {
		r.ClearTags(t)
	}
	for _, key := range e.drop {
		r.RemoveTag(t, key)
	}
	for _, as := range e.assign {
		r.SetTag(t, as)
	}
	switch {
	case e.dropComment:
		r.RemoveComment(t)
	case e.comment != nil:
		r.SetComment(t, *e.comment)
	}
}

func (a *app) setCmd() *cobra.Command {
	var (
		tagArgs     []string
		urlArgs     []string
		numArgs     []string
		dropKeys    []string
		comment     string
		dropComment bool
		dropAll     bool
		self        bool
	)

	cmd := &cobra.Command{
		Use:   "set [flags] <path>...",
		Short: "Add or remove tags and comments",
		Long: `Applies every requested change to every listed path as one batch: either
all paths are updated or, on any error, none are.

Tag values are typed by the first rule that matches the whole value:
integer, then true/false, then URL, and otherwise plain text.

Examples:
  fsm set -t count:10 -t active:true -c "note" f.txt
  fsm set -t draft docs/*.md          # bare tag without a value
  fsm set --url home:https://example.com --self
  fsm set -d count f.txt
  fsm set --drop-all --drop-comment old/`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if self && len(args) > 0 {
				return invalidInputf("--self does not take paths")
			}
			if !self && len(args) == 0 {
				return invalidInputf("at least one path is required (or --self)")
			}

			if dropComment && cmd.Flags().Changed("comment") {
				return invalidInputf("--comment and --drop-comment are mutually exclusive")
			}

			edit := &tagEdit{dropAll: dropAll, dropComment: dropComment}
			for _, key := range dropKeys {
				if err := tags.ValidateKey(key); err != nil {
					return invalidInput(err)
				}
				edit.drop = append(edit.drop, key)
			}
			for _, arg := range tagArgs {
				as, err := tags.ParseAssignment(arg)
				if err != nil {
					return invalidInput(err)
				}
				edit.assign = append(edit.assign, as)
			}
			for _, strict := range []struct {
				args []string
				kind tags.Kind
			}{{urlArgs, tags.KindURL}, {numArgs, tags.KindInt}} {
				for _, arg := range strict.args {
					as, err := tags.ParseStrictAssignment(arg, strict.kind)
					if err != nil {
						return invalidInput(err)
					}
					edit.assign = append(edit.assign, as)
				}
			}
			if cmd.Flags().Changed("comment") {
				if err := tags.ValidateText(comment); err != nil {
					return invalidInputf("comment: %w", err)
				}
				edit.comment = &comment
			}
			if edit.empty() {
				return invalidInputf("nothing to change: pass -t, -d, -c, --drop-comment or --drop-all")
			}

			var names []string
			changed := false
			err := a.edit(func(s *store.Session, ed *store.Editor) error {
				var targets []repo.Target
				if self {
					targets = append(targets, repo.Self())
				}
				for _, p := range args {
					t, err := ed.Target(p, false)
					if err != nil {
						return err
					}
					if !exists(s.Handle(), t.Key) {
						slog.Warn("path does not exist", "path", p)
					}
					targets = append(targets, t)
				}

				for _, t := range targets {
					edit.apply(s.Repository(), t)
					names = append(names, t.String())
				}
				changed = s.Changed()
				return nil
			})
			if err != nil {
				return err
			}

			if a.jsonOutput {
				a.outputSuccess(map[string]interface{}{
					"updated": names,
					"changed": changed,
				}, &Meta{Count: len(names)})
				return nil
			}
			if !changed {
				a.println(ui.Hint("Nothing changed"))
				return nil
			}
			a.println(ui.Successf("Updated %d %s", len(names), plural(len(names), "path", "paths")))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringArrayVarP(&tagArgs, "tag", "t", nil, "Set a tag as key or key:value (repeatable)")
	f.StringArrayVar(&urlArgs, "url", nil, "Set a tag whose value must be a URL, as key:value (repeatable)")
	f.StringArrayVar(&numArgs, "num", nil, "Set a tag whose value must be an integer, as key:value (repeatable)")
	f.StringArrayVarP(&dropKeys, "drop", "d", nil, "Remove a tag by key (repeatable)")
	f.BoolVar(&dropAll, "drop-all", false, "Remove every tag")
	f.StringVarP(&comment, "comment", "c", "", "Set the comment")
	f.BoolVar(&dropComment, "drop-comment", false, "Remove the comment")
	f.BoolVar(&self, "self", false, "Edit the repository's own tags and comment")
	return cmd
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
