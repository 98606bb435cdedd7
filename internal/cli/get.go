package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/fsm/internal/repo"
	"github.com/aidanlsb/fsm/internal/ui"
)

// sortKeys lists the accepted --sort values.
var sortKeys = []string{"name", "created", "updated"}

type listed struct {
	name   string
	target repo.Target
	entry  *repo.Entry
}

func (a *app) getCmd() *cobra.Command {
	var (
		self      bool
		all       bool
		has       []string
		lacks     []string
		sortBy    string
		noTags    bool
		noComment bool
	)

	cmd := &cobra.Command{
		Use:   "get [flags] [path...]",
		Short: "Show tags and comments",
		Long: `Prints the metadata attached to each path (default: the current directory).
With --all every entry in the repository is listed. --has and --lacks filter
by tag key and may be combined.

Examples:
  fsm get f.txt
  fsm get --self
  fsm get --all --has draft --lacks reviewed --sort updated`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if noTags && noComment {
				return invalidInputf("--no-tags and --no-comment are mutually exclusive")
			}
			if all && len(args) > 0 {
				return invalidInputf("--all does not take paths")
			}
			if !slices.Contains(sortKeys, sortBy) {
				return invalidInputf("unknown sort key %q (expected %s)", sortBy, strings.Join(sortKeys, ", "))
			}

			h, r, err := a.load()
			if err != nil {
				return err
			}
			norm := h.Normalizer(a.cwd)

			var (
				found    []listed
				missing  []string
				warnings []Warning
			)
			if self {
				found = append(found, listed{name: repo.SelfName, target: repo.Self(), entry: r.Self})
			}
			switch {
			case all:
				for _, key := range r.EntryKeys() {
					found = append(found, listed{name: norm.Display(key), target: repo.Path(key), entry: r.Entries[key]})
				}
			case len(args) > 0 || !self:
				if len(args) == 0 {
					args = []string{"."}
				}
				keys, err := norm.Keys(args)
				if err != nil {
					return err
				}
				for i, key := range keys {
					t := repo.Path(key)
					e, ok := r.Lookup(t)
					if !ok {
						missing = append(missing, args[i])
						warnings = append(warnings, Warning{
							Code:    WarnEntryNotFound,
							Message: fmt.Sprintf("%q not found", args[i]),
							Ref:     key,
						})
						continue
					}
					found = append(found, listed{name: norm.Display(key), target: t, entry: e})
				}
			}

			found = filterListed(found, has, lacks)
			sortListed(found, sortBy)

			opts := renderOptions{noTags: noTags, noComment: noComment, title: true}
			if a.jsonOutput {
				out := make([]entryJSON, 0, len(found))
				for _, l := range found {
					var colls []string
					if !l.target.Self {
						colls = r.MemberOf(l.target.Key)
					}
					out = append(out, toEntryJSON(l.target.String(), l.entry, colls, opts))
				}
				data := map[string]interface{}{"entries": out}
				a.outputSuccess(data, &Meta{Count: len(out)}, warnings...)
				return nil
			}

			for _, m := range missing {
				fmt.Fprintln(a.errOut, ui.Warningf("%q not found", m))
			}
			for i, l := range found {
				if i > 0 {
					fmt.Fprintln(a.out)
				}
				a.renderEntry(a.out, l.name, l.entry, opts)
			}
			if all || len(found) > 1 {
				fmt.Fprintf(a.out, "\nTotal: %d\n", len(found))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.BoolVar(&self, "self", false, "Show the repository's own tags and comment")
	f.BoolVarP(&all, "all", "a", false, "List every entry")
	f.StringSliceVar(&has, "has", nil, "Only entries carrying these tag keys")
	f.StringSliceVar(&lacks, "lacks", nil, "Only entries missing these tag keys")
	f.StringVarP(&sortBy, "sort", "s", "name", "Sort by name, created or updated")
	f.BoolVar(&noTags, "no-tags", false, "Hide tags")
	f.BoolVar(&noComment, "no-comment", false, "Hide comments")
	return cmd
}

// filterListed keeps entries carrying every key in has and none in lacks.
func filterListed(in []listed, has, lacks []string) []listed {
	if len(has) == 0 && len(lacks) == 0 {
		return in
	}
	out := in[:0]
	for _, l := range in {
		keep := true
		for _, k := range has {
			if _, ok := l.entry.Tags[k]; !ok {
				keep = false
				break
			}
		}
		for _, k := range lacks {
			if _, ok := l.entry.Tags[k]; ok {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, l)
		}
	}
	return out
}

// sortListed orders entries. The self scope always stays first.
func sortListed(ls []listed, by string) {
	slices.SortStableFunc(ls, func(x, y listed) int {
		if x.target.Self != y.target.Self {
			if x.target.Self {
				return -1
			}
			return 1
		}
		switch by {
		case "created":
			if c := x.entry.Created.Compare(y.entry.Created); c != 0 {
				return c
			}
		case "updated":
			if c := x.entry.Modified().Compare(y.entry.Modified()); c != 0 {
				return c
			}
		}
		return strings.Compare(x.target.Key, y.target.Key)
	})
}
