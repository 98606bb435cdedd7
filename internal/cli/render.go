package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aidanlsb/fsm/internal/repo"
	"github.com/aidanlsb/fsm/internal/tags"
	"github.com/aidanlsb/fsm/internal/ui"
)

// valueJSON is a tag value in command output. A bare tag is null.
type valueJSON struct {
	Kind  string      `json:"kind"`
	Value interface{} `json:"value"`
}

func toValueJSON(v *tags.Value) *valueJSON {
	if v == nil {
		return nil
	}
	out := &valueJSON{Kind: v.Kind().String()}
	switch v.Kind() {
	case tags.KindInt:
		out.Value, _ = v.AsInt()
	case tags.KindBool:
		out.Value, _ = v.AsBool()
	default:
		out.Value = v.Text()
	}
	return out
}

type entryJSON struct {
	Path        string                `json:"path"`
	Tags        map[string]*valueJSON `json:"tags,omitempty"`
	Comment     string                `json:"comment,omitempty"`
	Created     time.Time             `json:"created"`
	Updated     *time.Time            `json:"updated,omitempty"`
	Collections []string              `json:"collections,omitempty"`
}

type renderOptions struct {
	noTags    bool
	noComment bool
	title     bool
}

func toEntryJSON(name string, e *repo.Entry, collections []string, opts renderOptions) entryJSON {
	out := entryJSON{
		Path:        name,
		Created:     e.Created,
		Updated:     e.Updated,
		Collections: collections,
	}
	if !opts.noTags {
		out.Tags = make(map[string]*valueJSON, len(e.Tags))
		for k, v := range e.Tags {
			out.Tags[k] = toValueJSON(v)
		}
	}
	if !opts.noComment {
		out.Comment = e.Comment
	}
	return out
}

// renderEntry prints one entry: its name (when titled), bare tags, valued
// tags aligned on their keys, the comment, and the last modification time.
func (a *app) renderEntry(w io.Writer, name string, e *repo.Entry, opts renderOptions) {
	if opts.title {
		fmt.Fprintln(w, ui.AccentBold.Render(name))
	}

	printed := false
	if !opts.noTags && len(e.Tags) > 0 {
		tbl := ui.Table{Indent: "  "}
		for _, k := range e.TagKeys() {
			if e.Tags[k] == nil {
				fmt.Fprintf(w, "  %s\n", k)
			}
		}
		for _, k := range e.TagKeys() {
			if v := e.Tags[k]; v != nil {
				tbl.Add(k, v.Text(), ui.Hint(v.Kind().String()))
			}
		}
		_ = tbl.Fprint(w)
		printed = true
	}

	if !opts.noComment && e.Comment != "" {
		fmt.Fprint(w, a.renderComment(e.Comment))
		printed = true
	}

	if printed {
		fmt.Fprintf(w, "  %s\n", ui.Hint(formatModified(e)))
	}
}

// renderComment renders markdown on a terminal and indents plain text
// otherwise.
func (a *app) renderComment(comment string) string {
	if a.display != nil && a.display.TTY && a.cfg.ShouldRenderComments() {
		rendered, err := ui.RenderMarkdown(comment, a.display.WrapWidth(ui.CommentIndent))
		if err == nil {
			return rendered
		}
	}
	var sb strings.Builder
	for i, line := range strings.Split(comment, "\n") {
		if i == 0 {
			sb.WriteString("  comment: ")
		} else {
			sb.WriteString("           ")
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return sb.String()
}

func formatModified(e *repo.Entry) string {
	const layout = "2006-01-02 15:04:05 MST"
	if e.Updated != nil {
		return "updated " + e.Updated.Local().Format(layout)
	}
	return "created " + e.Created.Local().Format(layout)
}
