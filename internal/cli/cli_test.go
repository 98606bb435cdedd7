package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aidanlsb/fsm/internal/opener"
	"github.com/aidanlsb/fsm/internal/repo"
	"github.com/aidanlsb/fsm/internal/root"
	"github.com/aidanlsb/fsm/internal/store"
	"github.com/aidanlsb/fsm/internal/testutil"
)

// harness runs commands in-process against one test tree.
type harness struct {
	t          *testing.T
	tree       *testutil.TestTree
	configPath string
	opened     []string
}

func newHarness(t *testing.T, tree *testutil.TestTree) *harness {
	t.Helper()
	return &harness{
		t:          t,
		tree:       tree,
		configPath: filepath.Join(t.TempDir(), "config.toml"),
	}
}

func (h *harness) app(out, errOut *bytes.Buffer) *app {
	a := newApp(out, errOut)
	a.getenv = func(string) string { return "" }
	a.opener = opener.Func(func(target string) error {
		h.opened = append(h.opened, target)
		return nil
	})
	return a
}

// runIn executes args with --json from dir (relative to the tree root).
func (h *harness) runIn(dir string, args ...string) *testutil.CLIResult {
	h.t.Helper()
	var out, errOut bytes.Buffer
	full := append([]string{
		"-C", filepath.Join(h.tree.Path, dir),
		"--config", h.configPath,
		"--json",
	}, args...)
	exitCode := 0
	if err := h.app(&out, &errOut).execute(full); err != nil {
		exitCode = 1
	}
	return testutil.ParseResult(out.Bytes(), errOut.Bytes(), exitCode)
}

func (h *harness) run(args ...string) *testutil.CLIResult {
	h.t.Helper()
	return h.runIn(".", args...)
}

// text executes args without --json and returns stdout.
func (h *harness) text(args ...string) (string, error) {
	h.t.Helper()
	var out, errOut bytes.Buffer
	full := append([]string{"-C", h.tree.Path, "--config", h.configPath}, args...)
	err := h.app(&out, &errOut).execute(full)
	return out.String(), err
}

func (h *harness) entry(path string) map[string]interface{} {
	h.t.Helper()
	entries := h.run("get", path).MustSucceed(h.t).DataList("entries")
	if len(entries) == 0 {
		return nil
	}
	e, _ := entries[0].(map[string]interface{})
	return e
}

func (h *harness) assertHasTag(path, key string) {
	h.t.Helper()
	e := h.entry(path)
	if e == nil {
		h.t.Fatalf("expected %s to have an entry", path)
	}
	if _, ok := tagOf(h.t, e, key); !ok {
		h.t.Errorf("expected %s to carry tag %q, got %v", path, key, e["tags"])
	}
}

func (h *harness) assertNoEntry(path string) {
	h.t.Helper()
	if e := h.entry(path); e != nil {
		h.t.Errorf("expected no entry for %s, got %v", path, e)
	}
}

func tagOf(t *testing.T, entry map[string]interface{}, key string) (interface{}, bool) {
	t.Helper()
	if entry == nil {
		t.Fatalf("entry is nil")
	}
	tagMap, _ := entry["tags"].(map[string]interface{})
	v, ok := tagMap[key]
	return v, ok
}

func TestSetAndGet(t *testing.T) {
	tree := testutil.NewTestTree(t).WithFile("f.txt", "x").Build()
	h := newHarness(t, tree)

	h.run("set",
		"-t", "count:10",
		"-t", "active:true",
		"-t", "name:hello",
		"-t", "home:https://example.com",
		"-t", "draft",
		"-c", "note",
		"f.txt",
	).MustSucceed(t)

	e := h.entry("f.txt")
	if e["path"] != "f.txt" {
		t.Fatalf("path = %v", e["path"])
	}
	if e["comment"] != "note" {
		t.Fatalf("comment = %v", e["comment"])
	}

	tests := []struct {
		key   string
		kind  string
		value interface{}
	}{
		{"count", "int", float64(10)},
		{"active", "bool", true},
		{"name", "string", "hello"},
		{"home", "url", "https://example.com"},
	}
	for _, tt := range tests {
		raw, ok := tagOf(t, e, tt.key)
		if !ok {
			t.Fatalf("missing tag %s", tt.key)
		}
		v, _ := raw.(map[string]interface{})
		if v["kind"] != tt.kind || v["value"] != tt.value {
			t.Errorf("%s = %v, want %s %v", tt.key, v, tt.kind, tt.value)
		}
	}
	if v, ok := tagOf(t, e, "draft"); !ok || v != nil {
		t.Fatalf("draft = %v, %v; want bare tag", v, ok)
	}
}

func TestSetOverwritesAndDrops(t *testing.T) {
	tree := testutil.NewTestTree(t).WithFile("f.txt", "x").Build()
	h := newHarness(t, tree)

	h.run("set", "-t", "a", "-t", "b:2", "-c", "x", "f.txt").MustSucceed(t)
	h.run("set", "-t", "b:3", "-d", "a", "--drop-comment", "f.txt").MustSucceed(t)

	e := h.entry("f.txt")
	if _, ok := tagOf(t, e, "a"); ok {
		t.Fatalf("a should be dropped")
	}
	v, _ := tagOf(t, e, "b")
	if m, _ := v.(map[string]interface{}); m["value"] != float64(3) {
		t.Fatalf("b = %v, want 3", v)
	}
	if _, ok := e["comment"]; ok {
		t.Fatalf("comment should be dropped, got %v", e["comment"])
	}
	if e["updated"] == nil {
		t.Fatalf("expected updated stamp after a later change")
	}

	h.run("set", "--drop-all", "f.txt").MustSucceed(t)
	res := h.run("get", "f.txt").MustSucceed(t)
	res.AssertResultCount(t, "entries", 0)
	res.AssertHasWarning(t, WarnEntryNotFound)
}

func TestSetDropAllThenAdd(t *testing.T) {
	tree := testutil.NewTestTree(t).WithFile("f.txt", "x").Build()
	h := newHarness(t, tree)

	h.run("set", "-t", "old", "f.txt").MustSucceed(t)
	h.run("set", "--drop-all", "-t", "new", "f.txt").MustSucceed(t)

	e := h.entry("f.txt")
	if _, ok := tagOf(t, e, "old"); ok {
		t.Fatalf("old should be gone")
	}
	if _, ok := tagOf(t, e, "new"); !ok {
		t.Fatalf("new should be set after the clear")
	}
}

func TestSetRejectsBadInput(t *testing.T) {
	tree := testutil.NewTestTree(t).WithFile("f.txt", "x").Build()
	h := newHarness(t, tree)

	tests := []struct {
		name string
		args []string
	}{
		{"no action", []string{"set", "f.txt"}},
		{"no path", []string{"set", "-t", "a"}},
		{"self with path", []string{"set", "--self", "-t", "a", "f.txt"}},
		{"bad key", []string{"set", "-t", "bad key:1", "f.txt"}},
		{"empty key", []string{"set", "-t", ":1", "f.txt"}},
		{"num not int", []string{"set", "--num", "n:abc", "f.txt"}},
		{"num plus sign", []string{"set", "--num", "n:+5", "f.txt"}},
		{"url not url", []string{"set", "--url", "u:not a url", "f.txt"}},
		{"url missing value", []string{"set", "--url", "u", "f.txt"}},
		{"comment and drop", []string{"set", "-c", "x", "--drop-comment", "f.txt"}},
		{"unknown flag", []string{"set", "--bogus", "f.txt"}},
		{"path not utf8", []string{"set", "-t", "a", "caf\xe9.txt"}},
		{"value not utf8", []string{"set", "-t", "k:bad\xff", "f.txt"}},
		{"comment not utf8", []string{"set", "-c", "note \xfe", "f.txt"}},
		{"drop key not utf8", []string{"set", "-d", "\xff", "f.txt"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h.run(tt.args...).MustFail(t, ErrInvalidInput)
		})
	}
	h.assertNoEntry("f.txt")
}

func TestSetBatchIsAtomic(t *testing.T) {
	tree := testutil.NewTestTree(t).WithFile("a.txt", "a").Build()
	outside := filepath.Join(t.TempDir(), "elsewhere.txt")
	h := newHarness(t, tree)

	h.run("set", "-t", "k:1", "a.txt", outside).MustFail(t, ErrPathOutsideRoot)
	if e := h.entry("a.txt"); e != nil {
		t.Fatalf("a.txt should be untouched, got %v", e)
	}
}

func TestSetManyPaths(t *testing.T) {
	tree := testutil.NewTestTree(t).
		WithFile("a.txt", "a").
		WithFile("docs/b.md", "b").
		Build()
	h := newHarness(t, tree)

	res := h.run("set", "-t", "shared", "a.txt", "docs/b.md", "not-yet.txt").MustSucceed(t)
	if res.Meta == nil || res.Meta.Count != 3 {
		t.Fatalf("meta = %+v", res.Meta)
	}
	for _, p := range []string{"a.txt", "docs/b.md", "not-yet.txt"} {
		h.assertHasTag(p, "shared")
	}
}

func TestPathsFromSubdirectory(t *testing.T) {
	tree := testutil.NewTestTree(t).WithFile("docs/guide.md", "g").Build()
	h := newHarness(t, tree)

	h.runIn("docs", "set", "-t", "topic:go", "guide.md").MustSucceed(t)
	h.runIn("docs", "set", "-t", "top", "..").MustSucceed(t)

	res := h.run("get", "--all").MustSucceed(t)
	var paths []string
	for _, raw := range res.DataList("entries") {
		e, _ := raw.(map[string]interface{})
		paths = append(paths, e["path"].(string))
	}
	if strings.Join(paths, ",") != ".,docs/guide.md" {
		t.Fatalf("paths = %v", paths)
	}
}

func TestSelfScope(t *testing.T) {
	tree := testutil.NewTestTree(t).Build()
	h := newHarness(t, tree)

	h.run("set", "--self", "--url", "home:https://example.com/x", "-c", "about").MustSucceed(t)

	res := h.run("get", "--self").MustSucceed(t)
	entries := res.DataList("entries")
	if len(entries) != 1 {
		t.Fatalf("entries = %v", entries)
	}
	e, _ := entries[0].(map[string]interface{})
	if e["path"] != repo.SelfName || e["comment"] != "about" {
		t.Fatalf("self = %v", e)
	}

	res = h.run("open", "-t", "home", "--self").MustSucceed(t)
	if res.DataString("url") != "https://example.com/x" {
		t.Fatalf("url = %q", res.DataString("url"))
	}
	if len(h.opened) != 1 || h.opened[0] != "https://example.com/x" {
		t.Fatalf("opened = %v", h.opened)
	}

	// The self scope survives having everything removed.
	h.run("set", "--self", "--drop-all", "--drop-comment").MustSucceed(t)
	if got := h.run("get", "--self").MustSucceed(t).DataList("entries"); len(got) != 1 {
		t.Fatalf("self scope disappeared: %v", got)
	}
}

func TestOpen(t *testing.T) {
	tree := testutil.NewTestTree(t).WithFile("f.txt", "x").Build()
	h := newHarness(t, tree)

	h.run("set", "-t", "link:https://example.com", "-t", "n:5", "-t", "bare", "f.txt").MustSucceed(t)

	res := h.run("open", "-t", "link", "--print", "f.txt").MustSucceed(t)
	if res.DataString("url") != "https://example.com" || len(h.opened) != 0 {
		t.Fatalf("--print should not open: url=%q opened=%v", res.DataString("url"), h.opened)
	}
	h.run("open", "-t", "link", "f.txt").MustSucceed(t)
	if len(h.opened) != 1 {
		t.Fatalf("opened = %v", h.opened)
	}

	h.run("open", "-t", "n", "f.txt").MustFail(t, ErrTypeMismatch)
	h.run("open", "-t", "bare", "f.txt").MustFail(t, ErrTypeMismatch)
	h.run("open", "-t", "missing", "f.txt").MustFail(t, ErrTagNotFound)
	h.run("open", "-t", "link", "other.txt").MustFail(t, ErrTagNotFound)
	h.run("open", "f.txt").MustFail(t, ErrInvalidInput)
}

func TestCollections(t *testing.T) {
	tree := testutil.NewTestTree(t).
		WithFile("a.txt", "a").
		WithFile("b.txt", "b").
		Build()
	h := newHarness(t, tree)

	h.run("coll", "create", "reading").MustSucceed(t)
	h.run("coll", "create", "reading").MustFail(t, ErrCollectionExists)

	res := h.run("coll", "push", "reading", "a.txt", "b.txt", "a.txt").MustSucceed(t)
	if res.Data["added"] != float64(2) {
		t.Fatalf("added = %v", res.Data["added"])
	}
	res = h.run("coll", "push", "reading", "a.txt").MustSucceed(t)
	if res.Data["added"] != float64(0) {
		t.Fatalf("re-push added = %v", res.Data["added"])
	}

	h.run("coll", "push", "nope", "a.txt").MustFail(t, ErrCollectionNotFound)
	h.run("coll", "pop", "nope", "a.txt").MustFail(t, ErrCollectionNotFound)

	res = h.run("coll", "view", "reading").MustSucceed(t)
	colls := res.DataList("collections")
	if len(colls) != 1 {
		t.Fatalf("collections = %v", colls)
	}
	c, _ := colls[0].(map[string]interface{})
	members, _ := c["members"].([]interface{})
	if len(members) != 2 || members[0] != "a.txt" || members[1] != "b.txt" {
		t.Fatalf("members = %v", members)
	}

	// Membership shows up on the entry.
	h.run("set", "-t", "x", "a.txt").MustSucceed(t)
	e := h.entry("a.txt")
	if got, _ := e["collections"].([]interface{}); len(got) != 1 || got[0] != "reading" {
		t.Fatalf("collections on entry = %v", e["collections"])
	}

	res = h.run("coll", "pop", "reading", "a.txt", "never.txt").MustSucceed(t)
	if res.Data["removed"] != float64(1) {
		t.Fatalf("removed = %v", res.Data["removed"])
	}

	tree.Remove("b.txt")
	res = h.run("coll", "pop", "reading", "--missing").MustSucceed(t)
	if res.Data["removed"] != float64(1) {
		t.Fatalf("removed missing = %v", res.Data["removed"])
	}

	h.run("coll", "delete", "reading").MustSucceed(t)
	h.run("coll", "delete", "reading").MustFail(t, ErrCollectionNotFound)
	h.run("coll", "view").MustSucceed(t).AssertResultCount(t, "collections", 0)

	// Deleting a collection keeps member entries.
	h.assertHasTag("a.txt", "x")
}

func TestCollPushIsAtomic(t *testing.T) {
	tree := testutil.NewTestTree(t).WithFile("a.txt", "a").Build()
	outside := t.TempDir()
	h := newHarness(t, tree)

	h.run("coll", "create", "c").MustSucceed(t)
	h.run("coll", "push", "c", "a.txt", outside).MustFail(t, ErrPathOutsideRoot)

	c, _ := h.run("coll", "view", "c").MustSucceed(t).DataList("collections")[0].(map[string]interface{})
	if c["count"] != float64(0) {
		t.Fatalf("count = %v, want 0", c["count"])
	}
}

func TestMv(t *testing.T) {
	tree := testutil.NewTestTree(t).Build()
	h := newHarness(t, tree)

	h.run("set", "-t", "x", "-c", "moved", "a.txt").MustSucceed(t)
	h.run("coll", "create", "c").MustSucceed(t)
	h.run("coll", "push", "c", "a.txt").MustSucceed(t)

	h.run("mv", "a.txt", "b.txt").MustSucceed(t)
	h.assertNoEntry("a.txt")
	h.assertHasTag("b.txt", "x")
	if e := h.entry("b.txt"); e["comment"] != "moved" {
		t.Fatalf("comment = %v", e["comment"])
	}
	c, _ := h.run("coll", "view", "c").MustSucceed(t).DataList("collections")[0].(map[string]interface{})
	if members, _ := c["members"].([]interface{}); len(members) != 1 || members[0] != "b.txt" {
		t.Fatalf("members = %v", c["members"])
	}

	h.run("mv", "missing.txt", "z.txt").MustFail(t, ErrEntryNotFound)

	h.run("set", "-t", "y", "c.txt").MustSucceed(t)
	h.run("mv", "b.txt", "c.txt").MustFail(t, ErrEntryExists)
	h.run("mv", "--tags", "--force", "b.txt", "c.txt").MustSucceed(t)
	h.assertHasTag("c.txt", "x")
	h.assertHasTag("c.txt", "y")

	// Only the tags moved; the comment stays behind.
	if e := h.entry("b.txt"); e == nil || e["comment"] != "moved" {
		t.Fatalf("b.txt = %v", e)
	}
	h.run("mv", "--tags", "--comment", "b.txt", "c.txt").MustFail(t, ErrInvalidInput)
}

func TestRm(t *testing.T) {
	tree := testutil.NewTestTree(t).
		WithFile("a.txt", "a").
		WithFile("b.txt", "b").
		Build()
	h := newHarness(t, tree)

	h.run("set", "-t", "k", "a.txt", "b.txt", "ghost.txt").MustSucceed(t)
	h.run("coll", "create", "c").MustSucceed(t)
	h.run("coll", "push", "c", "ghost.txt").MustSucceed(t)

	res := h.run("rm", "--missing").MustSucceed(t)
	removed := res.DataList("removed")
	if len(removed) != 1 || removed[0] != "ghost.txt" {
		t.Fatalf("removed = %v", removed)
	}
	// Collections are untouched by rm.
	c, _ := h.run("coll", "view", "c").MustSucceed(t).DataList("collections")[0].(map[string]interface{})
	if c["count"] != float64(1) {
		t.Fatalf("collection count = %v", c["count"])
	}

	res = h.run("rm", "a.txt", "nope.txt").MustSucceed(t)
	res.AssertHasWarning(t, WarnEntryNotFound)
	h.assertNoEntry("a.txt")
	h.assertHasTag("b.txt", "k")

	h.run("rm").MustFail(t, ErrInvalidInput)
}

func TestGetFiltersAndSort(t *testing.T) {
	tree := testutil.NewTestTree(t).Build()
	h := newHarness(t, tree)

	h.run("set", "-t", "draft", "c.md").MustSucceed(t)
	h.run("set", "-t", "draft", "-t", "done", "b.md").MustSucceed(t)
	h.run("set", "-t", "draft", "a.md").MustSucceed(t)
	h.run("set", "-t", "other", "d.md").MustSucceed(t)

	names := func(res *testutil.CLIResult) string {
		var out []string
		for _, raw := range res.DataList("entries") {
			e, _ := raw.(map[string]interface{})
			out = append(out, e["path"].(string))
		}
		return strings.Join(out, ",")
	}

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"get", "--all"}, "a.md,b.md,c.md,d.md"},
		{[]string{"get", "--all", "--has", "draft"}, "a.md,b.md,c.md"},
		{[]string{"get", "--all", "--has", "draft", "--lacks", "done"}, "a.md,c.md"},
		{[]string{"get", "--all", "--has", "draft,done"}, "b.md"},
		{[]string{"get", "--all", "--sort", "created"}, "c.md,b.md,a.md,d.md"},
		{[]string{"get", "a.md", "missing.md", "d.md"}, "a.md,d.md"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			if got := names(h.run(tt.args...).MustSucceed(t)); got != tt.want {
				t.Fatalf("got %s, want %s", got, tt.want)
			}
		})
	}

	h.run("get", "--all", "--sort", "size").MustFail(t, ErrInvalidInput)
	h.run("get", "--all", "a.md").MustFail(t, ErrInvalidInput)
}

func TestGetText(t *testing.T) {
	tree := testutil.NewTestTree(t).WithFile("f.txt", "x").Build()
	h := newHarness(t, tree)

	h.run("set", "-t", "count:10", "-t", "draft", "-c", "line one\nline two", "f.txt").MustSucceed(t)

	out, err := h.text("get", "f.txt")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	for _, want := range []string{"f.txt", "draft", "count", "10", "int", "comment: line one", "line two"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "draft") > strings.Index(out, "count") {
		t.Errorf("bare tags should print before valued tags:\n%s", out)
	}

	out, err = h.text("get", "--no-tags", "f.txt")
	if err != nil {
		t.Fatalf("get --no-tags: %v", err)
	}
	if strings.Contains(out, "draft") {
		t.Errorf("--no-tags printed tags:\n%s", out)
	}
}

func TestRootNotFound(t *testing.T) {
	tree := testutil.NewTestTree(t).WithoutRepository().Build()
	h := newHarness(t, tree)

	for _, args := range [][]string{
		{"get"},
		{"set", "-t", "a", "f.txt"},
		{"coll", "view"},
		{"db", "dump"},
	} {
		h.run(args...).MustFail(t, ErrRootNotFound)
	}
}

func TestDbInit(t *testing.T) {
	tree := testutil.NewTestTree(t).WithoutRepository().WithFile("sub/x.txt", "x").Build()
	h := newHarness(t, tree)

	res := h.run("db", "init", "--format", "binary").MustSucceed(t)
	if res.Data["format"] != string(repo.FormatBinary) {
		t.Fatalf("format = %v", res.Data["format"])
	}
	tree.AssertFileExists(filepath.Join(root.MarkerName, "db.bin"))

	h.run("db", "init").MustFail(t, ErrAlreadyInitialized)
	h.runIn("sub", "db", "init").MustFail(t, ErrAlreadyInitialized)
	h.run("db", "init", "--format", "xml").MustFail(t, ErrInvalidInput)
}

func TestDbInitUsesConfiguredFormat(t *testing.T) {
	tree := testutil.NewTestTree(t).WithoutRepository().Build()
	h := newHarness(t, tree)
	if err := os.WriteFile(h.configPath, []byte("default_format = \"json-pretty\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	h.run("db", "init").MustSucceed(t)
	tree.AssertFileExists(filepath.Join(root.MarkerName, "db.pretty.json"))
}

func TestDbDump(t *testing.T) {
	tree := testutil.NewTestTree(t).WithFormat(repo.FormatBinary).Build()
	h := newHarness(t, tree)

	h.run("set", "-t", "n:1", "-t", "flag", "a.txt").MustSucceed(t)

	res := h.run("db", "dump").MustSucceed(t)
	files, _ := res.Data["files"].(map[string]interface{})
	if _, ok := files["a.txt"]; !ok || res.Data["format"] != "binary" {
		t.Fatalf("dump = %s", res.RawJSON)
	}

	out, err := h.text("db", "dump", "--yaml")
	if err != nil {
		t.Fatalf("dump --yaml: %v", err)
	}
	for _, want := range []string{"format: binary", "a.txt:", "int: 1", "flag: null"} {
		if !strings.Contains(out, want) {
			t.Errorf("yaml missing %q:\n%s", want, out)
		}
	}

	out, err = h.text("db", "dump", "--pretty")
	if err != nil {
		t.Fatalf("dump --pretty: %v", err)
	}
	if !strings.Contains(out, "\n  \"files\"") {
		t.Errorf("pretty dump not indented:\n%s", out)
	}

	h.run("db", "dump", "--yaml", "--pretty").MustFail(t, ErrInvalidInput)
}

func TestDbDrop(t *testing.T) {
	tree := testutil.NewTestTree(t).Build()
	h := newHarness(t, tree)

	h.run("db", "drop").MustFail(t, ErrConfirmationRequired)
	tree.AssertFileExists(root.MarkerName)

	h.run("db", "drop", "--yes").MustSucceed(t)
	tree.AssertFileNotExists(root.MarkerName)
	h.run("get").MustFail(t, ErrRootNotFound)
}

func TestRepositoryBusy(t *testing.T) {
	tree := testutil.NewTestTree(t).Build()
	h := newHarness(t, tree)

	handle, err := root.Locate(tree.Path)
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	s, err := store.Open(handle)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	res := h.run("set", "-t", "a", "f.txt").MustFail(t, ErrRepositoryBusy)
	if res.Error.Details["retryable"] != true {
		t.Fatalf("details = %v", res.Error.Details)
	}
	// Readers are not blocked by a writer.
	h.run("get", "--all").MustSucceed(t)
}

func TestCorruptState(t *testing.T) {
	tree := testutil.NewTestTree(t).Build()
	h := newHarness(t, tree)

	tree.WriteFile(tree.StateFile(), "{not json")
	h.run("get").MustFail(t, ErrDecodeError)
	h.run("set", "-t", "a", "f.txt").MustFail(t, ErrDecodeError)
	if got := tree.ReadFile(tree.StateFile()); got != "{not json" {
		t.Fatalf("state file rewritten: %q", got)
	}
}

func TestConfigCommands(t *testing.T) {
	tree := testutil.NewTestTree(t).Build()
	h := newHarness(t, tree)

	res := h.run("config", "show").MustSucceed(t)
	if res.Data["exists"] != false {
		t.Fatalf("exists = %v", res.Data["exists"])
	}

	res = h.run("config", "init").MustSucceed(t)
	if res.Data["created"] != true {
		t.Fatalf("created = %v", res.Data["created"])
	}
	res = h.run("config", "init").MustSucceed(t)
	if res.Data["created"] != false {
		t.Fatalf("second init created = %v", res.Data["created"])
	}

	h.run("config", "set", "--default-format", "binary", "--opener", "firefox", "--render-comments=false").MustSucceed(t)
	res = h.run("config", "show").MustSucceed(t)
	if res.Data["default_format"] != "binary" || res.Data["opener"] != "firefox" {
		t.Fatalf("config = %v", res.Data)
	}
	ui, _ := res.Data["ui"].(map[string]interface{})
	if ui["render_comments"] != false {
		t.Fatalf("render_comments = %v", ui["render_comments"])
	}

	h.run("config", "set", "--default-format", "xml").MustFail(t, ErrInvalidInput)
	h.run("config", "set").MustFail(t, ErrInvalidInput)

	h.run("config", "unset", "--opener").MustSucceed(t)
	if got := h.run("config", "show").MustSucceed(t).DataString("opener"); got != "" {
		t.Fatalf("opener after unset = %q", got)
	}
}

func TestInvalidConfig(t *testing.T) {
	tree := testutil.NewTestTree(t).Build()
	h := newHarness(t, tree)
	if err := os.WriteFile(h.configPath, []byte("default_format = \"xml\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	h.run("get").MustFail(t, ErrConfigInvalid)
	h.run("config", "show").MustFail(t, ErrConfigInvalid)
}

func TestVerboseAndDebugExclusive(t *testing.T) {
	tree := testutil.NewTestTree(t).Build()
	h := newHarness(t, tree)
	h.run("-V", "--debug", "get").MustFail(t, ErrInvalidInput)
}

func TestVersion(t *testing.T) {
	tree := testutil.NewTestTree(t).WithoutRepository().Build()
	h := newHarness(t, tree)

	res := h.run("version").MustSucceed(t)
	if res.DataString("version") == "" || res.DataString("platform") == "" {
		t.Fatalf("version = %s", res.RawJSON)
	}
}
