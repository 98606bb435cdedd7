package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// AssertFileExists fails the test if the file does not exist.
func (tr *TestTree) AssertFileExists(relPath string) {
	tr.t.Helper()
	if _, err := os.Stat(filepath.Join(tr.Path, relPath)); os.IsNotExist(err) {
		tr.t.Errorf("expected file to exist: %s", relPath)
	}
}

// AssertFileNotExists fails the test if the file exists.
func (tr *TestTree) AssertFileNotExists(relPath string) {
	tr.t.Helper()
	if _, err := os.Stat(filepath.Join(tr.Path, relPath)); err == nil {
		tr.t.Errorf("expected file to not exist: %s", relPath)
	}
}

// Entry fetches the JSON form of one entry with 'get', or nil when the path
// has no entry.
func (tr *TestTree) Entry(relPath string) map[string]interface{} {
	tr.t.Helper()
	result := tr.RunCLI("get", relPath)
	result.MustSucceed(tr.t)
	entries := result.DataList("entries")
	if len(entries) == 0 {
		return nil
	}
	entry, _ := entries[0].(map[string]interface{})
	return entry
}

// AssertHasTag fails the test if the entry for relPath lacks key.
func (tr *TestTree) AssertHasTag(relPath, key string) {
	tr.t.Helper()
	entry := tr.Entry(relPath)
	if entry == nil {
		tr.t.Errorf("expected %s to have an entry", relPath)
		return
	}
	tagMap, _ := entry["tags"].(map[string]interface{})
	if _, ok := tagMap[key]; !ok {
		tr.t.Errorf("expected %s to carry tag %q, got %v", relPath, key, tagMap)
	}
}

// AssertNoEntry fails the test if relPath has an entry.
func (tr *TestTree) AssertNoEntry(relPath string) {
	tr.t.Helper()
	if entry := tr.Entry(relPath); entry != nil {
		tr.t.Errorf("expected no entry for %s, got %v", relPath, entry)
	}
}

// AssertHasWarning checks that the result contains a warning with the given code.
func (r *CLIResult) AssertHasWarning(t *testing.T, code string) {
	t.Helper()
	for _, w := range r.Warnings {
		if w.Code == code {
			return
		}
	}
	t.Errorf("expected warning with code %s, got warnings: %+v", code, r.Warnings)
}

// AssertNoWarnings checks that the result has no warnings.
func (r *CLIResult) AssertNoWarnings(t *testing.T) {
	t.Helper()
	if len(r.Warnings) > 0 {
		t.Errorf("expected no warnings, got: %+v", r.Warnings)
	}
}

// AssertResultCount checks that a result list has the expected length.
func (r *CLIResult) AssertResultCount(t *testing.T, key string, expected int) {
	t.Helper()
	results := r.DataList(key)
	if len(results) != expected {
		t.Errorf("expected %d %s, got %d\nRaw: %s", expected, key, len(results), r.RawJSON)
	}
}
