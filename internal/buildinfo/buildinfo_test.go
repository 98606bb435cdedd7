package buildinfo

import (
	"runtime/debug"
	"testing"
)

func TestFromBuildInfo(t *testing.T) {
	info := From(&debug.BuildInfo{
		GoVersion: "go1.23.4",
		Main: debug.Module{
			Path:    "github.com/aidanlsb/fsm",
			Version: "v1.2.3",
		},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2026-02-14T17:00:00Z"},
			{Key: "vcs.modified", Value: "true"},
			{Key: "GOOS", Value: "windows"},
			{Key: "GOARCH", Value: "amd64"},
		},
	}, true)

	if info.Version != "v1.2.3" {
		t.Fatalf("Version = %q", info.Version)
	}
	if info.Commit != "abc123" || info.CommitTime != "2026-02-14T17:00:00Z" {
		t.Fatalf("commit = %q at %q", info.Commit, info.CommitTime)
	}
	if !info.Modified {
		t.Fatal("Modified = false, want true")
	}
	if info.GoVersion != "go1.23.4" || info.Platform != "windows/amd64" {
		t.Fatalf("go = %q platform = %q", info.GoVersion, info.Platform)
	}
}

func TestFromLdflagsFallback(t *testing.T) {
	prev := [3]string{Version, Commit, Date}
	t.Cleanup(func() { Version, Commit, Date = prev[0], prev[1], prev[2] })
	Version, Commit, Date = "v0.4.0", "def456", "2026-03-01"

	info := From(&debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}, true)
	if info.Version != "v0.4.0" || info.Commit != "def456" || info.CommitTime != "2026-03-01" {
		t.Fatalf("info = %+v", info)
	}
	if info.ModulePath != modulePath {
		t.Fatalf("ModulePath = %q", info.ModulePath)
	}

	info = From(nil, false)
	if info.Version != "v0.4.0" {
		t.Fatalf("Version without build info = %q", info.Version)
	}
}
