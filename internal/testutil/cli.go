package testutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
)

// CLIResult is one parsed --json invocation.
type CLIResult struct {
	OK       bool                   `json:"ok"`
	Data     map[string]interface{} `json:"data,omitempty"`
	Error    *CLIError              `json:"error,omitempty"`
	Warnings []CLIWarning           `json:"warnings,omitempty"`
	Meta     *CLIMeta               `json:"meta,omitempty"`

	RawJSON  string `json:"-"`
	Stderr   string `json:"-"`
	ExitCode int    `json:"-"`
}

// CLIError mirrors the error object of the envelope.
type CLIError struct {
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Suggestion string                 `json:"suggestion,omitempty"`
}

// CLIWarning mirrors one entry of the envelope's warnings.
type CLIWarning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Ref     string `json:"ref,omitempty"`
}

// CLIMeta mirrors the envelope's meta object.
type CLIMeta struct {
	Count int `json:"count"`
}

// ParseResult decodes what a --json invocation wrote. Output that is not an
// envelope becomes a failed result with code PARSE_ERROR.
func ParseResult(stdout, stderr []byte, exitCode int) *CLIResult {
	result := &CLIResult{}
	if err := json.Unmarshal(stdout, result); err != nil {
		result = &CLIResult{Error: &CLIError{
			Code:    "PARSE_ERROR",
			Message: "failed to parse JSON output: " + err.Error(),
		}}
	}
	result.RawJSON = string(stdout)
	result.Stderr = string(stderr)
	result.ExitCode = exitCode
	return result
}

var (
	buildOnce sync.Once
	binary    string
	buildErr  error
)

// BuildCLI compiles ./cmd/fsm once per test binary and returns its path.
func BuildCLI(t *testing.T) string {
	t.Helper()
	buildOnce.Do(func() {
		binary, buildErr = build()
	})
	if buildErr != nil {
		t.Fatalf("failed to build CLI: %v", buildErr)
	}
	return binary
}

func build() (string, error) {
	moduleRoot, err := findModuleRoot()
	if err != nil {
		return "", err
	}
	dir, err := os.MkdirTemp("", "fsm-cli-bin-*")
	if err != nil {
		return "", err
	}
	name := "fsm"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	out := filepath.Join(dir, name)

	cmd := exec.Command("go", "build", "-o", out, "./cmd/fsm")
	cmd.Dir = moduleRoot
	if output, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("%w\n%s", err, output)
	}
	return out, nil
}

func findModuleRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("go.mod not found above the working directory")
		}
		dir = parent
	}
}

// RunCLI runs the built binary at the tree root with --json. The config
// path points inside the tree so the user's own config never applies.
func (tr *TestTree) RunCLI(args ...string) *CLIResult {
	tr.t.Helper()
	return tr.RunCLIIn(".", args...)
}

// RunCLIIn is RunCLI from a directory relative to the tree root.
func (tr *TestTree) RunCLIIn(dir string, args ...string) *CLIResult {
	tr.t.Helper()

	full := append([]string{
		"-C", filepath.Join(tr.Path, dir),
		"--config", filepath.Join(tr.Path, ".fsm-test-config.toml"),
		"--json",
	}, args...)
	cmd := exec.Command(BuildCLI(tr.t), full...)
	cmd.Env = append(os.Environ(), "FSM_LOG=error")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	exitCode := 0
	if err := cmd.Run(); err != nil {
		exitCode = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
	}
	return ParseResult(stdout.Bytes(), stderr.Bytes(), exitCode)
}

// MustSucceed fails the test unless the command succeeded.
func (r *CLIResult) MustSucceed(t *testing.T) *CLIResult {
	t.Helper()
	if !r.OK {
		msg := "unknown error"
		if r.Error != nil {
			msg = r.Error.Code + ": " + r.Error.Message
		}
		t.Fatalf("expected success, got %s\nraw output: %s", msg, r.RawJSON)
	}
	return r
}

// MustFail fails the test unless the command failed with code.
func (r *CLIResult) MustFail(t *testing.T, code string) *CLIResult {
	t.Helper()
	switch {
	case r.OK:
		t.Fatalf("expected failure with %s, command succeeded\nraw output: %s", code, r.RawJSON)
	case r.Error == nil:
		t.Fatalf("expected failure with %s, no error object\nraw output: %s", code, r.RawJSON)
	case r.Error.Code != code:
		t.Fatalf("expected failure with %s, got %s: %s\nraw output: %s", code, r.Error.Code, r.Error.Message, r.RawJSON)
	}
	return r
}

// MustFailWithMessage fails the test unless the command failed with an
// error message or suggestion containing substr.
func (r *CLIResult) MustFailWithMessage(t *testing.T, substr string) *CLIResult {
	t.Helper()
	if r.OK || r.Error == nil {
		t.Fatalf("expected failure mentioning %q\nraw output: %s", substr, r.RawJSON)
	}
	if !strings.Contains(r.Error.Message, substr) && !strings.Contains(r.Error.Suggestion, substr) {
		t.Errorf("error %q (suggestion %q) does not mention %q", r.Error.Message, r.Error.Suggestion, substr)
	}
	return r
}

// DataList returns data[key] as a list, or nil.
func (r *CLIResult) DataList(key string) []interface{} {
	list, _ := r.Data[key].([]interface{})
	return list
}

// DataString returns data[key] as a string, or "".
func (r *CLIResult) DataString(key string) string {
	s, _ := r.Data[key].(string)
	return s
}
