// Package opener hands a resolved URL to an external application.
package opener

import (
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"
)

// Opener launches target in an external application.
type Opener interface {
	Open(target string) error
}

// Func adapts a function to Opener.
type Func func(target string) error

func (f Func) Open(target string) error { return f(target) }

// Command runs an external program with the target appended. It does not
// wait for the program to exit.
type Command struct {
	Name string
	Args []string

	// Shell, when set, is a compound command line run through sh -c.
	Shell string
}

// New returns an opener for the configured command line. Empty selects the
// operating system's default handler.
func New(configured string) Opener {
	configured = strings.TrimSpace(configured)
	if configured == "" {
		return System(runtime.GOOS)
	}
	// Compound commands such as "open -a Firefox" go through the shell so
	// their own arguments are honoured.
	if strings.ContainsAny(configured, " \t") && runtime.GOOS != "windows" {
		return &Command{Shell: configured}
	}
	return &Command{Name: configured}
}

// System returns the default handler for goos.
func System(goos string) *Command {
	switch goos {
	case "darwin":
		return &Command{Name: "open"}
	case "windows":
		return &Command{Name: "rundll32", Args: []string{"url.dll,FileProtocolHandler"}}
	default:
		return &Command{Name: "xdg-open"}
	}
}

// Cmd builds the process that would open target.
func (c *Command) Cmd(target string) *exec.Cmd {
	if c.Shell != "" {
		return exec.Command("sh", "-c", c.Shell+" "+shQuote(target))
	}
	args := append(append([]string(nil), c.Args...), target)
	return exec.Command(c.Name, args...)
}

func (c *Command) Open(target string) error {
	cmd := c.Cmd(target)
	slog.Debug("launching opener", "args", cmd.Args)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to launch %s: %w", cmd.Args[0], err)
	}
	// Reap the child in the background; its exit status is not ours to report.
	go func() { _ = cmd.Wait() }()
	return nil
}

// shQuote single-quotes s for sh, so URLs with & or ? reach the command as
// one argument.
func shQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
