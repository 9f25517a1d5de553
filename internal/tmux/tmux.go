// Package tmux wraps the tmux control surface used by muxit. All multiplexer
// state lives in tmux itself; this package only issues control commands and
// parses their output.
package tmux

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/muxitdev/muxit/internal/logging"
)

// ErrNoServer is returned when an operation needs a running tmux server and
// none exists.
var ErrNoServer = errors.New("no tmux server running")

// Axis selects the split direction. The constants follow tmux's own flag
// convention: a vertical split (panes side by side) is tmux -h, a horizontal
// split (panes stacked) is tmux -v.
type Axis int

const (
	AxisVertical Axis = iota
	AxisHorizontal
)

func (a Axis) flag() string {
	if a == AxisVertical {
		return "-h"
	}
	return "-v"
}

// Client is the tmux control surface muxit depends on. The exec-backed
// Runner is the production implementation; tests substitute an in-memory
// fake.
type Client interface {
	// ListSessions returns all live session names, or nil when no server
	// is running.
	ListSessions() ([]string, error)
	// ListPaneIDs returns the pane ids of every pane in every session.
	ListPaneIDs() ([]string, error)
	// CurrentSession returns the session of the attached client.
	CurrentSession() (string, error)
	// InsideClient reports whether the caller runs inside a tmux client.
	InsideClient() bool
	// HasServer reports whether a tmux server is running.
	HasServer() bool
	// HasSession reports whether a session with the exact name exists.
	HasSession(name string) bool
	// HasTarget reports whether the given session:window target exists.
	HasTarget(target string) bool
	// NewSession creates a detached session rooted at dir.
	NewSession(name, dir string) error
	// NewWindow creates a detached window at the exact target index
	// running command in dir.
	NewWindow(target, dir, command string) error
	// SplitWindow splits the current window along axis, running command in
	// dir, and returns the new pane's id.
	SplitWindow(axis Axis, dir, command string) (string, error)
	// SelectWindow makes the target window current.
	SelectWindow(target string) error
	// SelectPane makes the pane with the given id current.
	SelectPane(id string) error
	// SwitchOrAttach switches the current client to the session when run
	// inside tmux, otherwise attaches a new client to it.
	SwitchOrAttach(session string) error
	// SendKeys types line into the target pane followed by Enter.
	SendKeys(target, line string) error
}

// Available reports whether the tmux binary can be found.
func Available() error {
	if _, err := exec.LookPath("tmux"); err != nil {
		return fmt.Errorf("tmux not found in PATH: %w", err)
	}
	return nil
}

// Runner is the exec-backed Client.
type Runner struct{}

var _ Client = Runner{}

var log = logging.ForComponent("tmux")

// NewRunner returns the exec-backed tmux client.
func NewRunner() Runner {
	return Runner{}
}

func run(args ...string) (string, error) {
	out, err := exec.Command("tmux", args...).Output()
	if err != nil {
		return "", fmt.Errorf("tmux %s: %w", args[0], err)
	}
	return strings.TrimRight(string(out), "\n"), nil
}

// splitLines splits trimmed command output into lines, returning nil for
// empty output.
func splitLines(out string) []string {
	out = strings.TrimSpace(out)
	if out == "" {
		return nil
	}
	return strings.Split(out, "\n")
}

func (Runner) ListSessions() ([]string, error) {
	out, err := run("list-sessions", "-F", "#{session_name}")
	if err != nil {
		// tmux exits non-zero when no server is running. That is an
		// empty listing, not a failure.
		log.Debug("list-sessions failed", "error", err)
		return nil, nil
	}
	return splitLines(out), nil
}

func (Runner) ListPaneIDs() ([]string, error) {
	out, err := run("list-panes", "-a", "-F", "#{pane_id}")
	if err != nil {
		log.Debug("list-panes failed", "error", err)
		return nil, nil
	}
	return splitLines(out), nil
}

func (Runner) CurrentSession() (string, error) {
	out, err := run("display-message", "-p", "#{session_name}")
	if err != nil {
		return "", fmt.Errorf("query current session: %w", ErrNoServer)
	}
	return out, nil
}

func (Runner) InsideClient() bool {
	return os.Getenv("TMUX") != ""
}

func (Runner) HasServer() bool {
	_, err := run("list-sessions", "-F", "#{session_name}")
	return err == nil
}

func (Runner) HasSession(name string) bool {
	// The = prefix forces an exact name match instead of prefix matching.
	err := exec.Command("tmux", "has-session", "-t", "="+name).Run()
	return err == nil
}

func (Runner) HasTarget(target string) bool {
	err := exec.Command("tmux", "has-session", "-t", target).Run()
	return err == nil
}

func (Runner) NewSession(name, dir string) error {
	if _, err := run("new-session", "-d", "-s", name, "-c", dir); err != nil {
		return fmt.Errorf("create session %q: %w", name, err)
	}
	log.Info("created session", "name", name, "dir", dir)
	return nil
}

func (Runner) NewWindow(target, dir, command string) error {
	if _, err := run("new-window", "-d", "-t", target, "-c", dir, command); err != nil {
		return fmt.Errorf("create window %q: %w", target, err)
	}
	log.Info("created window", "target", target, "command", command)
	return nil
}

func (Runner) SplitWindow(axis Axis, dir, command string) (string, error) {
	out, err := run("split-window", axis.flag(), "-c", dir, "-P", "-F", "#{pane_id}", command)
	if err != nil {
		return "", fmt.Errorf("split window: %w", err)
	}
	log.Info("created split", "pane", out, "command", command)
	return out, nil
}

func (Runner) SelectWindow(target string) error {
	if _, err := run("select-window", "-t", target); err != nil {
		return fmt.Errorf("select window %q: %w", target, err)
	}
	return nil
}

func (Runner) SelectPane(id string) error {
	if _, err := run("select-pane", "-t", id); err != nil {
		return fmt.Errorf("select pane %q: %w", id, err)
	}
	return nil
}

func (r Runner) SwitchOrAttach(session string) error {
	if r.InsideClient() {
		if _, err := run("switch-client", "-t", session); err != nil {
			return fmt.Errorf("switch client to %q: %w", session, err)
		}
		return nil
	}
	// Attaching takes over the terminal, so wire the process stdio through.
	cmd := exec.Command("tmux", "attach-session", "-t", session)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("attach to %q: %w", session, err)
	}
	return nil
}

func (Runner) SendKeys(target, line string) error {
	if _, err := run("send-keys", "-t", target, line, "C-m"); err != nil {
		return fmt.Errorf("send keys to %q: %w", target, err)
	}
	return nil
}
