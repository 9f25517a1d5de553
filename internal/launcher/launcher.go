// Package launcher resolves a selection into a tmux session and attaches to
// it, creating and hydrating the session when it does not exist yet.
package launcher

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"al.essio.dev/pkg/shellescape"

	"github.com/muxitdev/muxit/internal/config"
	"github.com/muxitdev/muxit/internal/logging"
	"github.com/muxitdev/muxit/internal/scan"
	"github.com/muxitdev/muxit/internal/tmux"
)

var log = logging.ForComponent("launcher")

// LiveSessions returns all running session names except the caller's own
// current session. Outside a tmux client, nothing is excluded.
func LiveSessions(cli tmux.Client) []string {
	sessions, err := cli.ListSessions()
	if err != nil || len(sessions) == 0 {
		return nil
	}

	var current string
	if cli.InsideClient() {
		current, _ = cli.CurrentSession()
	}

	var out []string
	for _, s := range sessions {
		if current != "" && s == current {
			continue
		}
		out = append(out, s)
	}
	return out
}

// SessionName derives a session name from a selection. Tagged selections
// already name a session; paths use their final component with dots replaced
// by underscores, since tmux forbids dots in session names.
func SessionName(selection string) string {
	if name, ok := scan.ParseSessionLabel(selection); ok {
		return name
	}
	base := filepath.Base(strings.TrimRight(selection, "/"))
	return strings.ReplaceAll(base, ".", "_")
}

// Launch makes sure a session exists for the selection and attaches or
// switches to it. Newly created sessions are hydrated; existing ones are
// attached as-is.
func Launch(cli tmux.Client, cfg config.Config, selection string) error {
	if name, ok := scan.ParseSessionLabel(selection); ok {
		// The entry came from the live session listing, so the session
		// already exists: attach only.
		return cli.SwitchOrAttach(name)
	}

	dir := selection
	name := SessionName(selection)

	if !cli.HasServer() || !cli.HasSession(name) {
		if err := cli.NewSession(name, dir); err != nil {
			return err
		}
		if err := Hydrate(cli, cfg, name, dir); err != nil {
			// Best effort: the session is already up, keep going.
			log.Warn("hydration failed", "session", name, "error", err)
		}
	}

	return cli.SwitchOrAttach(name)
}

// Hydrate sources the per-project setup file into the target, falling back
// to the global one in the user's home directory. With neither present it is
// a no-op. Session commands never hydrate; their command is the payload.
func Hydrate(cli tmux.Client, cfg config.Config, target, dir string) error {
	for _, path := range []string{
		filepath.Join(dir, cfg.HydrateFile),
		cfg.GlobalHydrateFile(),
	} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			continue
		}
		log.Debug("hydrating", "target", target, "file", path)
		return cli.SendKeys(target, fmt.Sprintf("source %s", shellescape.Quote(path)))
	}
	return nil
}
