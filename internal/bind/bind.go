// Package bind maps numbered session commands onto fixed window or pane
// slots in the current session, reusing a live binding instead of spawning
// the command again.
package bind

import (
	"fmt"

	"github.com/muxitdev/muxit/internal/config"
	"github.com/muxitdev/muxit/internal/logging"
	"github.com/muxitdev/muxit/internal/panecache"
	"github.com/muxitdev/muxit/internal/tmux"
)

var log = logging.ForComponent("bind")

// Bind attaches the session command at slot to its window or pane slot in
// the current session, creating it if needed. dir is the working directory
// new splits start in.
//
// Window mode targets the fixed index cfg.WindowOffset+slot and checks
// liveness against tmux directly each run, so window bindings are never
// recorded in the pane cache. Split modes go through the cache.
func Bind(cli tmux.Client, store *panecache.Store, cfg config.Config, slot int, mode panecache.SplitMode, dir string) error {
	command, err := cfg.Command(slot)
	if err != nil {
		return err
	}

	if !cli.HasServer() {
		return fmt.Errorf("session command %d: %w", slot, tmux.ErrNoServer)
	}

	session, err := cli.CurrentSession()
	if err != nil {
		return err
	}

	if mode == panecache.ModeWindow {
		return bindWindow(cli, cfg, session, slot, dir, command)
	}
	return bindSplit(cli, store, session, slot, mode, dir, command)
}

func bindWindow(cli tmux.Client, cfg config.Config, session string, slot int, dir, command string) error {
	target := fmt.Sprintf("%s:%d", session, cfg.WindowOffset+slot)

	if cli.HasTarget(target) {
		log.Debug("window already bound", "target", target)
		return cli.SwitchOrAttach(session)
	}

	if err := cli.NewWindow(target, dir, command); err != nil {
		return err
	}
	// No hydration here: the session command itself is what runs in the
	// window.
	if err := cli.SelectWindow(target); err != nil {
		return err
	}
	return cli.SwitchOrAttach(session)
}

func bindSplit(cli tmux.Client, store *panecache.Store, session string, slot int, mode panecache.SplitMode, dir, command string) error {
	live := livePanes(cli)
	if err := store.GC(live); err != nil {
		return err
	}

	key := panecache.Key{Slot: slot, Mode: mode}
	if id, ok, err := store.Lookup(key); err != nil {
		return err
	} else if ok && live[id] {
		// The command is still running in its pane: reuse it.
		log.Debug("reusing pane", "slot", slot, "mode", mode.Tag(), "pane", id)
		if err := cli.SelectPane(id); err != nil {
			return err
		}
		return cli.SwitchOrAttach(session)
	}

	axis := tmux.AxisVertical
	if mode == panecache.ModeHSplit {
		axis = tmux.AxisHorizontal
	}
	id, err := cli.SplitWindow(axis, dir, command)
	if err != nil {
		return err
	}
	if err := store.Put(key, id); err != nil {
		return err
	}
	return cli.SwitchOrAttach(session)
}

func livePanes(cli tmux.Client) map[string]bool {
	ids, err := cli.ListPaneIDs()
	if err != nil {
		return map[string]bool{}
	}
	live := make(map[string]bool, len(ids))
	for _, id := range ids {
		live[id] = true
	}
	return live
}
