package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/muxitdev/muxit/internal/bind"
	"github.com/muxitdev/muxit/internal/config"
	"github.com/muxitdev/muxit/internal/launcher"
	"github.com/muxitdev/muxit/internal/logging"
	"github.com/muxitdev/muxit/internal/panecache"
	"github.com/muxitdev/muxit/internal/picker"
	"github.com/muxitdev/muxit/internal/scan"
	"github.com/muxitdev/muxit/internal/tmux"
)

var (
	configPath string
	debugLog   bool
)

func newRootCmd() *cobra.Command {
	var query string

	root := &cobra.Command{
		Use:   "muxit [path]",
		Short: "Fuzzy-pick a project directory or tmux session and jump to it",
		Long: `muxit scans your configured search roots for project directories, merges
them with running tmux sessions, hands the list to fzf, and attaches to (or
creates) a session for whatever you pick.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			target := ""
			if len(args) > 0 {
				target = args[0]
			}
			return runGo(target, query)
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.config/muxit/muxit.toml)")
	root.PersistentFlags().BoolVar(&debugLog, "debug", false, "Enable debug logging")
	root.Flags().StringVarP(&query, "query", "q", "", "Pick the best fuzzy match non-interactively")

	root.AddCommand(newCmdCmd())
	root.AddCommand(newListCmd())

	return root
}

func newCmdCmd() *cobra.Command {
	var vsplit, hsplit bool

	c := &cobra.Command{
		Use:   "cmd <index>",
		Short: "Run a configured session command in its fixed window or pane slot",
		Long: `cmd binds the session command at the given index to a fixed slot in the
current session: a numbered window by default, or a split pane with --vsplit
or --hsplit. Re-running the same command while its pane is alive jumps to it
instead of spawning it again.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			slot, err := strconv.Atoi(args[0])
			if err != nil || slot < 0 {
				return fmt.Errorf("invalid session command index %q", args[0])
			}
			if vsplit && hsplit {
				return errors.New("--vsplit and --hsplit are mutually exclusive")
			}
			mode := panecache.ModeWindow
			if vsplit {
				mode = panecache.ModeVSplit
			} else if hsplit {
				mode = panecache.ModeHSplit
			}
			return runCmd(slot, mode)
		},
	}

	c.Flags().BoolVar(&vsplit, "vsplit", false, "Run the command in a vertical split (panes side by side)")
	c.Flags().BoolVar(&hsplit, "hsplit", false, "Run the command in a horizontal split (panes stacked)")

	return c
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "list",
		Short:        "Print the candidate list without selecting anything",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, cli, err := setup()
			if err != nil {
				return err
			}
			cands := scan.Aggregate(launcher.LiveSessions(cli), scan.Scan(cfg.SearchPaths()))
			for _, label := range scan.Labels(cands) {
				fmt.Fprintln(cmd.OutOrStdout(), label)
			}
			return nil
		},
	}
}

// setup loads the config, wires logging, and verifies tmux is available.
func setup() (config.Config, tmux.Client, error) {
	path := configPath
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return config.Config{}, nil, err
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, nil, err
	}

	logging.Setup(cfg.LogFile, debugLog)

	if err := tmux.Available(); err != nil {
		return config.Config{}, nil, err
	}

	return cfg, tmux.NewRunner(), nil
}

func runGo(target, query string) error {
	cfg, cli, err := setup()
	if err != nil {
		return err
	}

	var cands []scan.Candidate
	if target == "" {
		cands = scan.Aggregate(launcher.LiveSessions(cli), scan.Scan(cfg.SearchPaths()))
	}

	selection, err := picker.Pick(cands, picker.Options{Explicit: target, Query: query})
	if err != nil {
		if errors.Is(err, picker.ErrCancelled) {
			// The user backed out: nothing to do.
			return nil
		}
		return err
	}

	return launcher.Launch(cli, cfg, selection)
}

func runCmd(slot int, mode panecache.SplitMode) error {
	cfg, cli, err := setup()
	if err != nil {
		return err
	}

	dir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("determine working directory: %w", err)
	}

	store := panecache.New(cfg.CacheFile)
	return bind.Bind(cli, store, cfg, slot, mode, dir)
}
