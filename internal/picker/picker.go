// Package picker bridges the candidate list to the user's selection: either
// an explicit target, a non-interactive fuzzy query, or an interactive fzf
// pick.
package picker

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/muxitdev/muxit/internal/scan"
)

var (
	// ErrCancelled means the user dismissed the interactive pick. Callers
	// treat it as a clean early exit, not a failure.
	ErrCancelled = errors.New("selection cancelled")

	// ErrNoMatch means a --query matched no candidate.
	ErrNoMatch = errors.New("query matched no candidate")
)

// Options controls how a selection is made.
type Options struct {
	// Explicit, when set, is used verbatim as the selection and no
	// matching runs at all.
	Explicit string
	// Query, when set, picks the best fuzzy match non-interactively.
	Query string
}

// Pick returns exactly one selection for the candidate list.
func Pick(cands []scan.Candidate, opts Options) (string, error) {
	if opts.Explicit != "" {
		return opts.Explicit, nil
	}
	labels := scan.Labels(cands)
	if opts.Query != "" {
		return queryPick(labels, opts.Query)
	}
	return interactivePick(labels)
}

// queryPick ranks the labels against the query and takes the best hit.
func queryPick(labels []string, query string) (string, error) {
	matches := fuzzy.Find(query, labels)
	if len(matches) == 0 {
		return "", fmt.Errorf("%w: %q", ErrNoMatch, query)
	}
	return labels[matches[0].Index], nil
}

// interactivePick pipes the labels to fzf and blocks until the user picks a
// line or cancels.
func interactivePick(labels []string) (string, error) {
	if _, err := exec.LookPath("fzf"); err != nil {
		return "", fmt.Errorf("fzf not found in PATH: %w", err)
	}

	cmd := exec.Command("fzf")
	cmd.Stdin = strings.NewReader(strings.Join(labels, "\n"))
	// fzf draws its UI on the controlling terminal via stderr.
	cmd.Stderr = os.Stderr

	out, err := cmd.Output()
	if err != nil {
		// Non-zero exit covers both Esc/Ctrl-C and no-match: the user
		// walked away without choosing.
		return "", ErrCancelled
	}

	selection := strings.TrimSpace(string(out))
	if selection == "" {
		return "", ErrCancelled
	}
	return selection, nil
}
