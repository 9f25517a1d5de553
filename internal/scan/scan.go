// Package scan discovers candidate project directories under configured
// search roots and merges them with live tmux sessions into one selectable
// candidate list.
package scan

import (
	"os"
	"path/filepath"
	"strings"
)

// sessionTag marks candidate labels that name a live session rather than a
// directory, so a session and a directory with the same basename stay
// distinct entries.
const sessionTag = "tmux: "

// SearchPath is one scan root with its maximum traversal depth.
type SearchPath struct {
	Root  string
	Depth int
}

// Kind distinguishes the two candidate sources.
type Kind int

const (
	KindSession Kind = iota
	KindDirectory
)

// Candidate is one selectable entry. Label is the exact text fed to the
// fuzzy matcher.
type Candidate struct {
	Label string
	Kind  Kind
}

// Scan walks every search path up to its depth and returns the directories
// found, excluding each root itself. Subtrees named .git are pruned.
// Non-existent roots are skipped silently. Output order follows the
// configured root order; within one root it is directory-listing order.
func Scan(paths []SearchPath) []string {
	var dirs []string
	for _, p := range paths {
		dirs = walkRoot(dirs, p.Root, p.Depth)
	}
	return dirs
}

func walkRoot(dirs []string, root string, depth int) []string {
	if depth <= 0 {
		return dirs
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		// Missing or unreadable root: nothing to yield.
		return dirs
	}
	for _, entry := range entries {
		if !entry.IsDir() || entry.Name() == ".git" {
			continue
		}
		path := filepath.Join(root, entry.Name())
		dirs = append(dirs, path)
		dirs = walkRoot(dirs, path, depth-1)
	}
	return dirs
}

// SessionLabel wraps a live session name in the session tag.
func SessionLabel(name string) string {
	return sessionTag + name
}

// ParseSessionLabel reports whether label carries the session tag, and if so
// returns the bare session name.
func ParseSessionLabel(label string) (string, bool) {
	if !strings.HasPrefix(label, sessionTag) {
		return "", false
	}
	return strings.TrimPrefix(label, sessionTag), true
}

// Aggregate builds the selectable candidate list: live sessions first
// (tagged), then directories, with no deduplication.
func Aggregate(sessions, dirs []string) []Candidate {
	cands := make([]Candidate, 0, len(sessions)+len(dirs))
	for _, s := range sessions {
		cands = append(cands, Candidate{Label: SessionLabel(s), Kind: KindSession})
	}
	for _, d := range dirs {
		cands = append(cands, Candidate{Label: d, Kind: KindDirectory})
	}
	return cands
}

// Labels returns the candidate labels in order, one per entry.
func Labels(cands []Candidate) []string {
	labels := make([]string, len(cands))
	for i, c := range cands {
		labels[i] = c.Label
	}
	return labels
}
