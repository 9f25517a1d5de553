package picker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muxitdev/muxit/internal/scan"
)

func candidates(labels ...string) []scan.Candidate {
	cands := make([]scan.Candidate, len(labels))
	for i, l := range labels {
		cands[i] = scan.Candidate{Label: l, Kind: scan.KindDirectory}
	}
	return cands
}

func TestPickExplicitBypassesMatching(t *testing.T) {
	sel, err := Pick(nil, Options{Explicit: "/home/u/proj/api"})
	require.NoError(t, err)
	assert.Equal(t, "/home/u/proj/api", sel)
}

func TestPickQueryTakesBestMatch(t *testing.T) {
	cands := candidates(
		"/home/u/proj/dotfiles",
		"/home/u/proj/api-server",
		"/home/u/proj/website",
	)

	sel, err := Pick(cands, Options{Query: "apiserver"})
	require.NoError(t, err)
	assert.Equal(t, "/home/u/proj/api-server", sel)
}

func TestPickQueryMatchesSessionLabels(t *testing.T) {
	cands := []scan.Candidate{
		{Label: "tmux: work", Kind: scan.KindSession},
		{Label: "/home/u/proj/workbench", Kind: scan.KindDirectory},
	}

	sel, err := Pick(cands, Options{Query: "tmux work"})
	require.NoError(t, err)
	assert.Equal(t, "tmux: work", sel)
}

func TestPickQueryNoMatch(t *testing.T) {
	cands := candidates("/home/u/proj/api")

	_, err := Pick(cands, Options{Query: "zzzzqqqq"})
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestPickQueryEmptyCandidates(t *testing.T) {
	_, err := Pick(nil, Options{Query: "anything"})
	assert.ErrorIs(t, err, ErrNoMatch)
}
