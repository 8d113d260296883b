package normalization

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type level int

const (
	levelLow level = iota
	levelMid
	levelHigh
)

func newLevels() *Normalizer[level] {
	return NewNormalizer(map[string]level{
		"low":    levelLow,
		"mid":    levelMid,
		"medium": levelMid,
		"high":   levelHigh,
	}, levelLow)
}

func TestNormalize(t *testing.T) {
	n := newLevels()
	tests := []struct {
		name  string
		input string
		want  level
	}{
		{"exact match", "mid", levelMid},
		{"case insensitive", "HIGH", levelHigh},
		{"with spaces", "  medium ", levelMid},
		{"unknown falls back to default", "extreme", levelLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, n.Normalize(tt.input))
		})
	}
}

func TestLookup(t *testing.T) {
	n := newLevels()
	v, ok := n.Lookup("Medium")
	require.True(t, ok)
	require.Equal(t, levelMid, v)

	_, ok = n.Lookup("")
	require.False(t, ok)
}

func TestNormalizeWithError(t *testing.T) {
	n := newLevels()
	v, err := n.NormalizeWithError(" HIGH")
	require.NoError(t, err)
	require.Equal(t, levelHigh, v)

	_, err = n.NormalizeWithError("extreme")
	require.ErrorContains(t, err, `"extreme"`)
	require.ErrorContains(t, err, "[high low medium mid]")
}

func TestValidKeysIsACopy(t *testing.T) {
	n := newLevels()
	keys := n.ValidKeys()
	require.Equal(t, []string{"high", "low", "medium", "mid"}, keys)
	keys[0] = "mutated"
	require.Equal(t, "high", n.ValidKeys()[0])
}
