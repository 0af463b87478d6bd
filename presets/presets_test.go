package presets_test

import (
	"testing"

	"github.com/PipeG09/UM-vfs-base-2025/presets"
	"github.com/stretchr/testify/require"
)

func TestGetKnownPreset(t *testing.T) {
	g, err := presets.Get("medium")
	require.NoError(t, err)
	require.EqualValues(t, 4096, g.TotalBlocks)
	require.EqualValues(t, 512, g.TotalInodes)
}

func TestGetUnknownPreset(t *testing.T) {
	_, err := presets.Get("nonexistent")
	require.Error(t, err)
}

func TestNamesIncludesAllPresets(t *testing.T) {
	names := presets.Names()
	require.Contains(t, names, "tiny")
	require.Contains(t, names, "small")
	require.Contains(t, names, "medium")
	require.Contains(t, names, "large")
}
