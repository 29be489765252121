package cmd

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bettyprotocol/betty-drift/internal/version"
)

func TestRootCommandsRegistered(t *testing.T) {
	want := []string{"detect", "meta", "rules", "version"}
	for _, name := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}

	show, _, err := rootCmd.Find([]string{"rules", "show"})
	require.NoError(t, err)
	assert.Equal(t, "show", show.Name())
}

func TestDetectFlags(t *testing.T) {
	for _, name := range []string{"repo", "level", "format", "rules", "out-dir", "strict", "metrics-file"} {
		assert.NotNil(t, detectCmd.Flags().Lookup(name), "missing --%s", name)
	}
	for _, name := range []string{"verbose", "no-color"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), "missing --%s", name)
	}
	assert.Equal(t, "1", detectCmd.Flags().Lookup("level").DefValue)
	assert.Equal(t, "md", detectCmd.Flags().Lookup("format").DefValue)
}

func TestVersionCommand(t *testing.T) {
	t.Cleanup(func() {
		versionJSON = false
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "betty-drift "+version.Version+"\n", out.String())

	out.Reset()
	rootCmd.SetArgs([]string{"version", "--json"})
	require.NoError(t, rootCmd.Execute())

	var info version.Info
	require.NoError(t, json.Unmarshal(out.Bytes(), &info))
	assert.Equal(t, version.Version, info.Version)
	assert.NotEmpty(t, info.GoVersion)
}

func TestDetectHelpListsExitCodes(t *testing.T) {
	for _, line := range []string{
		"0 - Success",
		"1 - Drift found (strict mode or META.yaml drift)",
		"2 - Configuration error",
		"3 - General error",
		"130 - Interrupted",
	} {
		assert.Contains(t, detectCmd.Long, line)
	}
}
