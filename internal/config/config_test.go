package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/andyyu8588/Luminous/internal/config"
)

func TestLoadDefaultsWhenNothingSet(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)
	require.False(t, cfg.TraceExec)
	require.False(t, cfg.DumpChunks)
	require.Equal(t, 0, cfg.StackMax)
}

func TestLoadReadsProjectYAML(t *testing.T) {
	dir := t.TempDir()
	yaml := "traceExec: true\nstackMax: 512\nimportPaths:\n  - /opt/lum/lib\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "luminous.yaml"), []byte(yaml), 0600))

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	require.True(t, cfg.TraceExec)
	require.Equal(t, 512, cfg.StackMax)
	require.Equal(t, []string{"/opt/lum/lib"}, cfg.ImportPaths)
}

func TestLoadEnvVarOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	yaml := "traceExec: true\nstackMax: 512\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "luminous.yaml"), []byte(yaml), 0600))

	t.Setenv("LUMINOUS_STACK_MAX", "64")

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	require.True(t, cfg.TraceExec) // untouched by env, still from YAML
	require.Equal(t, 64, cfg.StackMax)
}

func TestLoadMissingProjectFileIsNotAnError(t *testing.T) {
	dir := t.TempDir()
	_, err := config.Load(dir)
	require.NoError(t, err)
}
