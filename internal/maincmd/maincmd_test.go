package maincmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/mna/mainer"
	"github.com/stretchr/testify/require"
)

func TestValidateDefaultsToReplWithNoArgs(t *testing.T) {
	c := &Cmd{}
	c.SetArgs(nil)
	require.NoError(t, c.Validate())
	require.NotNil(t, c.cmdFn)
}

func TestValidateDefaultsToRunWithBarePath(t *testing.T) {
	c := &Cmd{}
	c.SetArgs([]string{"script.lum"})
	require.NoError(t, c.Validate())
	require.Equal(t, []string{"script.lum"}, c.args)
}

func TestValidateExplicitCommand(t *testing.T) {
	c := &Cmd{}
	c.SetArgs([]string{"tokenize", "script.lum"})
	require.NoError(t, c.Validate())
	require.Equal(t, []string{"script.lum"}, c.args)
}

func TestValidateRequiresPathForRun(t *testing.T) {
	c := &Cmd{}
	c.SetArgs([]string{"run"})
	require.Error(t, c.Validate())
}

func TestMainRunsScriptEndToEnd(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "t.lum")
	require.NoError(t, os.WriteFile(path, []byte(`print 2 * 21;`), 0600))

	var out, eout bytes.Buffer
	stdio := mainer.Stdio{Stdout: &out, Stderr: &eout}
	c := Cmd{BuildVersion: "test", BuildDate: "test"}

	code := c.Main([]string{"luminous", "run", path}, stdio)
	require.Equal(t, mainer.Success, code)
	require.Equal(t, "42\n", out.String())
}

func TestMainPrintsVersion(t *testing.T) {
	var out, eout bytes.Buffer
	stdio := mainer.Stdio{Stdout: &out, Stderr: &eout}
	c := Cmd{BuildVersion: "1.2.3", BuildDate: "2026-01-01"}

	code := c.Main([]string{"luminous", "-v"}, stdio)
	require.Equal(t, mainer.Success, code)
	require.Contains(t, out.String(), "1.2.3")
}
