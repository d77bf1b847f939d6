package maincmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/mna/mainer"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "t.lum")
	require.NoError(t, os.WriteFile(path, []byte(src), 0600))
	return path
}

func TestRunFileExecutesScript(t *testing.T) {
	path := writeScript(t, `print 1 + 2;`)
	var out, eout bytes.Buffer
	stdio := mainer.Stdio{Stdout: &out, Stderr: &eout}

	_, err := runFile(stdio, path, false, false, 0)
	require.NoError(t, err)
	require.Equal(t, "3\n", out.String())
	require.Empty(t, eout.String())
}

func TestRunFileReportsCompileError(t *testing.T) {
	path := writeScript(t, `return 1;`)
	var out, eout bytes.Buffer
	stdio := mainer.Stdio{Stdout: &out, Stderr: &eout}

	_, err := runFile(stdio, path, false, false, 0)
	require.Error(t, err)
	require.Contains(t, eout.String(), "Can't return from top-level code.")
}

func TestRunFileReportsRuntimeError(t *testing.T) {
	path := writeScript(t, `print doesNotExist;`)
	var out, eout bytes.Buffer
	stdio := mainer.Stdio{Stdout: &out, Stderr: &eout}

	_, err := runFile(stdio, path, false, false, 0)
	require.Error(t, err)
	require.Contains(t, eout.String(), "Undefined variable 'doesNotExist'.")
}

func TestRunFileDumpChunksPrintsDisassembly(t *testing.T) {
	path := writeScript(t, `print 1;`)
	var out, eout bytes.Buffer
	stdio := mainer.Stdio{Stdout: &out, Stderr: &eout}

	_, err := runFile(stdio, path, false, true, 0)
	require.NoError(t, err)
	require.Contains(t, out.String(), "== script ==")
	require.Contains(t, out.String(), "1\n") // the print's own output
}
