package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "none.yaml")}, args...))
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRunCmd(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.gcode")
	b := filepath.Join(dir, "b.gcode")
	require.NoError(t, os.WriteFile(a, []byte("G1 X1 F100\nG28\n"), 0644))
	require.NoError(t, os.WriteFile(b, []byte("G1 Y2 ; second file\n"), 0644))

	out, errOut, err := execute(t, "", "run", a, b)
	require.NoError(t, err)
	assert.Equal(t, ""+
		"1: MOVE READY: G1 X[1000] Y[0] Z[0] E[0] F[100000]\n"+
		"2: IGNORED G28 (home axes)\n"+
		"1: MOVE READY: G1 X[1000] Y[2000] Z[0] E[0] F[100000]\n",
		out,
	)
	assert.Contains(t, errOut, a+": 2 lines, 1 resolved, 1 ignored")
	assert.Contains(t, errOut, b+": 1 lines, 1 resolved; final X1 Y2 Z0 E0 F100")
}

func TestRunCmd_Stdin_JSON(t *testing.T) {
	out, _, err := execute(t, "G2 X1\n", "run", "--json", "-")
	require.NoError(t, err)
	assert.Contains(t, out, `"outcome":"unsupported"`)
}

func TestRunCmd_Missing(t *testing.T) {
	_, _, err := execute(t, "", "run", filepath.Join(t.TempDir(), "nope.gcode"))
	assert.Error(t, err)
}

func TestConsoleCmd_Stdio(t *testing.T) {
	out, _, err := execute(t, "G1 X1\r\nG2\r\n", "console")
	require.NoError(t, err)
	assert.Equal(t, ""+
		"1: MOVE READY: G1 X[1000] Y[0] Z[0] E[0] F[0]\r\nok\r\n"+
		"2: UNSUPPORTED cmd: G2\r\nerror:unsupported command: G2\r\n",
		out,
	)
}
