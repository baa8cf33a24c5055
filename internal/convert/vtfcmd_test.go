package convert

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lambdaconstruct/internal/logx"
)

// fakeVTFCmd writes a shell script that records its arguments and exits
// with code.
func fakeVTFCmd(t *testing.T, code int) (string, string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	dir := t.TempDir()
	calls := filepath.Join(dir, "calls.txt")
	script := "#!/bin/sh\n" +
		"echo \"converting $2\"\n" +
		"echo \"$@\" >> \"" + calls + "\"\n" +
		"exit " + strconv.Itoa(code) + "\n"
	path := filepath.Join(dir, "vtfcmd.sh")
	require.NoError(t, os.WriteFile(path, []byte(script), 0755))
	return path, calls
}

func TestRun(t *testing.T) {
	tool, calls := fakeVTFCmd(t, 0)
	src := writeBytes(t, filepath.Join(t.TempDir(), "rifle_normal.png"), pngBytes(t, 64, 64, true))
	out := filepath.Join(t.TempDir(), "vtf")

	var logs bytes.Buffer
	c := &Converter{VTFCmd: tool, Rules: testRules, Logger: logx.New(&logs, "info")}
	res := c.Run(context.Background(), src, out)

	require.True(t, res.Success, res.Error)
	assert.Equal(t, "_normal", res.Rule)
	assert.DirExists(t, out)

	b, err := os.ReadFile(calls)
	require.NoError(t, err)
	assert.Equal(t, strings.Join(Args(testRules["_normal"], src, out), " ")+"\n", string(b))
	assert.Contains(t, logs.String(), "converting "+src)
}

func TestRunFailure(t *testing.T) {
	tool, _ := fakeVTFCmd(t, 3)
	src := writeBytes(t, filepath.Join(t.TempDir(), "a.png"), pngBytes(t, 4, 4, false))

	c := &Converter{VTFCmd: tool, Rules: testRules, Logger: logx.New(io.Discard, "error")}
	res := c.Run(context.Background(), src, t.TempDir())
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "exit status 3")
}

func TestRunMissingInput(t *testing.T) {
	c := &Converter{VTFCmd: "unused", Rules: testRules, Logger: logx.New(io.Discard, "error")}
	res := c.Run(context.Background(), filepath.Join(t.TempDir(), "missing.png"), t.TempDir())
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "convert: input")
}

func TestRunDryRunWarnings(t *testing.T) {
	src := writeBytes(t, filepath.Join(t.TempDir(), "decal_color.png"), pngBytes(t, 30, 30, true))
	out := filepath.Join(t.TempDir(), "never")

	var logs bytes.Buffer
	c := &Converter{VTFCmd: "/nonexistent/VTFCmd", Rules: testRules, DryRun: true, Logger: logx.New(&logs, "info")}
	res := c.Run(context.Background(), src, out)

	assert.True(t, res.Success)
	assert.Equal(t, "default", res.Rule)
	assert.NoDirExists(t, out)
	assert.Contains(t, logs.String(), "dimensions are not powers of two")
	assert.Contains(t, logs.String(), "source has alpha but the rule sets no alpha format")
	assert.Contains(t, logs.String(), "dry run")
}

func TestConvertDir(t *testing.T) {
	tool, calls := fakeVTFCmd(t, 0)
	in := t.TempDir()
	writeBytes(t, filepath.Join(in, "b_normal.TGA"), tgaBytes(4, 4))
	writeBytes(t, filepath.Join(in, "a.png"), pngBytes(t, 4, 4, false))
	writeBytes(t, filepath.Join(in, "notes.txt"), []byte("skip"))
	writeBytes(t, filepath.Join(in, "sub", "c.png"), pngBytes(t, 4, 4, false))

	c := &Converter{VTFCmd: tool, Rules: testRules, Logger: logx.New(io.Discard, "error")}
	results, err := c.ConvertDir(context.Background(), in, t.TempDir())
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a.png", filepath.Base(results[0].Source))
	assert.Equal(t, "default", results[0].Rule)
	assert.Equal(t, "b_normal.TGA", filepath.Base(results[1].Source))
	assert.Equal(t, "_normal", results[1].Rule)

	b, err := os.ReadFile(calls)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(b), "\n"))

	_, err = c.ConvertDir(context.Background(), filepath.Join(in, "missing"), t.TempDir())
	assert.Error(t, err)
}
