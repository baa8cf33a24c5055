package filelist

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lambdaconstruct/internal/logx"
)

func TestReadInputList(t *testing.T) {
	src := `# generator list
input="models/weapons"
INPUT = 'models/props/'
bogus line
input=
textures=foo
materials="C:/sfm/usermod/materials"
`
	var buf bytes.Buffer
	list, err := ReadInputList(strings.NewReader(src), logx.New(&buf, "warn"))
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Clean("models/weapons"),
		filepath.Clean("models/props/"),
	}, list.Inputs)
	assert.Equal(t, filepath.Clean("C:/sfm/usermod/materials"), list.Materials)

	logs := buf.String()
	assert.Contains(t, logs, "invalid line in file list")
	assert.Contains(t, logs, "empty path in file list")
	assert.Contains(t, logs, "unknown key in file list")
}

func TestReadInputListMaterials(t *testing.T) {
	_, err := ReadInputList(strings.NewReader("input=a\n"), nil)
	assert.ErrorIs(t, err, ErrMaterials)

	_, err = ReadInputList(strings.NewReader("materials=a\nmaterials=b\n"), nil)
	assert.ErrorIs(t, err, ErrMaterials)
	assert.ErrorContains(t, err, "line 2")
}

func TestParseInputListFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "list.txt")
	require.NoError(t, os.WriteFile(p, []byte("materials=mats\r\ninput=in\r\n"), 0644))

	list, err := ParseInputList(p, nil)
	require.NoError(t, err)
	assert.Equal(t, "mats", list.Materials)
	assert.Equal(t, []string{"in"}, list.Inputs)

	_, err = ParseInputList(filepath.Join(t.TempDir(), "missing.txt"), nil)
	assert.ErrorContains(t, err, "filelist: open")
}

func TestReadCompileFile(t *testing.T) {
	src := `qc="models/a.qc"
qc=models/b.qc
# qc=skipped.qc
game = "C:/sfm/usermod"
studiomdl='C:/sfm/bin/studiomdl.exe'
qcfolder=models
color=red
no equals here
`
	cf, err := ReadCompileFile(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, CompileFile{
		QC:        []string{"models/a.qc", "models/b.qc"},
		Game:      "C:/sfm/usermod",
		Studiomdl: "C:/sfm/bin/studiomdl.exe",
		QCFolder:  "models",
	}, cf)
}

func TestReadIOList(t *testing.T) {
	src := `input="raw/weapons" output="materials/weapons"
input="raw/props"
output="orphan"
`
	var buf bytes.Buffer
	pairs, err := ReadIOList(strings.NewReader(src), logx.New(&buf, "warn"))
	require.NoError(t, err)
	assert.Equal(t, []IOPair{
		{Input: "raw/weapons", Output: "materials/weapons"},
		{Input: "raw/props", Output: "raw/props"},
	}, pairs)
	assert.Contains(t, buf.String(), "skipping line without input")
}
