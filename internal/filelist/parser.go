// Package filelist parses the small key=value list files the command line
// tools accept in place of repeated flags.
package filelist

import (
	"bufio"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"lambdaconstruct/internal/logx"
)

// ErrMaterials reports a file list without exactly one materials= entry.
var ErrMaterials = errors.New("file list needs exactly one materials= entry")

// entry is one non-comment line of a list file.
type entry struct {
	line  int
	text  string
	key   string
	value string
	ok    bool // line had a '='
}

// scanEntries splits r into trimmed, non-blank, non-comment lines.
func scanEntries(r io.Reader) ([]entry, error) {
	var out []entry
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		e := entry{line: n, text: line}
		if key, value, found := strings.Cut(line, "="); found {
			e.ok = true
			e.key = strings.ToLower(strings.TrimSpace(key))
			e.value = unquote(value)
		}
		out = append(out, e)
	}
	return out, sc.Err()
}

func unquote(v string) string {
	v = strings.TrimSpace(v)
	v = strings.Trim(v, `"`)
	return strings.Trim(v, `'`)
}

func open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "filelist: open %s", path)
	}
	return f, nil
}

// ParseInputList reads a generator file list from path.
func ParseInputList(path string, log *slog.Logger) (InputList, error) {
	f, err := open(path)
	if err != nil {
		return InputList{}, err
	}
	defer f.Close()

	list, err := ReadInputList(f, log)
	if err != nil {
		return InputList{}, errors.Wrapf(err, "filelist: %s", path)
	}
	return list, nil
}

// ReadInputList parses input= and materials= lines. Invalid, empty and
// unknown entries are logged and skipped. A list with zero or several
// materials= entries is an error.
func ReadInputList(r io.Reader, log *slog.Logger) (InputList, error) {
	log = logx.Or(log)
	entries, err := scanEntries(r)
	if err != nil {
		return InputList{}, err
	}

	var list InputList
	seenMaterials := false
	for _, e := range entries {
		switch {
		case !e.ok:
			log.Warn("invalid line in file list", "line", e.line, "text", e.text)
			continue
		case e.value == "":
			log.Warn("empty path in file list", "line", e.line, "key", e.key)
			continue
		}

		switch e.key {
		case "input":
			list.Inputs = append(list.Inputs, filepath.Clean(e.value))
		case "materials":
			if seenMaterials {
				return InputList{}, errors.Wrapf(ErrMaterials, "line %d: duplicate entry", e.line)
			}
			seenMaterials = true
			list.Materials = filepath.Clean(e.value)
		default:
			log.Warn("unknown key in file list", "line", e.line, "key", e.key)
		}
	}

	if !seenMaterials {
		return InputList{}, errors.Wrap(ErrMaterials, "missing entry")
	}
	return list, nil
}

// ParseCompileFile reads a compile file from path.
func ParseCompileFile(path string) (CompileFile, error) {
	f, err := open(path)
	if err != nil {
		return CompileFile{}, err
	}
	defer f.Close()

	cf, err := ReadCompileFile(f)
	if err != nil {
		return CompileFile{}, errors.Wrapf(err, "filelist: read %s", path)
	}
	return cf, nil
}

// ReadCompileFile parses qc= (repeatable), game=, studiomdl= and qcfolder=
// lines. Later single-valued entries replace earlier ones; anything else is
// ignored.
func ReadCompileFile(r io.Reader) (CompileFile, error) {
	entries, err := scanEntries(r)
	if err != nil {
		return CompileFile{}, err
	}

	var cf CompileFile
	for _, e := range entries {
		if !e.ok {
			continue
		}
		switch e.key {
		case "qc":
			cf.QC = append(cf.QC, e.value)
		case "game":
			cf.Game = e.value
		case "studiomdl":
			cf.Studiomdl = e.value
		case "qcfolder":
			cf.QCFolder = e.value
		}
	}
	return cf, nil
}

var (
	inputRe  = regexp.MustCompile(`input\s*=\s*"([^"]+)"`)
	outputRe = regexp.MustCompile(`output\s*=\s*"([^"]+)"`)
)

// ParseIOList reads a conversion list from path.
func ParseIOList(path string, log *slog.Logger) ([]IOPair, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pairs, err := ReadIOList(f, log)
	if err != nil {
		return nil, errors.Wrapf(err, "filelist: read %s", path)
	}
	return pairs, nil
}

// ReadIOList parses lines of the form input="..." output="...". The output
// defaults to the input folder. Lines without an input are logged and
// skipped.
func ReadIOList(r io.Reader, log *slog.Logger) ([]IOPair, error) {
	log = logx.Or(log)
	entries, err := scanEntries(r)
	if err != nil {
		return nil, err
	}

	var pairs []IOPair
	for _, e := range entries {
		in := inputRe.FindStringSubmatch(e.text)
		if in == nil {
			log.Warn("skipping line without input", "line", e.line, "text", e.text)
			continue
		}
		p := IOPair{Input: in[1], Output: in[1]}
		if out := outputRe.FindStringSubmatch(e.text); out != nil {
			p.Output = out[1]
		}
		pairs = append(pairs, p)
	}
	return pairs, nil
}
