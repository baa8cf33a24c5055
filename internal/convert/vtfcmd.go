// Package convert drives the external VTFCmd texture converter. It picks
// format flags per file suffix and probes source headers so problems can be
// reported before the converter runs.
package convert

import (
	"bufio"
	"bytes"
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"

	"lambdaconstruct/internal/logx"
)

// DefaultExtensions are the source formats VTFCmd accepts.
var DefaultExtensions = []string{".tga", ".png", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff", ".dds"}

// Converter runs VTFCmd once per source image.
type Converter struct {
	VTFCmd     string
	Rules      Rules
	Extensions []string // nil means DefaultExtensions
	DryRun     bool     // log the command line instead of running it
	Logger     *slog.Logger
}

// Result holds the outcome of converting one file.
type Result struct {
	Source   string        `json:"source"`
	Output   string        `json:"output"`
	Rule     string        `json:"rule"`
	Args     []string      `json:"args"`
	Success  bool          `json:"success"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Run converts src into outDir.
func (c *Converter) Run(ctx context.Context, src, outDir string) Result {
	log := logx.Or(c.Logger).With("tool", "vtfcmd", "file", src)
	start := time.Now()
	res := Result{Source: src, Output: outDir}
	fail := func(err error) Result {
		res.Error = err.Error()
		res.Duration = time.Since(start)
		log.Error("conversion failed", "error", err)
		return res
	}

	if _, err := os.Stat(src); err != nil {
		return fail(errors.Wrap(err, "convert: input"))
	}

	rule, name, err := c.Rules.For(src)
	if err != nil {
		return fail(err)
	}
	res.Rule = name
	res.Args = Args(rule, src, outDir)

	c.inspect(src, rule, log)

	if c.DryRun {
		log.Info("dry run", "cmd", c.VTFCmd+" "+strings.Join(res.Args, " "))
		res.Success = true
		res.Duration = time.Since(start)
		return res
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fail(errors.Wrapf(err, "convert: create %s", outDir))
	}

	out, err := exec.CommandContext(ctx, c.VTFCmd, res.Args...).CombinedOutput()
	logLines(log, out)
	if err != nil {
		return fail(errors.Wrapf(err, "convert: %s", filepath.Base(src)))
	}

	res.Success = true
	res.Duration = time.Since(start)
	log.Info("converted", "rule", name, "elapsed", res.Duration.Round(time.Millisecond))
	return res
}

// inspect warns about sources the chosen rule is likely to mangle.
func (c *Converter) inspect(src string, rule Rule, log *slog.Logger) {
	info, err := Probe(src)
	if err != nil {
		log.Debug("header not probed", "error", err)
		return
	}
	if info.Mismatch {
		log.Warn("file content does not match its extension", "format", info.Format)
	}
	if !info.PowerOfTwo {
		log.Warn("dimensions are not powers of two", "width", info.Width, "height", info.Height)
	}
	if info.Alpha && rule.AlphaFormat == "" {
		log.Warn("source has alpha but the rule sets no alpha format", "format", rule.Format)
	}
}

// ConvertDir converts every supported file directly inside inDir (not
// recursively) into outDir. It fails only when inDir cannot be read.
func (c *Converter) ConvertDir(ctx context.Context, inDir, outDir string) ([]Result, error) {
	entries, err := os.ReadDir(inDir)
	if err != nil {
		return nil, errors.Wrapf(err, "convert: read %s", inDir)
	}

	exts := c.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}

	var results []Result
	for _, e := range entries {
		if e.IsDir() || !hasExt(e.Name(), exts) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return results, err
		}
		results = append(results, c.Run(ctx, filepath.Join(inDir, e.Name()), outDir))
	}
	return results, nil
}

func hasExt(name string, exts []string) bool {
	ext := filepath.Ext(name)
	for _, e := range exts {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}

func logLines(log *slog.Logger, out []byte) {
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			log.Info(line)
		}
	}
}
