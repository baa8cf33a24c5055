// Package compile runs the external studiomdl model compiler over QC files.
package compile

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"

	"lambdaconstruct/internal/logx"
	"lambdaconstruct/internal/qc"
)

// ErrNotFound is returned when the compiler, game folder or QC file is missing.
var ErrNotFound = errors.New("not found")

// Compiler holds the settings shared by every compile of a run.
type Compiler struct {
	Studiomdl string
	GameDir   string // folder containing gameinfo.txt
	Verbose   bool
	NoP4      bool
	ExtraArgs []string
	LogDir    string // "" disables per-file logs
	Logger    *slog.Logger
}

// Result holds the outcome of compiling one QC file.
type Result struct {
	QC       string        `json:"qc"`
	Success  bool          `json:"success"`
	ExitCode int           `json:"exit_code"`
	Duration time.Duration `json:"duration"`
	LogPath  string        `json:"log_path,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// Args returns the studiomdl arguments for file.
func (c *Compiler) Args(file string) []string {
	args := []string{"-game", c.GameDir}
	if c.NoP4 {
		args = append(args, "-nop4")
	}
	if c.Verbose {
		args = append(args, "-verbose")
	}
	args = append(args, c.ExtraArgs...)
	return append(args, file)
}

// Check verifies that the compiler and game folder exist.
func (c *Compiler) Check() error {
	if info, err := os.Stat(c.Studiomdl); err != nil || info.IsDir() {
		return errors.Wrapf(ErrNotFound, "studiomdl %q", c.Studiomdl)
	}
	if info, err := os.Stat(c.GameDir); err != nil || !info.IsDir() {
		return errors.Wrapf(ErrNotFound, "game folder %q", c.GameDir)
	}
	return nil
}

// LogPath returns where the output of compiling file is stored, or "".
func (c *Compiler) LogPath(file string) string {
	if c.LogDir == "" {
		return ""
	}
	stem := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	return filepath.Join(c.LogDir, stem+"_compile.log")
}

// Run compiles one QC file. Combined output is logged line by line and
// copied to the per-file log. Success means exit code 0.
func (c *Compiler) Run(ctx context.Context, file string) Result {
	log := logx.Or(c.Logger).With("tool", "studiomdl", "file", file)
	start := time.Now()
	res := Result{QC: file, ExitCode: -1}
	fail := func(err error) Result {
		res.Error = err.Error()
		res.Duration = time.Since(start)
		log.Error("compile failed", "exit_code", res.ExitCode, "error", err)
		return res
	}

	if err := c.Check(); err != nil {
		return fail(err)
	}
	if info, err := os.Stat(file); err != nil || info.IsDir() {
		return fail(errors.Wrapf(ErrNotFound, "qc file %q", file))
	}

	var sink io.Writer = io.Discard
	if res.LogPath = c.LogPath(file); res.LogPath != "" {
		if err := os.MkdirAll(c.LogDir, 0755); err != nil {
			return fail(errors.Wrapf(err, "compile: create %s", c.LogDir))
		}
		f, err := os.Create(res.LogPath)
		if err != nil {
			return fail(errors.Wrapf(err, "compile: create %s", res.LogPath))
		}
		defer f.Close()
		sink = f
	}

	cmd := exec.CommandContext(ctx, c.Studiomdl, c.Args(file)...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fail(err)
	}
	cmd.Stderr = cmd.Stdout

	log.Info("compiling", "log", res.LogPath)
	if err := cmd.Start(); err != nil {
		return fail(errors.Wrap(err, "compile: start"))
	}

	// Read until EOF whatever the line length; an undrained pipe blocks the child.
	rd := bufio.NewReader(stdout)
	for {
		chunk, rerr := rd.ReadString('\n')
		if chunk != "" {
			line := strings.TrimRight(chunk, "\r\n")
			io.WriteString(sink, line+"\n")
			if strings.TrimSpace(line) != "" {
				log.Info(line)
			}
		}
		if rerr != nil {
			if rerr != io.EOF {
				log.Warn("reading compiler output", "error", rerr)
			}
			break
		}
	}

	err = cmd.Wait()
	res.ExitCode = cmd.ProcessState.ExitCode()
	if err != nil {
		return fail(errors.Wrapf(err, "compile: %s", filepath.Base(file)))
	}

	res.Success = true
	res.Duration = time.Since(start)
	log.Info("compile succeeded", "elapsed", res.Duration.Round(time.Millisecond))
	return res
}

// RunAll compiles files in order, stopping early only if ctx is cancelled.
func (c *Compiler) RunAll(ctx context.Context, files []string) []Result {
	results := make([]Result, 0, len(files))
	for _, f := range files {
		if ctx.Err() != nil {
			break
		}
		results = append(results, c.Run(ctx, f))
	}
	return results
}

// FindQC returns every .qc file under dir.
func FindQC(dir string) ([]string, error) {
	files, err := qc.FindFiles(dir, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "compile: scan %s", dir)
	}
	return files, nil
}

// ClearLogs deletes the files directly inside dir and returns how many were
// removed. A missing dir is not an error.
func ClearLogs(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrapf(err, "compile: read %s", dir)
	}
	n := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
			return n, errors.Wrapf(err, "compile: remove %s", e.Name())
		}
		n++
	}
	return n, nil
}
