package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/mattn/go-shellwords"

	"lambdaconstruct/internal/compile"
	"lambdaconstruct/internal/config"
	"lambdaconstruct/internal/filelist"
	"lambdaconstruct/internal/logx"
)

// multiFlag collects a flag given several times.
type multiFlag []string

func (m *multiFlag) String() string { return strings.Join(*m, ",") }

func (m *multiFlag) Set(v string) error {
	*m = append(*m, v)
	return nil
}

func main() {
	// CLI flags
	var qcs multiFlag
	flag.Var(&qcs, "qc", "QC file to compile (repeatable)")
	compileFile := flag.String("compile", "", "Compile file with qc=, game=, studiomdl= and qcfolder= lines")
	qcFolder := flag.String("qcfolder", "", "Folder to scan recursively for .qc files")
	game := flag.String("game", "", "Game folder (must contain gameinfo.txt)")
	studiomdl := flag.String("studiomdl", "", "Path to studiomdl")
	logDir := flag.String("logdir", "", "Folder for per-file compile logs (default: logs)")
	noLog := flag.Bool("nolog", false, "Do not write compile logs")
	clearLogs := flag.Bool("clearlogs", false, "Delete existing files in the log folder first")
	configFile := flag.String("config", "", "Path to config file (default: auto-detect)")
	logLevel := flag.String("log-level", "", "debug, info, warn or error")

	flag.Parse()

	// Load config
	var cfg config.Config
	path := *configFile
	if path == "" {
		path = config.DetectPath()
	}
	if path != "" {
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// The compile file sits between the config file and the flags
	folder := *qcFolder
	files := []string(qcs)
	if *compileFile != "" {
		cf, err := filelist.ParseCompileFile(*compileFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading compile file: %v\n", err)
			os.Exit(1)
		}
		files = append(cf.QC, files...)
		if folder == "" {
			folder = cf.QCFolder
		}
		if cf.Game != "" {
			cfg.Compiler.GameDir = cf.Game
		}
		if cf.Studiomdl != "" {
			cfg.Compiler.StudiomdlPath = cf.Studiomdl
		}
	}

	cfg.Resolve(config.Flags{StudiomdlPath: *studiomdl, GameDir: *game, LogLevel: *logLevel})
	if *logDir != "" {
		cfg.Compiler.LogDir = *logDir
	}
	log := logx.New(os.Stderr, cfg.LogLevel)

	if folder != "" {
		found, err := compile.FindQC(folder)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Found %d QC files in %s\n", len(found), folder)
		files = append(files, found...)
	}
	files = dedupe(files)

	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no QC files given. Use -qc, -qcfolder or -compile.")
		flag.Usage()
		os.Exit(2)
	}
	if cfg.Compiler.GameDir == "" || cfg.Compiler.StudiomdlPath == "" {
		fmt.Fprintln(os.Stderr, "Error: missing game folder and/or studiomdl path.")
		os.Exit(2)
	}

	extra, err := shellwords.Parse(cfg.Compiler.ExtraArgs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: extra_args: %v\n", err)
		os.Exit(2)
	}

	comp := &compile.Compiler{
		Studiomdl: cfg.Compiler.StudiomdlPath,
		GameDir:   cfg.Compiler.GameDir,
		Verbose:   !cfg.Compiler.Quiet,
		NoP4:      !cfg.Compiler.UseP4,
		ExtraArgs: extra,
		LogDir:    cfg.Compiler.LogDir,
		Logger:    log,
	}
	if *noLog {
		comp.LogDir = ""
	} else if *clearLogs {
		n, err := compile.ClearLogs(comp.LogDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
		fmt.Printf("Cleared %d log files from %s\n", n, comp.LogDir)
	}
	if err := comp.Check(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("Compiling %d QC files\n", len(files))
	fmt.Println("------------------------------------------------------------")
	start := time.Now()

	results := comp.RunAll(ctx, files)

	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", time.Since(start).Seconds())

	ok := 0
	var failed []compile.Result
	for _, r := range results {
		if r.Success {
			ok++
		} else {
			failed = append(failed, r)
		}
	}
	fmt.Printf("Compiled: %d/%d\n", ok, len(files))
	for _, r := range failed {
		fmt.Printf("  %s (exit code %d): %s\n", r.QC, r.ExitCode, r.Error)
	}

	if len(failed) > 0 || len(results) < len(files) {
		os.Exit(1)
	}
}

func dedupe(files []string) []string {
	seen := make(map[string]bool, len(files))
	out := files[:0]
	for _, f := range files {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}
