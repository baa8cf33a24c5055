package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"lambdaconstruct/internal/config"
	"lambdaconstruct/internal/convert"
	"lambdaconstruct/internal/filelist"
	"lambdaconstruct/internal/logx"
)

func main() {
	// CLI flags
	input := flag.String("input", "", "Folder containing source images")
	output := flag.String("output", "", "Output folder for VTF files (default: input folder)")
	vtfcmd := flag.String("vtfcmd", "", "Path to VTFCmd (overrides config)")
	listFile := flag.String("list", "", `Text file with input="..." output="..." lines`)
	configFile := flag.String("config", "", "Path to config file (default: auto-detect)")
	extra := flag.String("flags", "", "Extra VTFCmd flags appended to every rule, e.g. \"-resize\"")
	dryRun := flag.Bool("dry-run", false, "Print the commands instead of running VTFCmd")
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
	cfg.Resolve(config.Flags{VTFCmdPath: *vtfcmd, LogLevel: *logLevel})
	log := logx.New(os.Stderr, cfg.LogLevel)

	extraFlags, err := convert.ParseFlags(*extra)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	rules := make(convert.Rules, len(cfg.Converter.Rules))
	for suffix, r := range cfg.Converter.Rules {
		rules[suffix] = convert.Rule{
			Format:      r.Format,
			AlphaFormat: r.AlphaFormat,
			ExtraFlags:  append(append([]string(nil), r.ExtraFlags...), extraFlags...),
		}
	}

	// Folder pairs
	var pairs []filelist.IOPair
	switch {
	case *listFile != "":
		pairs, err = filelist.ParseIOList(*listFile, log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading list: %v\n", err)
			os.Exit(1)
		}
	case *input != "":
		out := *output
		if out == "" {
			out = *input
		}
		pairs = []filelist.IOPair{{Input: *input, Output: out}}
	default:
		fmt.Fprintln(os.Stderr, "Error: no input folder specified. Use -input or -list.")
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	conv := &convert.Converter{
		VTFCmd:     cfg.Converter.VTFCmdPath,
		Rules:      rules,
		Extensions: cfg.Converter.Extensions,
		DryRun:     *dryRun,
		Logger:     log,
	}

	total, converted, failed := 0, 0, 0
	for _, p := range pairs {
		fmt.Printf("Input: %s -> %s\n", p.Input, p.Output)
		results, err := conv.ConvertDir(ctx, p.Input, p.Output)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  Error: %v\n", err)
			failed++
			continue
		}
		for _, r := range results {
			total++
			if r.Success {
				converted++
				fmt.Printf("  [ok] %s (%s)\n", r.Source, r.Rule)
			} else {
				failed++
				fmt.Printf("  [failed] %s: %s\n", r.Source, r.Error)
			}
		}
	}

	fmt.Printf("Converted: %d/%d\n", converted, total)
	if failed > 0 {
		os.Exit(1)
	}
}
