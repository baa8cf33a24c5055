package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"lambdaconstruct/internal/batch"
	"lambdaconstruct/internal/config"
	"lambdaconstruct/internal/filelist"
	"lambdaconstruct/internal/logx"
	"lambdaconstruct/internal/resolve"
	"lambdaconstruct/internal/vmt"
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
	var inputs multiFlag
	flag.Var(&inputs, "i", "Folder or .qc file to scan (repeatable)")
	configFile := flag.String("config", "", "Path to config file (.json, .yaml or .toml; default: auto-detect)")
	listFile := flag.String("filelist", "", "File list with input= and materials= lines")
	materials := flag.String("materials", "", "Path to the mod's materials folder")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	cutoff := flag.Float64("cutoff", 0, "Minimum similarity for a texture group (default: 0.6)")
	similarity := flag.String("similarity", "", "Similarity metric: "+strings.Join(resolve.MetricNames(), ", "))
	manifest := flag.String("manifest", "", "Write a JSON manifest of the run to this path")
	logLevel := flag.String("log-level", "", "debug, info, warn or error")
	initConfig := flag.String("init-config", "", "Write the default config to this path and exit")

	flag.Parse()

	if *initConfig != "" {
		if err := config.Default().Save(*initConfig); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Config written: %s\n", *initConfig)
		return
	}

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

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		MaterialsRoot: *materials,
		Inputs:        inputs,
		Workers:       *workers,
		Cutoff:        *cutoff,
		Similarity:    *similarity,
		LogLevel:      *logLevel,
	})

	log := logx.New(os.Stderr, cfg.LogLevel)

	// The file list adds inputs and replaces the materials root
	if *listFile != "" {
		list, err := filelist.ParseInputList(*listFile, log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading file list: %v\n", err)
			os.Exit(1)
		}
		cfg.Inputs = append(cfg.Inputs, list.Inputs...)
		cfg.MaterialsRoot = list.Materials
	}

	if len(cfg.Inputs) == 0 || cfg.MaterialsRoot == "" {
		fmt.Fprintln(os.Stderr, "Error: provide at least one -i and -materials, or use -filelist.")
		flag.Usage()
		os.Exit(2)
	}

	metric, err := resolve.MetricByName(cfg.Similarity)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	rules := resolve.NewSuffixRules(cfg.SuffixMappings)

	fmt.Printf("Materials: %s\n", cfg.MaterialsRoot)
	fmt.Printf("Inputs: %d, Rules: %d, Cutoff: %.2f (%s), Workers: %d\n",
		len(cfg.Inputs), len(rules), cfg.FuzzyCutoff, cfg.Similarity, cfg.Workers)
	fmt.Println("------------------------------------------------------------")

	// Run batch
	report, err := batch.Run(batch.Config{
		MaterialsRoot: cfg.MaterialsRoot,
		Inputs:        cfg.Inputs,
		Resolver:      &resolve.Resolver{Rules: rules, Cutoff: cfg.FuzzyCutoff, Metric: metric},
		Templates:     vmt.NewSelector(cfg.MaterialSuffixTemplates, cfg.TemplatePath),
		OutputExt:     cfg.OutputExtension,
		TextureExts:   cfg.TextureExtensions,
		ModelExts:     cfg.ModelExtensions,
		Workers:       cfg.Workers,
		Logger:        log,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", report.Elapsed.Seconds())
	fmt.Printf("Descriptors: %d, Meshes: %d, Materials: %d, Paths: %d\n",
		report.Descriptors, report.MeshFiles, len(report.Materials), len(report.CDMaterials))

	written := report.Count(batch.StatusWritten)
	skipped := report.Count(batch.StatusSkipped)
	failed := report.Count(batch.StatusFailed)
	fmt.Printf("Written: %d/%d, Skipped: %d\n", written, len(report.Results), skipped)

	var problems []batch.Result
	unmatched := 0
	for _, r := range report.Results {
		if r.Status != batch.StatusWritten {
			problems = append(problems, r)
		} else if r.Group == "" {
			unmatched++
		}
	}
	if unmatched > 0 {
		fmt.Printf("Written without textures: %d\n", unmatched)
	}

	if len(problems) > 0 {
		fmt.Printf("\nNot written (%d):\n", len(problems))
		limit := 20
		if len(problems) < limit {
			limit = len(problems)
		}
		for _, p := range problems[:limit] {
			fmt.Printf("  [%s] %s: %s\n", p.Status, p.Material, p.Error)
		}
	}

	// Write manifest
	if *manifest != "" {
		if err := batch.WriteManifest(*manifest, report); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
		} else {
			fmt.Printf("Manifest: %s\n", *manifest)
		}
	}

	if failed > 0 {
		os.Exit(1)
	}
}
