package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"lambdaconstruct/internal/config"
	"lambdaconstruct/internal/resolve"
	"lambdaconstruct/internal/smd"
	"lambdaconstruct/internal/texture"
)

func main() {
	materials := flag.String("materials", "", "Materials folder; with -cdmaterials, show texture resolution")
	cdmaterials := flag.String("cdmaterials", "", "Path below -materials whose textures are matched")
	configFile := flag.String("config", "", "Path to config file (default: auto-detect)")
	flag.Parse()

	var resolver *resolve.Resolver
	var index *texture.Index
	if *materials != "" && *cdmaterials != "" {
		var cfg config.Config
		path := *configFile
		if path == "" {
			path = config.DetectPath()
		}
		if path != "" {
			var err error
			if cfg, err = config.Load(path); err != nil {
				fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
				os.Exit(1)
			}
		}
		cfg.Resolve(config.Flags{MaterialsRoot: *materials})

		metric, err := resolve.MetricByName(cfg.Similarity)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		resolver = &resolve.Resolver{
			Rules:  resolve.NewSuffixRules(cfg.SuffixMappings),
			Cutoff: cfg.FuzzyCutoff,
			Metric: metric,
		}

		scan := filepath.Join(cfg.MaterialsRoot, filepath.FromSlash(*cdmaterials))
		assets, err := texture.Collect(scan, cfg.MaterialsRoot, cfg.TextureExtensions)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error indexing %s: %v\n", scan, err)
			os.Exit(1)
		}
		index = texture.NewIndex(assets)
		fmt.Printf("Textures: %d in %d groups under %s\n", index.Len(), len(index.Groups()), scan)
	}

	for _, arg := range flag.Args() {
		mesh, err := smd.ParseFile(arg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Parse error %s: %v\n", arg, err)
			continue
		}
		fmt.Printf("\n=== %s (nodes=%d materials=%d issues=%d) ===\n",
			arg, len(mesh.Nodes), len(mesh.Materials), len(mesh.Issues))

		fmt.Println("--- NODES ---")
		for _, n := range mesh.Nodes {
			fmt.Printf("  [%d] %q parent=%d\n", n.ID, n.Name, n.Parent)
		}

		fmt.Println("--- MATERIALS ---")
		for _, m := range mesh.Materials {
			if resolver == nil {
				fmt.Printf("  %s\n", m)
				continue
			}
			match := resolver.ResolveIndex(m, index)
			group := "NO MATCH"
			if match.Matched() {
				group = match.Group
			}
			fmt.Printf("  %s -> %s (score %.3f)\n", m, group, match.Score)
			for _, k := range match.Keys() {
				fmt.Printf("      %-24s %s\n", k, match.Textures[k])
			}
		}

		if len(mesh.Issues) > 0 {
			fmt.Println("--- ISSUES ---")
			for _, is := range mesh.Issues {
				fmt.Printf("  line %d: %s (%s)\n", is.Line, strings.TrimSpace(is.Text), is.Reason)
			}
		}
	}
}
