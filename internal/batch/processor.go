// Package batch wires the scanner, parser, resolver and template engine into
// one material generation run.
package batch

import (
	"log/slog"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"lambdaconstruct/internal/logx"
	"lambdaconstruct/internal/qc"
	"lambdaconstruct/internal/resolve"
	"lambdaconstruct/internal/smd"
	"lambdaconstruct/internal/texture"
	"lambdaconstruct/internal/vmt"
)

// Config holds all shared resources for a batch run.
type Config struct {
	MaterialsRoot string
	Inputs        []string // directories or single descriptor files
	Resolver      *resolve.Resolver
	Templates     *vmt.Selector
	OutputExt     string
	TextureExts   []string
	ModelExts     []string
	Workers       int
	ProgressEvery time.Duration // 0 means every 2 seconds
	Logger        *slog.Logger
}

// Status is the outcome of one job.
type Status string

const (
	StatusWritten Status = "written"
	StatusSkipped Status = "skipped" // no usable template
	StatusFailed  Status = "failed"  // I/O error
)

// Result holds the outcome of generating one material file.
type Result struct {
	Material    string
	CDMaterials string
	Output      string
	Template    string
	Group       string
	Score       float64
	Textures    map[string]string
	Status      Status
	Error       string
}

// Report is the result of a whole run.
type Report struct {
	MaterialsRoot string
	Materials     []string // first-occurrence order across meshes
	CDMaterials   []string
	Descriptors   int
	MeshFiles     int // meshes parsed successfully
	Results       []Result
	Elapsed       time.Duration
}

// Count returns the number of results with status s.
func (r *Report) Count(s Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == s {
			n++
		}
	}
	return n
}

type job struct {
	material    string
	cdmaterials string
	output      string
}

// Run validates the materials root and generates one material file per
// (material, cdmaterials) pair. Only a validation failure is returned as an
// error; per-material problems are recorded on the results.
func Run(cfg Config) (*Report, error) {
	if err := ValidateMaterialsRoot(cfg.MaterialsRoot); err != nil {
		return nil, err
	}

	log := logx.Or(cfg.Logger)
	if cfg.Resolver == nil {
		cfg.Resolver = resolve.New(nil)
	}
	if cfg.Templates == nil {
		cfg.Templates = vmt.NewSelector(nil, "")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}

	start := time.Now()

	scan := qc.Scan(cfg.Inputs, cfg.ModelExts, log)
	log.Info("scanned model descriptors",
		"files", scan.Files, "cdmaterials", len(scan.CDMaterials), "meshes", len(scan.Meshes))

	materials, parsed := collectMaterials(scan.Meshes, log)
	jobs := buildJobs(cfg, materials, scan.CDMaterials)
	log.Info("generating materials", "materials", len(materials), "jobs", len(jobs), "workers", cfg.Workers)

	results := runJobs(cfg, jobs, log)

	report := &Report{
		MaterialsRoot: cfg.MaterialsRoot,
		Materials:     materials,
		CDMaterials:   scan.CDMaterials,
		Descriptors:   scan.Files,
		MeshFiles:     parsed,
		Results:       results,
		Elapsed:       time.Since(start),
	}
	log.Info("batch finished",
		"written", report.Count(StatusWritten),
		"skipped", report.Count(StatusSkipped),
		"failed", report.Count(StatusFailed),
		"elapsed", report.Elapsed.Round(time.Millisecond))
	return report, nil
}

// collectMaterials parses every mesh in order and returns the unique
// material names in first-occurrence order.
func collectMaterials(meshes []string, log *slog.Logger) ([]string, int) {
	seen := make(map[string]bool)
	var materials []string
	parsed := 0

	for _, path := range meshes {
		mesh, err := smd.ParseFile(path)
		if err != nil {
			log.Warn("skipping mesh", "file", path, "error", err)
			continue
		}
		parsed++
		for _, is := range mesh.Issues {
			log.Debug("mesh line skipped", "file", path, "line", is.Line, "reason", is.Reason)
		}
		for _, m := range mesh.Materials {
			if !seen[m] {
				seen[m] = true
				materials = append(materials, m)
			}
		}
	}
	return materials, parsed
}

// buildJobs crosses materials with cdmaterials paths, dropping pairs that
// would write the same output file twice.
func buildJobs(cfg Config, materials, cdmaterials []string) []job {
	seen := make(map[string]bool)
	var jobs []job
	for _, m := range materials {
		for _, cd := range cdmaterials {
			out := vmt.OutputPath(cfg.MaterialsRoot, cd, m, cfg.OutputExt)
			key := m + "\x00" + out
			if seen[key] {
				continue
			}
			seen[key] = true
			jobs = append(jobs, job{material: m, cdmaterials: cd, output: out})
		}
	}
	return jobs
}

// runJobs processes jobs on a worker pool. Results are stored by job index,
// so their order does not depend on scheduling.
func runJobs(cfg Config, jobs []job, log *slog.Logger) []Result {
	total := len(jobs)
	results := make([]Result, total)
	if total == 0 {
		return results
	}

	cache := texture.NewCache(cfg.MaterialsRoot, cfg.TextureExts)
	keys := resolve.Keys(cfg.Resolver.Rules)
	var processed atomic.Int64
	start := time.Now()

	every := cfg.ProgressEvery
	if every <= 0 {
		every = 2 * time.Second
	}

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if p := processed.Load(); p > 0 {
					rate := float64(p) / time.Since(start).Seconds()
					log.Info("progress", "done", p, "total", total, "per_sec", rate)
				}
			}
		}
	}()

	// Worker pool
	jobChan := make(chan int, cfg.Workers*2)
	var wg sync.WaitGroup

	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobChan {
				results[idx] = processJob(cfg, cache, keys, jobs[idx], log)
				processed.Add(1)
			}
		}()
	}

	for i := range jobs {
		jobChan <- i
	}
	close(jobChan)

	wg.Wait()
	close(done)

	return results
}

// processJob writes one material file. keys lists every configured
// placeholder so unresolved ones are blanked in the output.
func processJob(cfg Config, cache *texture.Cache, keys []string, j job, log *slog.Logger) Result {
	res := Result{
		Material:    j.material,
		CDMaterials: j.cdmaterials,
		Output:      j.output,
	}
	fail := func(err error) Result {
		res.Status = StatusFailed
		res.Error = err.Error()
		log.Error("material failed", "material", j.material, "output", j.output, "error", err)
		return res
	}

	idx, err := cache.Index(filepath.Join(cfg.MaterialsRoot, filepath.FromSlash(j.cdmaterials)))
	if err != nil {
		return fail(errors.Wrapf(err, "index textures for %s", j.cdmaterials))
	}

	match := cfg.Resolver.ResolveIndex(j.material, idx)
	res.Group = match.Group
	res.Score = match.Score
	res.Textures = match.Textures
	if !match.Matched() {
		log.Debug("no texture group matched", "material", j.material, "cdmaterials", j.cdmaterials, "best_score", match.Score)
	}

	tpl, err := cfg.Templates.Select(j.material)
	if err != nil {
		res.Status = StatusSkipped
		res.Error = err.Error()
		log.Warn("skipping material", "material", j.material, "error", err)
		return res
	}
	res.Template = tpl

	text, err := vmt.Load(tpl)
	if err != nil {
		return fail(err)
	}

	if _, err := vmt.Write(cfg.MaterialsRoot, j.cdmaterials, j.material, cfg.OutputExt, []byte(vmt.Render(text, match.Textures, keys...))); err != nil {
		return fail(err)
	}

	res.Status = StatusWritten
	log.Debug("wrote material", "material", j.material, "output", j.output, "group", match.Group, "textures", len(match.Textures))
	return res
}
