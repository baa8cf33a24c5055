package qc

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// DefaultScale is the $scale written when none is given.
const DefaultScale = 41.0

// GenerateOptions controls QC generation.
type GenerateOptions struct {
	ParentDir   string  // searched recursively for folders containing .smd files
	ModelDir    string  // $modelname prefix, e.g. "weapons/custom"
	MaterialDir string  // $cdmaterials prefix, e.g. "models/weapons/custom"
	Scale       float64 // 0 means DefaultScale
}

// Generate writes one <folder>.qc into every directory below ParentDir that
// directly contains .smd files. The first mesh (by name) becomes the default
// sequence. It returns the written paths in sorted order.
func Generate(opts GenerateOptions) ([]string, error) {
	if opts.Scale == 0 {
		opts.Scale = DefaultScale
	}

	folders := make(map[string][]string)
	err := filepath.WalkDir(opts.ParentDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(p), ".smd") {
			return nil
		}
		dir := filepath.Dir(p)
		folders[dir] = append(folders[dir], strings.TrimSuffix(d.Name(), filepath.Ext(d.Name())))
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "qc: scan %s", opts.ParentDir)
	}

	dirs := make([]string, 0, len(folders))
	for dir := range folders {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	var written []string
	for _, dir := range dirs {
		names := folders[dir]
		sort.Strings(names)

		folder := filepath.Base(dir)
		content := Render(folder, names, opts)

		out := filepath.Join(dir, folder+".qc")
		if err := os.WriteFile(out, []byte(content), 0644); err != nil {
			return written, errors.Wrapf(err, "qc: write %s", out)
		}
		written = append(written, out)
	}

	return written, nil
}

// Render returns the QC text for a model named folder built from the given
// mesh names (without extension). Lines end in LF.
func Render(folder string, meshes []string, opts GenerateOptions) string {
	scale := opts.Scale
	if scale == 0 {
		scale = DefaultScale
	}
	modelName := slashJoin(opts.ModelDir, folder) + ".mdl"
	cdmaterials := slashJoin(opts.MaterialDir, folder)

	var b strings.Builder
	fmt.Fprintf(&b, "$modelname %q\n", modelName)
	fmt.Fprintf(&b, "$cdmaterials %q\n", cdmaterials)
	fmt.Fprintf(&b, "$scale %s\n\n", strconv.FormatFloat(scale, 'g', -1, 64))
	for _, m := range meshes {
		fmt.Fprintf(&b, "$model %q %q\n", m, m+".smd")
	}
	if len(meshes) > 0 {
		fmt.Fprintf(&b, "$sequence %q {\n\t%q\n}\n", meshes[0], meshes[0]+".smd")
	}
	b.WriteString("\n$mostlyopaque\n")
	return b.String()
}

func slashJoin(prefix, name string) string {
	prefix = NormalizeCDMaterials(prefix)
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}
