// Package qc reads and writes QC model descriptors: the studiomdl scripts
// that name the meshes of a model and the material directory it uses.
package qc

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"lambdaconstruct/internal/logx"
)

// DefaultExtensions lists the descriptor extensions scanned when none are configured.
var DefaultExtensions = []string{".qc"}

var cdmaterialsRe = regexp.MustCompile(`(?i)\$cdmaterials\s+"([^"]+)"`)

// meshPatterns capture SMD references from $model, $body and $bodygroup studio lines.
var meshPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\$model\s+\S+\s+"([^"]+\.smd)"`),
	regexp.MustCompile(`(?i)\$body\s+\S+\s+"([^"]+\.smd)"`),
	regexp.MustCompile(`(?i)studio\s+"([^"]+\.smd)"`),
}

// NormalizeCDMaterials converts a $cdmaterials argument to forward slashes
// without a trailing slash.
func NormalizeCDMaterials(p string) string {
	p = strings.TrimSpace(strings.ReplaceAll(p, "\\", "/"))
	return strings.TrimRight(p, "/")
}

// ScanFile extracts $cdmaterials paths and SMD references from one QC file.
// SMD paths are resolved against the QC file's directory.
func ScanFile(path string) (Descriptor, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Descriptor{}, err
	}
	content := string(raw)

	d := Descriptor{Path: path}
	for _, m := range cdmaterialsRe.FindAllStringSubmatch(content, -1) {
		d.CDMaterials = appendUnique(d.CDMaterials, NormalizeCDMaterials(m[1]))
	}

	dir := filepath.Dir(path)
	for _, re := range meshPatterns {
		for _, m := range re.FindAllStringSubmatch(content, -1) {
			rel := filepath.FromSlash(strings.ReplaceAll(strings.TrimSpace(m[1]), "\\", "/"))
			abs, err := filepath.Abs(filepath.Join(dir, rel))
			if err != nil {
				continue
			}
			d.Meshes = appendUnique(d.Meshes, abs)
		}
	}

	return d, nil
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}

// Scan walks every root (a directory, or a single descriptor file) and
// merges the descriptors found. Unreadable files are logged and skipped.
func Scan(roots []string, exts []string, log *slog.Logger) Result {
	log = logx.Or(log)
	if len(exts) == 0 {
		exts = DefaultExtensions
	}

	cd := make(map[string]struct{})
	meshes := make(map[string]struct{})
	var res Result

	visit := func(path string) {
		d, err := ScanFile(path)
		if err != nil {
			log.Warn("skipping unreadable descriptor", "file", path, "error", err)
			res.Skipped++
			return
		}
		res.Files++
		for _, c := range d.CDMaterials {
			cd[c] = struct{}{}
		}
		for _, m := range d.Meshes {
			meshes[m] = struct{}{}
		}
	}

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			log.Warn("skipping input", "path", root, "error", err)
			continue
		}
		if !info.IsDir() {
			if hasExt(root, exts) {
				visit(root)
			}
			continue
		}
		filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				log.Warn("skipping path", "path", path, "error", err)
				return nil
			}
			if d.IsDir() || !hasExt(path, exts) {
				return nil
			}
			visit(path)
			return nil
		})
	}

	res.CDMaterials = sortedKeys(cd)
	res.Meshes = sortedKeys(meshes)
	return res
}

// FindFiles returns all descriptors under dir in walk order.
func FindFiles(dir string, exts []string) ([]string, error) {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	var out []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && hasExt(path, exts) {
			out = append(out, path)
		}
		return nil
	})
	return out, err
}

func hasExt(path string, exts []string) bool {
	ext := filepath.Ext(path)
	for _, e := range exts {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
