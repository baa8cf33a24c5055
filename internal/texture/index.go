package texture

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultExtensions lists the compiled texture formats indexed when none are configured.
var DefaultExtensions = []string{".vtf"}

// Asset is one texture file below the materials root.
type Asset struct {
	Name string `json:"name"` // lowercase stem, e.g. "ak47_body_color"
	Path string `json:"path"` // relative to the materials root, forward slashes, extension kept
}

// Group returns the asset name without its trailing "_token".
// Names without an underscore have no group.
func (a Asset) Group() (string, bool) {
	return GroupOf(a.Name)
}

// GroupOf strips the last underscore-delimited token from name
// ("rifle_color" -> "rifle").
func GroupOf(name string) (string, bool) {
	i := strings.LastIndexByte(name, '_')
	if i < 0 {
		return "", false
	}
	return name[:i], true
}

// Collect walks scanDir and returns every file whose extension is in exts,
// with paths made relative to materialsRoot. A missing scanDir yields no assets.
// Results are sorted by name, then path.
func Collect(scanDir, materialsRoot string, exts []string) ([]Asset, error) {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}

	if _, err := os.Stat(scanDir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var assets []Asset
	err := filepath.WalkDir(scanDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if !hasExt(ext, exts) {
			return nil
		}
		rel, err := filepath.Rel(materialsRoot, path)
		if err != nil {
			return nil
		}
		stem := strings.TrimSuffix(filepath.Base(path), ext)
		assets = append(assets, Asset{
			Name: strings.ToLower(stem),
			Path: filepath.ToSlash(rel),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sortAssets(assets)
	return assets, nil
}

func hasExt(ext string, exts []string) bool {
	for _, e := range exts {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}

func sortAssets(assets []Asset) {
	sort.Slice(assets, func(i, j int) bool {
		if assets[i].Name != assets[j].Name {
			return assets[i].Name < assets[j].Name
		}
		return assets[i].Path < assets[j].Path
	})
}

// Index groups the assets of one directory by their name minus the last token.
type Index struct {
	assets []Asset
	groups map[string][]Asset
	names  []string // sorted group names
}

// NewIndex builds an index over assets. The slice is copied and sorted.
func NewIndex(assets []Asset) *Index {
	idx := &Index{
		assets: append([]Asset(nil), assets...),
		groups: make(map[string][]Asset),
	}
	sortAssets(idx.assets)

	for _, a := range idx.assets {
		g, ok := a.Group()
		if !ok {
			continue
		}
		if _, exists := idx.groups[g]; !exists {
			idx.names = append(idx.names, g)
		}
		idx.groups[g] = append(idx.groups[g], a)
	}
	sort.Strings(idx.names)

	return idx
}

// Assets returns all indexed assets in name order.
func (idx *Index) Assets() []Asset {
	return idx.assets
}

// Groups returns the distinct group names in ascending order.
func (idx *Index) Groups() []string {
	return idx.names
}

// Members returns the assets whose group is exactly g.
func (idx *Index) Members(g string) []Asset {
	return idx.groups[g]
}

// Len returns the number of indexed textures.
func (idx *Index) Len() int {
	return len(idx.assets)
}
