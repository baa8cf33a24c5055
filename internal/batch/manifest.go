package batch

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Manifest summarises a run for tooling that post-processes the output.
type Manifest struct {
	MaterialsRoot string          `json:"materials_root"`
	Written       int             `json:"written"`
	Skipped       int             `json:"skipped"`
	Failed        int             `json:"failed"`
	Entries       []ManifestEntry `json:"entries"`
}

// ManifestEntry represents one generated material in the manifest.
type ManifestEntry struct {
	Material    string            `json:"material"`
	CDMaterials string            `json:"cdmaterials"`
	VMT         string            `json:"vmt"` // relative to the materials root
	Template    string            `json:"template,omitempty"`
	Group       string            `json:"group,omitempty"`
	Score       float64           `json:"score"`
	Textures    map[string]string `json:"textures,omitempty"`
	Status      Status            `json:"status"`
	Error       string            `json:"error,omitempty"`
}

// NewManifest builds the manifest of a report.
func NewManifest(r *Report) Manifest {
	m := Manifest{
		MaterialsRoot: filepath.ToSlash(r.MaterialsRoot),
		Written:       r.Count(StatusWritten),
		Skipped:       r.Count(StatusSkipped),
		Failed:        r.Count(StatusFailed),
		Entries:       make([]ManifestEntry, len(r.Results)),
	}
	for i, res := range r.Results {
		rel := res.Output
		if p, err := filepath.Rel(r.MaterialsRoot, res.Output); err == nil {
			rel = p
		}
		m.Entries[i] = ManifestEntry{
			Material:    res.Material,
			CDMaterials: res.CDMaterials,
			VMT:         filepath.ToSlash(rel),
			Template:    filepath.ToSlash(res.Template),
			Group:       res.Group,
			Score:       res.Score,
			Textures:    res.Textures,
			Status:      res.Status,
			Error:       res.Error,
		}
	}
	return m
}

// WriteManifest writes the report's manifest as indented JSON to path.
func WriteManifest(path string, r *Report) error {
	data, err := json.MarshalIndent(NewManifest(r), "", "  ")
	if err != nil {
		return errors.Wrap(err, "batch: encode manifest")
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return errors.Wrapf(err, "batch: write manifest %s", path)
	}
	return nil
}
