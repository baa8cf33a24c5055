package vmt

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// OutputPath returns materialsRoot/cdmaterials/material+ext.
func OutputPath(materialsRoot, cdmaterials, material, ext string) string {
	if ext == "" {
		ext = DefaultExtension
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	dir := filepath.Join(materialsRoot, filepath.FromSlash(cdmaterials))
	return filepath.Join(dir, material+ext)
}

// Write stores content at OutputPath, creating parent directories.
// It returns the path written.
func Write(materialsRoot, cdmaterials, material, ext string, content []byte) (string, error) {
	out := OutputPath(materialsRoot, cdmaterials, material, ext)
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return out, errors.Wrapf(err, "vmt: create directory for %s", out)
	}
	if err := os.WriteFile(out, content, 0644); err != nil {
		return out, errors.Wrapf(err, "vmt: write %s", out)
	}
	return out, nil
}
