package batch

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// ValidateMaterialsRoot checks that path names a directory called
// "materials" whose parent is not called "game". The name checks run before
// the filesystem is touched.
func ValidateMaterialsRoot(path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.Wrap(ErrInvalidMaterialsRoot, "empty path")
	}
	clean := filepath.Clean(path)

	if base := filepath.Base(clean); !strings.EqualFold(base, "materials") {
		return errors.Wrapf(ErrInvalidMaterialsRoot, "%s: folder must be named materials, got %q", path, base)
	}
	if parent := filepath.Base(filepath.Dir(clean)); strings.EqualFold(parent, "game") {
		return errors.Wrapf(ErrInvalidMaterialsRoot, "%s: refusing to write into the game folder", path)
	}

	info, err := os.Stat(clean)
	if err != nil {
		return errors.Wrapf(ErrInvalidMaterialsRoot, "%s: %v", path, err)
	}
	if !info.IsDir() {
		return errors.Wrapf(ErrInvalidMaterialsRoot, "%s: not a directory", path)
	}
	return nil
}
