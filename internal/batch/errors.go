package batch

import "github.com/pkg/errors"

// ErrInvalidMaterialsRoot is returned when the materials root fails validation.
// It is the only error that aborts a run.
var ErrInvalidMaterialsRoot = errors.New("invalid materials root")
