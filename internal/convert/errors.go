package convert

import "github.com/pkg/errors"

var (
	// ErrUnsupported is returned by Probe for formats it cannot read.
	ErrUnsupported = errors.New("unsupported image format")

	// ErrNoRule is returned when neither a suffix rule nor a default rule applies.
	ErrNoRule = errors.New("no conversion rule")
)
