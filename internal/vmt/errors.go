package vmt

import "github.com/pkg/errors"

var (
	// ErrTemplateNotFound indicates that neither a suffix template nor the default template exists.
	ErrTemplateNotFound = errors.New("template not found")
)
