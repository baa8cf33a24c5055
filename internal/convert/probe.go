package convert

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"github.com/h2non/filetype"
	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// sniffLen is enough for every signature filetype knows about.
const sniffLen = 262

// Info describes a source image without decoding its pixels.
type Info struct {
	Path       string `json:"path"`
	Format     string `json:"format"` // tga, png, jpg, bmp or tif
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Alpha      bool   `json:"alpha"` // color model carries straight alpha
	PowerOfTwo bool   `json:"power_of_two"`
	Mismatch   bool   `json:"mismatch"` // content does not match the extension
}

type configDecoder func(io.Reader) (image.Config, error)

var decoders = map[string]configDecoder{
	"tga": tga.DecodeConfig,
	"png": png.DecodeConfig,
	"jpg": jpeg.DecodeConfig,
	"bmp": bmp.DecodeConfig,
	"tif": tiff.DecodeConfig,
}

// formatOf maps a file extension to a decoder key.
func formatOf(ext string) string {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "tga":
		return "tga"
	case "png":
		return "png"
	case "jpg", "jpeg":
		return "jpg"
	case "bmp":
		return "bmp"
	case "tif", "tiff":
		return "tif"
	}
	return ""
}

// Probe reads the header of a source image. The content is sniffed first;
// formats without a signature (TGA) fall back to the extension. DDS files
// are passed to the converter untouched and are reported as unsupported.
func Probe(path string) (Info, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Info{}, errors.Wrapf(err, "convert: read %s", path)
	}

	byExt := formatOf(filepath.Ext(path))
	format := byExt

	head := raw
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	kind, _ := filetype.Match(head)
	sniffed := ""
	if kind != filetype.Unknown {
		sniffed = formatOf(kind.Extension)
		if sniffed == "" {
			return Info{}, errors.Wrapf(ErrUnsupported, "%s: content is %s", path, kind.MIME.Value)
		}
		format = sniffed
	}

	decode, ok := decoders[format]
	if !ok {
		return Info{}, errors.Wrapf(ErrUnsupported, "%s", path)
	}

	cfg, err := decode(bytes.NewReader(raw))
	if err != nil {
		return Info{}, errors.Wrapf(err, "convert: decode %s header", path)
	}

	return Info{
		Path:       path,
		Format:     format,
		Width:      cfg.Width,
		Height:     cfg.Height,
		Alpha:      hasAlpha(cfg.ColorModel),
		PowerOfTwo: isPowerOfTwo(cfg.Width) && isPowerOfTwo(cfg.Height),
		Mismatch:   sniffed != "" && sniffed != byExt,
	}, nil
}

func hasAlpha(m color.Model) bool {
	switch m {
	case color.NRGBAModel, color.NRGBA64Model, color.AlphaModel, color.Alpha16Model:
		return true
	}
	if p, ok := m.(color.Palette); ok {
		for _, c := range p {
			if _, _, _, a := c.RGBA(); a != 0xffff {
				return true
			}
		}
	}
	return false
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
