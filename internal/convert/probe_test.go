package convert

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func writeBytes(t *testing.T, path string, data []byte) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func pngBytes(t *testing.T, w, h int, translucent bool) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	if translucent {
		img.SetNRGBA(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 128})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// tgaBytes builds an uncompressed 32-bit true-color TGA with a one byte
// image ID.
func tgaBytes(w, h int) []byte {
	var buf bytes.Buffer
	buf.Write([]byte{1, 0, 2, 0, 0, 0, 0, 0, 0, 0, 0, 0})
	binary.Write(&buf, binary.LittleEndian, uint16(w))
	binary.Write(&buf, binary.LittleEndian, uint16(h))
	buf.Write([]byte{32, 0x28})
	buf.WriteByte('x')
	buf.Write(make([]byte, w*h*4))
	return buf.Bytes()
}

func TestProbePNG(t *testing.T) {
	dir := t.TempDir()
	info, err := Probe(writeBytes(t, filepath.Join(dir, "glass_alpha.png"), pngBytes(t, 64, 32, true)))
	require.NoError(t, err)
	assert.Equal(t, "png", info.Format)
	assert.Equal(t, 64, info.Width)
	assert.Equal(t, 32, info.Height)
	assert.True(t, info.Alpha)
	assert.True(t, info.PowerOfTwo)
	assert.False(t, info.Mismatch)

	info, err = Probe(writeBytes(t, filepath.Join(dir, "opaque.png"), pngBytes(t, 16, 16, false)))
	require.NoError(t, err)
	assert.False(t, info.Alpha)
}

func TestProbeJPEG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 30, 20)), nil))

	info, err := Probe(writeBytes(t, filepath.Join(t.TempDir(), "photo.jpeg"), buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, "jpg", info.Format)
	assert.False(t, info.Alpha)
	assert.False(t, info.PowerOfTwo)
}

func TestProbeBMPAndTIFF(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 4))
	dir := t.TempDir()

	var b bytes.Buffer
	require.NoError(t, bmp.Encode(&b, img))
	info, err := Probe(writeBytes(t, filepath.Join(dir, "a.bmp"), b.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, "bmp", info.Format)
	assert.Equal(t, 8, info.Width)

	b.Reset()
	require.NoError(t, tiff.Encode(&b, img, nil))
	info, err = Probe(writeBytes(t, filepath.Join(dir, "a.tiff"), b.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, "tif", info.Format)
	assert.Equal(t, 4, info.Height)
}

func TestProbeTGA(t *testing.T) {
	info, err := Probe(writeBytes(t, filepath.Join(t.TempDir(), "rifle_color.tga"), tgaBytes(4, 2)))
	require.NoError(t, err)
	assert.Equal(t, "tga", info.Format)
	assert.Equal(t, 4, info.Width)
	assert.Equal(t, 2, info.Height)
	assert.True(t, info.PowerOfTwo)
}

func TestProbeMismatch(t *testing.T) {
	info, err := Probe(writeBytes(t, filepath.Join(t.TempDir(), "fake.jpg"), pngBytes(t, 8, 8, false)))
	require.NoError(t, err)
	assert.Equal(t, "png", info.Format)
	assert.True(t, info.Mismatch)
}

func TestProbeUnsupported(t *testing.T) {
	dir := t.TempDir()
	_, err := Probe(writeBytes(t, filepath.Join(dir, "x.dds"), []byte("DDS |\x00\x00\x00")))
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = Probe(filepath.Join(dir, "missing.png"))
	assert.Error(t, err)
}
