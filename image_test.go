package seamcarve

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatFromPath(t *testing.T) {
	assert := assert.New(t)

	for path, want := range map[string]Format{
		"out":           JPEG,
		"out.jpg":       JPEG,
		"out.JPEG":      JPEG,
		"dir/out.png":   PNG,
		"out.bmp":       BMP,
		"/tmp/anim.gif": GIF,
	} {
		got, err := FormatFromPath(path)
		assert.NoError(err, path)
		assert.Equal(want, got, path)
	}

	_, err := FormatFromPath("out.tiff")
	assert.True(IsKind(err, InvalidParameter))
	assert.Equal("image/png", PNG.ContentType())
}

func TestEncodeDecode_Lossless(t *testing.T) {
	src := randomRaster(41, 9, 7, 3)

	for _, format := range []Format{PNG, BMP} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, src, format, 0))

			out, err := Decode(&buf)
			require.NoError(t, err)
			assert.Equal(t, 4, out.Channels)
			assert.True(t, FromImage(src.ToNRGBA()).Equal(out))
		})
	}
}

func TestEncodeDecode_Lossy(t *testing.T) {
	src := randomRaster(42, 9, 7, 4)

	for _, format := range []Format{JPEG, GIF} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, src, format, 80))

			out, err := Decode(&buf)
			require.NoError(t, err)
			assert.Equal(t, src.Width, out.Width)
			assert.Equal(t, src.Height, out.Height)
		})
	}
}

func TestEncode_Errors(t *testing.T) {
	assert := assert.New(t)

	var buf bytes.Buffer
	assert.True(IsKind(Encode(&buf, nil, PNG, 0), DecodeFailure))
	assert.True(IsKind(Encode(&buf, NewRaster(2, 2, 1), "webp", 0), InvalidParameter))
}

func TestDecode_Garbage(t *testing.T) {
	_, err := Decode(strings.NewReader("definitely not an image"))
	assert.True(t, IsKind(err, DecodeFailure))
}

func TestSaveOpen(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()
	src := randomRaster(43, 6, 5, 4)

	path := filepath.Join(dir, "out.png")
	require.NoError(t, Save(path, src, 0))

	out, err := Open(path)
	require.NoError(t, err)
	assert.True(src.Equal(out))

	text := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(text, []byte("hello"), 0o644))
	_, err = Open(text)
	assert.True(IsKind(err, DecodeFailure))

	_, err = Open(filepath.Join(dir, "missing.png"))
	assert.True(IsKind(err, DecodeFailure))

	assert.True(IsKind(Save(filepath.Join(dir, "out.tiff"), src, 0), InvalidParameter))
}
