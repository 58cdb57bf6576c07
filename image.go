package seamcarve

import (
	"fmt"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/seamcarve/seamcarve/utils"
	"golang.org/x/image/bmp"
)

// DefaultQuality is the JPEG quality used when none is given.
const DefaultQuality = 100

// Format is an encodable image format.
type Format string

const (
	JPEG Format = "jpeg"
	PNG  Format = "png"
	BMP  Format = "bmp"
	GIF  Format = "gif"
)

// FormatFromPath returns the format matching the file extension.
// Paths without an extension default to JPEG.
func FormatFromPath(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case "", ".jpg", ".jpeg":
		return JPEG, nil
	case ".png":
		return PNG, nil
	case ".bmp":
		return BMP, nil
	case ".gif":
		return GIF, nil
	default:
		return "", newError(InvalidParameter, "unsupported image format %q", ext)
	}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	return "image/" + string(f)
}

// Decode reads an image and converts it to a 4 channel raster.
// EXIF orientation is applied. Undecodable input is a DecodeFailure.
func Decode(r io.Reader) (*Raster, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, wrapError(DecodeFailure, err, "could not decode the image")
	}
	out := FromImage(img)
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// Open decodes the image file at path after checking its content type.
func Open(path string) (*Raster, error) {
	ctype, err := utils.DetectContentType(path)
	if err != nil {
		return nil, wrapError(DecodeFailure, err, "could not open %s", path)
	}
	if !strings.Contains(ctype, "image") {
		return nil, newError(DecodeFailure, "%s is not an image file (%s)", path, ctype)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, wrapError(DecodeFailure, err, "could not open %s", path)
	}
	defer f.Close()

	return Decode(f)
}

// Encode writes the raster in the given format. quality only applies to
// JPEG; values outside 1..100 select DefaultQuality.
func Encode(w io.Writer, r *Raster, format Format, quality int) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if quality < 1 || quality > 100 {
		quality = DefaultQuality
	}

	img := r.ToNRGBA()
	var err error
	switch format {
	case JPEG, "":
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
	case PNG:
		err = png.Encode(w, img)
	case BMP:
		err = bmp.Encode(w, img)
	case GIF:
		err = gif.Encode(w, img, nil)
	default:
		return newError(InvalidParameter, "unsupported image format %q", string(format))
	}
	if err != nil {
		return fmt.Errorf("could not encode the image: %w", err)
	}
	return nil
}

// Save encodes the raster to the file at path, choosing the format from its extension.
func Save(path string, r *Raster, quality int) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create the output file: %w", err)
	}
	if err := Encode(f, r, format, quality); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
