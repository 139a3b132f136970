package preview

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
)

// Encode writes img as "webp" (lossless), "tga" or "png".
func Encode(w io.Writer, img image.Image, format string) error {
	var err error
	switch format {
	case "webp":
		err = nativewebp.Encode(w, img, nil)
	case "tga":
		err = tga.Encode(w, img)
	case "png":
		err = png.Encode(w, img)
	default:
		return fmt.Errorf("preview: %q: %w", format, ErrUnknownFormat)
	}
	if err != nil {
		return fmt.Errorf("preview: encode %s: %w", format, err)
	}
	return nil
}

// WriteFile encodes img to path in the format named by its extension.
func WriteFile(path string, img image.Image) error {
	format := FormatFromPath(path)
	switch format {
	case "webp", "tga", "png":
	default:
		return fmt.Errorf("preview: %s: %w", path, ErrUnknownFormat)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("preview: create %s: %w", path, err)
	}
	if err := Encode(f, img, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
