// Package imageload decodes the source image of a puzzle.
//
// PNG, JPEG and GIF come from the standard library; WebP, BMP and TIFF from
// golang.org/x/image.
package imageload

import (
	"bufio"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ImageLoadError reports a source image that could not be read or decoded.
type ImageLoadError struct {
	Source string
	Err    error
}

func (e *ImageLoadError) Error() string {
	return fmt.Sprintf("cannot load image %q: %v", e.Source, e.Err)
}

func (e *ImageLoadError) Unwrap() error { return e.Err }

// Image is a decoded source image.
type Image struct {
	image.Image
	Format string
	Source string
}

// Size returns the pixel width and height.
func (i *Image) Size() (w, h int) {
	b := i.Bounds()
	return b.Dx(), b.Dy()
}

// Decode reads an image from r. source names it in errors.
func Decode(ctx context.Context, r io.Reader, source string) (*Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, &ImageLoadError{Source: source, Err: err}
	}
	img, format, err := image.Decode(bufio.NewReader(r))
	if err != nil {
		return nil, &ImageLoadError{Source: source, Err: err}
	}
	if b := img.Bounds(); b.Empty() {
		return nil, &ImageLoadError{Source: source, Err: fmt.Errorf("empty image %v", b)}
	}
	// Decoding is not interruptible; a caller that gave up meanwhile gets an
	// error rather than a stale image.
	if err := ctx.Err(); err != nil {
		return nil, &ImageLoadError{Source: source, Err: err}
	}
	return &Image{Image: img, Format: format, Source: source}, nil
}

// Open decodes the image file at path.
func Open(ctx context.Context, path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ImageLoadError{Source: path, Err: err}
	}
	defer f.Close()
	return Decode(ctx, f, path)
}
