package internal

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"pdfcombine/types"
)

// Reencoder turns a cropped page raster back into a single-page PDF file.
type Reencoder interface {
	Encode(img image.Image, page int, outPath string) error
}

type ImageReencoder struct {
	engine PDFEngine
}

func NewReencoder(engine PDFEngine) *ImageReencoder {
	return &ImageReencoder{engine: engine}
}

// Encode writes img as a one-page PDF at outPath. The page box equals the
// pixel dimensions (1 px = 1 pt), so nothing is implicitly rescaled. The
// intermediate PNG is removed on every path.
func (e *ImageReencoder) Encode(img image.Image, page int, outPath string) error {
	if img == nil {
		return &types.EncodeError{Page: page, Err: fmt.Errorf("nil image")}
	}

	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return &types.EncodeError{Page: page, Err: fmt.Errorf("empty image %dx%d", bounds.Dx(), bounds.Dy())}
	}

	pngPath := outPath + ".png"
	f, err := os.Create(pngPath)
	if err != nil {
		return &types.EncodeError{Page: page, Err: err}
	}
	defer os.Remove(pngPath)

	if err := png.Encode(f, img); err != nil {
		f.Close()
		return &types.EncodeError{Page: page, Err: err}
	}
	if err := f.Close(); err != nil {
		return &types.EncodeError{Page: page, Err: err}
	}

	if err := e.engine.ImportImage(pngPath, outPath, float64(bounds.Dx()), float64(bounds.Dy())); err != nil {
		return &types.EncodeError{Page: page, Err: err}
	}
	return nil
}
