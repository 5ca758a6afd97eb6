package internal

import (
	"fmt"
	"image"
	stddraw "image/draw"
	"math"
	"os"
	"path/filepath"

	"pdfcombine/types"

	xdraw "golang.org/x/image/draw"

	// Register the decoders seen in scanner output.
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// Rasterizer renders a single PDF page to an RGBA raster at a given DPI.
type Rasterizer interface {
	Rasterize(path string, page, dpi int) (*image.RGBA, error)
}

// ImageRasterizer rasterizes by pulling the page's dominant embedded image
// out of the document and scaling it to the requested resolution against
// the page's MediaBox. Scanner-app PDFs carry each page as one full-page
// raster, so this recovers the page pixels without a PDF renderer. Pages
// with no raster content fail with a RenderError and are handled upstream.
type ImageRasterizer struct {
	engine PDFEngine
}

func NewRasterizer(engine PDFEngine) *ImageRasterizer {
	return &ImageRasterizer{engine: engine}
}

func (r *ImageRasterizer) Rasterize(path string, page, dpi int) (*image.RGBA, error) {
	if dpi <= 0 {
		return nil, &types.RenderError{Path: path, Page: page, Err: fmt.Errorf("invalid dpi %d", dpi)}
	}

	dims, err := r.engine.PageDims(path)
	if err != nil {
		return nil, &types.RenderError{Path: path, Err: err}
	}
	if page < 1 || page > len(dims) {
		return nil, &types.RenderError{Path: path, Page: page, Err: fmt.Errorf("page out of range [1, %d]", len(dims))}
	}

	dir, err := os.MkdirTemp("", "pdfcombine-raster-")
	if err != nil {
		return nil, &types.RenderError{Path: path, Page: page, Err: err}
	}
	defer os.RemoveAll(dir)

	if err := r.engine.ExtractPageImages(path, page, dir); err != nil {
		return nil, &types.RenderError{Path: path, Page: page, Err: err}
	}

	src, err := dominantImage(dir)
	if err != nil {
		return nil, &types.RenderError{Path: path, Page: page, Err: err}
	}

	dim := dims[page-1]
	wPx := int(math.Round(dim.Width / 72 * float64(dpi)))
	hPx := int(math.Round(dim.Height / 72 * float64(dpi)))
	if wPx <= 0 || hPx <= 0 {
		wPx, hPx = src.Bounds().Dx(), src.Bounds().Dy()
	}

	return scaleToRGBA(src, wPx, hPx), nil
}

// dominantImage decodes every extracted file and returns the one covering
// the largest pixel area. Small page images (logos, stamps) lose out to
// the full-page scan.
func dominantImage(dir string) (image.Image, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var best image.Image
	bestArea := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		f, err := os.Open(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		img, _, err := image.Decode(f)
		f.Close()
		if err != nil {
			continue
		}

		area := img.Bounds().Dx() * img.Bounds().Dy()
		if area > bestArea {
			best, bestArea = img, area
		}
	}

	if best == nil {
		return nil, fmt.Errorf("no decodable raster content")
	}
	return best, nil
}

// scaleToRGBA copies src into a width x height RGBA buffer, resampling
// when the sizes differ.
func scaleToRGBA(src image.Image, width, height int) *image.RGBA {
	bounds := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, width, height))

	if bounds.Dx() == width && bounds.Dy() == height {
		stddraw.Draw(dst, dst.Bounds(), src, bounds.Min, stddraw.Src)
		return dst
	}

	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Src, nil)
	return dst
}
