package internal

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfcombine/types"
)

// imageEngine serves canned page images to the rasterizer.
type imageEngine struct {
	fakeEngine
	dims   []PageDim
	images []*image.RGBA
}

func (e *imageEngine) PageDims(path string) ([]PageDim, error) {
	if e.dims == nil {
		return nil, fmt.Errorf("unreadable document")
	}
	return e.dims, nil
}

func (e *imageEngine) ExtractPageImages(path string, page int, outDir string) error {
	for i, img := range e.images {
		f, err := os.Create(filepath.Join(outDir, fmt.Sprintf("img_%d.png", i)))
		if err != nil {
			return err
		}
		if err := png.Encode(f, img); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}

func TestImageRasterizer(t *testing.T) {
	t.Run("scales the page image to the requested dpi", func(t *testing.T) {
		// one inch by two inches at 100 dpi
		eng := &imageEngine{
			dims:   []PageDim{{Width: 72, Height: 144}},
			images: []*image.RGBA{testPage(50, 100)},
		}

		img, err := NewRasterizer(eng).Rasterize("a.pdf", 1, 100)

		require.NoError(t, err)
		assert.Equal(t, 100, img.Bounds().Dx())
		assert.Equal(t, 200, img.Bounds().Dy())
	})

	t.Run("prefers the largest embedded image", func(t *testing.T) {
		big := testPage(100, 200)
		stamp := testPage(10, 10)
		eng := &imageEngine{
			dims:   []PageDim{{Width: 72, Height: 144}},
			images: []*image.RGBA{stamp, big},
		}

		img, err := NewRasterizer(eng).Rasterize("a.pdf", 1, 100)

		require.NoError(t, err)
		// big already matches the target size, so pixels come through as-is
		require.Equal(t, big.Bounds(), img.Bounds())
		assert.Equal(t, big.RGBAAt(40, 150), img.RGBAAt(40, 150))
	})

	t.Run("page without raster content is a render error", func(t *testing.T) {
		eng := &imageEngine{dims: []PageDim{{Width: 612, Height: 792}}}

		_, err := NewRasterizer(eng).Rasterize("vector.pdf", 1, 200)

		var renderErr *types.RenderError
		require.ErrorAs(t, err, &renderErr)
		assert.Equal(t, 1, renderErr.Page)
	})

	t.Run("page out of range is a render error", func(t *testing.T) {
		eng := &imageEngine{dims: []PageDim{{Width: 612, Height: 792}}}

		_, err := NewRasterizer(eng).Rasterize("a.pdf", 2, 200)

		var renderErr *types.RenderError
		assert.ErrorAs(t, err, &renderErr)
	})

	t.Run("invalid dpi is a render error", func(t *testing.T) {
		eng := &imageEngine{dims: []PageDim{{Width: 612, Height: 792}}}

		_, err := NewRasterizer(eng).Rasterize("a.pdf", 1, 0)

		var renderErr *types.RenderError
		assert.ErrorAs(t, err, &renderErr)
	})

	t.Run("unreadable document is a render error", func(t *testing.T) {
		_, err := NewRasterizer(&imageEngine{}).Rasterize("missing.pdf", 1, 200)

		var renderErr *types.RenderError
		assert.ErrorAs(t, err, &renderErr)
	})
}
