package internal

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfcombine/types"
)

// testPage builds a raster with a distinct gradient so crops are checkable
// pixel by pixel.
func testPage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 60, A: 255})
		}
	}
	return img
}

func TestCroppedHeight(t *testing.T) {
	t.Run("default fraction keeps 850 of 1000 rows", func(t *testing.T) {
		kept, err := croppedHeight(1000, 0.15)

		require.NoError(t, err)
		assert.Equal(t, 850, kept)
	})

	t.Run("band size is floored", func(t *testing.T) {
		// floor(801*0.15) = 120
		kept, err := croppedHeight(801, 0.15)

		require.NoError(t, err)
		assert.Equal(t, 681, kept)
	})

	t.Run("result stays within (0, h]", func(t *testing.T) {
		for _, h := range []int{1, 2, 7, 99, 1000} {
			for _, f := range []float64{0.01, 0.15, 0.5, 0.99} {
				kept, err := croppedHeight(h, f)
				require.NoError(t, err, "h=%d f=%g", h, f)
				assert.Greater(t, kept, 0)
				assert.LessOrEqual(t, kept, h)
			}
		}
	})

	t.Run("rejects fractions outside the open interval", func(t *testing.T) {
		for _, f := range []float64{0, -0.2, 1, 1.5} {
			_, err := croppedHeight(1000, f)
			assert.Error(t, err, "fraction %g", f)
		}
	})

	t.Run("rejects non-positive height", func(t *testing.T) {
		_, err := croppedHeight(0, 0.15)
		assert.Error(t, err)
	})
}

func TestFixedFractionStrategy(t *testing.T) {
	t.Run("crops the bottom band and keeps width", func(t *testing.T) {
		src := testPage(400, 1000)

		out, err := FixedFractionStrategy{}.Crop(src, 0.15)

		require.NoError(t, err)
		assert.Equal(t, 400, out.Bounds().Dx())
		assert.Equal(t, 850, out.Bounds().Dy())
	})

	t.Run("kept rows are copied unchanged", func(t *testing.T) {
		src := testPage(64, 100)

		out, err := FixedFractionStrategy{}.Crop(src, 0.25)

		require.NoError(t, err)
		require.Equal(t, 75, out.Bounds().Dy())
		for _, p := range []image.Point{{0, 0}, {63, 0}, {10, 40}, {63, 74}} {
			assert.Equal(t, src.RGBAAt(p.X, p.Y), out.RGBAAt(p.X, p.Y), "pixel %v", p)
		}
	})

	t.Run("invalid fraction yields a crop error", func(t *testing.T) {
		_, err := FixedFractionStrategy{}.Crop(testPage(10, 10), 1.5)

		var cropErr *types.CropError
		require.ErrorAs(t, err, &cropErr)
		assert.Equal(t, types.StrategyFixedFraction, cropErr.Strategy)
	})

	t.Run("nil image yields a crop error", func(t *testing.T) {
		_, err := FixedFractionStrategy{}.Crop(nil, 0.15)

		var cropErr *types.CropError
		assert.True(t, errors.As(err, &cropErr))
	})
}

func TestPixelDomainStrategy(t *testing.T) {
	t.Run("matches fixed fraction geometry", func(t *testing.T) {
		src := testPage(120, 700)

		fixed, err := FixedFractionStrategy{}.Crop(src, 0.15)
		require.NoError(t, err)
		pixel, err := PixelDomainStrategy{}.Crop(src, 0.15)
		require.NoError(t, err)

		assert.Equal(t, fixed.Bounds(), pixel.Bounds())
	})

	t.Run("round trip stays close to source pixels", func(t *testing.T) {
		src := testPage(64, 100)

		out, err := PixelDomainStrategy{}.Crop(src, 0.15)

		require.NoError(t, err)
		for _, p := range []image.Point{{0, 0}, {30, 30}, {63, 84}} {
			want := src.RGBAAt(p.X, p.Y)
			got := out.RGBAAt(p.X, p.Y)
			assert.InDelta(t, int(want.R), int(got.R), 3, "pixel %v red", p)
			assert.InDelta(t, int(want.G), int(got.G), 3, "pixel %v green", p)
			assert.InDelta(t, int(want.B), int(got.B), 3, "pixel %v blue", p)
		}
	})

	t.Run("thresholding is off by default", func(t *testing.T) {
		src := image.NewRGBA(image.Rect(0, 0, 4, 10))
		for y := 0; y < 10; y++ {
			for x := 0; x < 4; x++ {
				src.SetRGBA(x, y, color.RGBA{R: 230, G: 230, B: 230, A: 255})
			}
		}

		out, err := PixelDomainStrategy{}.Crop(src, 0.2)

		require.NoError(t, err)
		got := out.RGBAAt(0, 0)
		assert.InDelta(t, 230, int(got.R), 3)
		assert.NotEqual(t, uint8(255), got.R)
	})

	t.Run("threshold forces bright pixels to white", func(t *testing.T) {
		src := image.NewRGBA(image.Rect(0, 0, 4, 10))
		for y := 0; y < 10; y++ {
			for x := 0; x < 4; x++ {
				src.SetRGBA(x, y, color.RGBA{R: 230, G: 230, B: 230, A: 255})
			}
		}

		out, err := PixelDomainStrategy{WhiteThreshold: 200}.Crop(src, 0.2)

		require.NoError(t, err)
		assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, out.RGBAAt(0, 0))
	})
}
