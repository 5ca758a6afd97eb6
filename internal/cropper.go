package internal

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"pdfcombine/types"
)

// CropStrategy removes the bottom watermark band from a page raster.
// Strategies operate on pixel geometry only; none of them inspect text.
type CropStrategy interface {
	Name() types.Strategy
	Crop(img *image.RGBA, fraction float64) (*image.RGBA, error)
}

// croppedHeight applies the band geometry shared by all strategies:
// h' = h - floor(h*fraction), which must stay within (0, h].
func croppedHeight(height int, fraction float64) (int, error) {
	if fraction <= 0 || fraction >= 1 {
		return 0, fmt.Errorf("crop fraction %g outside (0, 1)", fraction)
	}
	if height <= 0 {
		return 0, fmt.Errorf("invalid image height %d", height)
	}

	kept := height - int(math.Floor(float64(height)*fraction))
	if kept <= 0 || kept > height {
		return 0, fmt.Errorf("crop of %d rows leaves no page content", height-kept)
	}
	return kept, nil
}

// FixedFractionStrategy keeps the top (1-fraction) of the image at full
// width. Deterministic and independent of pixel content.
type FixedFractionStrategy struct{}

func (FixedFractionStrategy) Name() types.Strategy { return types.StrategyFixedFraction }

func (s FixedFractionStrategy) Crop(img *image.RGBA, fraction float64) (*image.RGBA, error) {
	if img == nil {
		return nil, &types.CropError{Strategy: s.Name(), Err: fmt.Errorf("nil image")}
	}

	bounds := img.Bounds()
	kept, err := croppedHeight(bounds.Dy(), fraction)
	if err != nil {
		return nil, &types.CropError{Strategy: s.Name(), Err: err}
	}

	out := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), kept))
	draw.Draw(out, out.Bounds(), img, bounds.Min, draw.Src)
	return out, nil
}

// PixelDomainStrategy removes the same bottom band, but runs the kept rows
// through a full RGB -> YCbCr -> RGB round trip, the pixel-buffer analogue
// of the color-space conversion the aggressive removal path performs.
//
// WhiteThreshold enables a content-aware refinement: luma at or above the
// threshold is forced to pure white, wiping bright watermark remnants. It
// is intentionally disabled by default (zero threshold) because it can
// also delete legitimate light page content. Experimental.
type PixelDomainStrategy struct {
	WhiteThreshold uint8
}

func (PixelDomainStrategy) Name() types.Strategy { return types.StrategyPixelDomain }

func (s PixelDomainStrategy) Crop(img *image.RGBA, fraction float64) (*image.RGBA, error) {
	if img == nil {
		return nil, &types.CropError{Strategy: s.Name(), Err: fmt.Errorf("nil image")}
	}

	bounds := img.Bounds()
	kept, err := croppedHeight(bounds.Dy(), fraction)
	if err != nil {
		return nil, &types.CropError{Strategy: s.Name(), Err: err}
	}

	out := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), kept))
	for y := 0; y < kept; y++ {
		for x := 0; x < bounds.Dx(); x++ {
			c := img.RGBAAt(bounds.Min.X+x, bounds.Min.Y+y)

			luma, cb, cr := color.RGBToYCbCr(c.R, c.G, c.B)
			if s.WhiteThreshold > 0 && luma >= s.WhiteThreshold {
				luma, cb, cr = 255, 128, 128
			}
			r, g, b := color.YCbCrToRGB(luma, cb, cr)

			out.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
		}
	}
	return out, nil
}
