package internal

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// PageDim is a page size in points (1 pt = 1/72 inch).
type PageDim struct {
	Width  float64
	Height float64
}

// PDFEngine covers the PDF mechanics the assembler needs. The production
// implementation sits on pdfcpu; tests substitute a fake.
type PDFEngine interface {
	PageCount(path string) (int, error)
	PageDims(path string) ([]PageDim, error)
	ExtractPage(path string, page int, outPath string) error
	ExtractPageImages(path string, page int, outDir string) error
	ImportImage(imgPath, outPath string, widthPt, heightPt float64) error
	Merge(inFiles []string, outPath string) error
}

type PDFCPUEngine struct {
	conf *model.Configuration
}

func NewEngine() *PDFCPUEngine {
	return &PDFCPUEngine{conf: api.LoadConfiguration()}
}

func (e *PDFCPUEngine) PageCount(path string) (int, error) {
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("page count of %s: %w", path, err)
	}
	return n, nil
}

// PageDims reads the MediaBox of every page. Pages without a resolvable
// MediaBox fall back to US Letter, like pdfcpu itself does.
func (e *PDFCPUEngine) PageDims(path string) ([]PageDim, error) {
	ctx, err := api.ReadContextFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	dims := make([]PageDim, 0, ctx.PageCount)
	for i := 1; i <= ctx.PageCount; i++ {
		_, _, attrs, err := ctx.PageDict(i, false)
		if err != nil {
			return nil, fmt.Errorf("page dict %d of %s: %w", i, path, err)
		}

		d := PageDim{Width: 612, Height: 792}
		if attrs != nil && attrs.MediaBox != nil {
			d.Width = attrs.MediaBox.Width()
			d.Height = attrs.MediaBox.Height()
		}
		dims = append(dims, d)
	}
	return dims, nil
}

// ExtractPage writes one page of path as a standalone single-page PDF.
func (e *PDFCPUEngine) ExtractPage(path string, page int, outPath string) error {
	pages := []string{strconv.Itoa(page)}
	if err := api.TrimFile(path, outPath, pages, e.conf); err != nil {
		return fmt.Errorf("extract page %d of %s: %w", page, path, err)
	}
	return nil
}

// ExtractPageImages dumps the raster images referenced by one page into
// outDir. Scanner-produced PDFs carry the whole page as a single image.
func (e *PDFCPUEngine) ExtractPageImages(path string, page int, outDir string) error {
	pages := []string{strconv.Itoa(page)}
	if err := api.ExtractImagesFile(path, outDir, pages, e.conf); err != nil {
		return fmt.Errorf("extract images of %s page %d: %w", path, page, err)
	}
	return nil
}

// ImportImage converts an image file into a single-page PDF whose page box
// matches the given dimensions, with the image filling the page.
func (e *PDFCPUEngine) ImportImage(imgPath, outPath string, widthPt, heightPt float64) error {
	desc := fmt.Sprintf("dim:%.2f %.2f, pos:full", widthPt, heightPt)
	imp, err := api.Import(desc, types.POINTS)
	if err != nil {
		return fmt.Errorf("parse import details: %w", err)
	}

	if err := api.ImportImagesFile([]string{imgPath}, outPath, imp, e.conf); err != nil {
		return fmt.Errorf("import %s: %w", imgPath, err)
	}
	return nil
}

func (e *PDFCPUEngine) Merge(inFiles []string, outPath string) error {
	if len(inFiles) == 0 {
		return fmt.Errorf("merge into %s: no input files", outPath)
	}
	if len(inFiles) == 1 {
		return copyFile(inFiles[0], outPath)
	}
	if err := api.MergeCreateFile(inFiles, outPath, false, e.conf); err != nil {
		return fmt.Errorf("merge %d files into %s: %w", len(inFiles), outPath, err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}
	return out.Close()
}
