package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"pdfcombine/types"

	"github.com/google/uuid"
)

// State tracks the assembler through one combine run.
type State int

const (
	StateIdle State = iota
	StateCollecting
	StateProcessing
	StateFinalizing
	StateDone
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCollecting:
		return "collecting"
	case StateProcessing:
		return "processing"
	case StateFinalizing:
		return "finalizing"
	case StateDone:
		return "done"
	case StateAborted:
		return "aborted"
	}
	return "unknown"
}

// Options configure a single combine run.
type Options struct {
	SourceDir        string
	OutputDir        string
	OutputName       string
	RemoveWatermarks bool
	Strategy         types.Strategy
	CropFraction     float64
	RasterDPI        int
	PixelDPI         int
}

// OptionsFromConfig derives run options from the process configuration.
func OptionsFromConfig(cfg types.Config) Options {
	return Options{
		SourceDir:        cfg.SourceDir,
		OutputDir:        cfg.OutputDir,
		RemoveWatermarks: cfg.RemoveWatermarks,
		Strategy:         cfg.Strategy,
		CropFraction:     cfg.CropFraction,
		RasterDPI:        cfg.RasterDPI,
		PixelDPI:         cfg.PixelDPI,
	}
}

// Result reports a finished combine run.
type Result struct {
	OutputPath  string
	Pages       int
	FilesTotal  int
	FilesFailed int
	FailedFiles []string
	Warnings    []string
}

// Assembler walks the sorted source files and appends every surviving page,
// in order, into one output document. Per-file failures are downgraded to
// warnings; only a missing input set and the final write abort the run.
type Assembler struct {
	engine     PDFEngine
	rasterizer Rasterizer
	encoder    Reencoder
	logger     *slog.Logger

	mu    sync.Mutex
	state State
}

func NewAssembler(engine PDFEngine) *Assembler {
	return &Assembler{
		engine:     engine,
		rasterizer: NewRasterizer(engine),
		encoder:    NewReencoder(engine),
		logger:     slog.Default(),
		state:      StateIdle,
	}
}

func (a *Assembler) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *Assembler) setState(s State) {
	a.mu.Lock()
	a.state = s
	a.mu.Unlock()
}

// Run executes one combine: collect, process file by file, finalize.
// The output is written to a temporary name and renamed into place so a
// failed write never leaves a partial file at the final location.
func (a *Assembler) Run(ctx context.Context, opts Options) (*Result, error) {
	a.setState(StateCollecting)

	files, err := CollectSources(opts.SourceDir)
	if err != nil {
		a.setState(StateAborted)
		return nil, err
	}
	if len(files) == 0 {
		a.setState(StateAborted)
		return nil, types.ErrNoInput
	}

	res := &Result{FilesTotal: len(files)}

	// One run-scoped scratch directory; uuid keeps concurrent runs apart.
	tmpRoot := filepath.Join(os.TempDir(), "pdfcombine-"+uuid.NewString())
	if err := os.MkdirAll(tmpRoot, 0755); err != nil {
		a.setState(StateAborted)
		return nil, fmt.Errorf("create temp directory: %w", err)
	}
	defer os.RemoveAll(tmpRoot)

	a.setState(StateProcessing)
	var inputs []string
	totalPages := 0
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			a.setState(StateAborted)
			return nil, err
		}

		a.logger.Info("processing", "file", filepath.Base(file))

		pages, err := a.engine.PageCount(file)
		if err != nil {
			a.warn(res, fmt.Sprintf("skipping %s: %v", filepath.Base(file), err))
			res.FilesFailed++
			res.FailedFiles = append(res.FailedFiles, file)
			continue
		}

		if !opts.RemoveWatermarks {
			inputs = append(inputs, file)
			totalPages += pages
			continue
		}

		processed, kept, err := a.processFile(file, pages, tmpRoot, opts, res)
		if err != nil {
			a.warn(res, fmt.Sprintf("skipping %s: %v", filepath.Base(file), err))
			res.FilesFailed++
			res.FailedFiles = append(res.FailedFiles, file)
			continue
		}
		inputs = append(inputs, processed)
		totalPages += kept
	}

	a.setState(StateFinalizing)
	if len(inputs) == 0 {
		a.setState(StateAborted)
		return nil, fmt.Errorf("all %d source files failed: %w", len(files), types.ErrNoInput)
	}

	outPath := filepath.Join(opts.OutputDir, OutputFileName(opts.OutputName, time.Now()))
	tmpOut := filepath.Join(opts.OutputDir, ".tmp-"+uuid.NewString()+".pdf")
	if err := a.engine.Merge(inputs, tmpOut); err != nil {
		os.Remove(tmpOut)
		a.setState(StateAborted)
		return nil, &types.WriteError{Path: outPath, Err: err}
	}
	if err := os.Rename(tmpOut, outPath); err != nil {
		os.Remove(tmpOut)
		a.setState(StateAborted)
		return nil, &types.WriteError{Path: outPath, Err: err}
	}

	// The page sum gathered during processing is the fallback when the
	// finished document cannot be read back.
	res.Pages = totalPages
	if n, err := a.engine.PageCount(outPath); err == nil {
		res.Pages = n
	} else {
		a.warn(res, fmt.Sprintf("could not read back page count of %s: %v", filepath.Base(outPath), err))
	}
	res.OutputPath = outPath
	a.setState(StateDone)
	return res, nil
}

// processFile runs the rasterize -> crop -> re-encode pipeline over every
// page of file and merges the fragments into a processed per-file document
// under tmpRoot. A page whose watermark processing fails is appended
// unprocessed; it is skipped only when it cannot be read back at all.
func (a *Assembler) processFile(file string, pages int, tmpRoot string, opts Options, res *Result) (string, int, error) {
	fileDir := filepath.Join(tmpRoot, uuid.NewString())
	if err := os.MkdirAll(fileDir, 0755); err != nil {
		return "", 0, err
	}

	var fragments []string
	for page := 1; page <= pages; page++ {
		frag := filepath.Join(fileDir, fmt.Sprintf("page_%04d.pdf", page))

		err := a.processPage(file, page, frag, opts)
		if err == nil {
			fragments = append(fragments, frag)
			continue
		}

		var encErr *types.EncodeError
		if errors.As(err, &encErr) {
			// Re-encoding is the one per-page failure that drops the page.
			a.warn(res, fmt.Sprintf("%s: dropping page %d: %v", filepath.Base(file), page, err))
			continue
		}

		// Rasterize/crop failure: keep the original page untouched.
		if passErr := a.engine.ExtractPage(file, page, frag); passErr != nil {
			a.warn(res, fmt.Sprintf("%s: skipping page %d: %v", filepath.Base(file), page, passErr))
			continue
		}
		a.warn(res, fmt.Sprintf("%s: page %d left unprocessed: %v", filepath.Base(file), page, err))
		fragments = append(fragments, frag)
	}

	if len(fragments) == 0 {
		return "", 0, fmt.Errorf("no pages survived processing")
	}

	processed := filepath.Join(fileDir, "processed.pdf")
	if err := a.engine.Merge(fragments, processed); err != nil {
		return "", 0, err
	}
	return processed, len(fragments), nil
}

// processPage rasterizes one page, applies the configured crop strategy,
// and re-encodes the result at outPath. A pixel-domain failure falls back
// to the fixed-fraction crop on the same raster before giving up.
func (a *Assembler) processPage(file string, page int, outPath string, opts Options) error {
	strategy := strategyFor(opts.Strategy)

	dpi := opts.RasterDPI
	if strategy.Name() == types.StrategyPixelDomain {
		dpi = opts.PixelDPI
	}

	img, err := a.rasterizer.Rasterize(file, page, dpi)
	if err != nil {
		return err
	}

	cropped, err := strategy.Crop(img, opts.CropFraction)
	if err != nil && strategy.Name() == types.StrategyPixelDomain {
		a.logger.Warn("pixel-domain crop failed, falling back to fixed fraction",
			"file", filepath.Base(file), "page", page, "error", err)
		cropped, err = FixedFractionStrategy{}.Crop(img, opts.CropFraction)
	}
	if err != nil {
		return err
	}

	return a.encoder.Encode(cropped, page, outPath)
}

func (a *Assembler) warn(res *Result, msg string) {
	a.logger.Warn(msg)
	res.Warnings = append(res.Warnings, msg)
}

func strategyFor(s types.Strategy) CropStrategy {
	if s == types.StrategyPixelDomain {
		return PixelDomainStrategy{}
	}
	return FixedFractionStrategy{}
}

// OutputFileName resolves the final output file name: a timestamped default
// when none is given, and exactly one .pdf suffix in any case.
func OutputFileName(name string, now time.Time) string {
	if name == "" {
		return fmt.Sprintf("combined_pdfs_%s.pdf", now.Format("20060102_150405"))
	}
	if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		name += ".pdf"
	}
	return name
}
