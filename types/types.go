package types

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Strategy selects how the watermark band is removed from a page raster.
type Strategy string

const (
	StrategyFixedFraction Strategy = "fixed_fraction"
	StrategyPixelDomain   Strategy = "pixel_domain"
)

func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyFixedFraction, StrategyPixelDomain:
		return Strategy(s), nil
	case "":
		return StrategyFixedFraction, nil
	}
	return "", fmt.Errorf("unknown watermark strategy %q", s)
}

type Config struct {
	SourceDir  string
	OutputDir  string
	ArchiveDir string
	BadDir     string

	ServerAddr     string
	MonitoringTime time.Duration

	RemoveWatermarks bool
	Strategy         Strategy
	CropFraction     float64

	// Rasterization tiers: the cheap fixed-fraction path and the
	// pixel-domain path render at different resolutions.
	RasterDPI int
	PixelDPI  int
}

// LoadConfig reads the runtime configuration from environment variables,
// falling back to defaults that match the one-shot CLI behavior.
func LoadConfig() Config {
	cfg := Config{
		SourceDir:        envOr("SOURCE_DIR", "source-pdfs"),
		OutputDir:        envOr("OUTPUT_DIR", "."),
		ArchiveDir:       envOr("ARCHIVE_DIR", "archive"),
		BadDir:           envOr("BAD_DIR", "bad"),
		ServerAddr:       envOr("SERVER_ADDR", ":3000"),
		MonitoringTime:   10 * time.Second,
		RemoveWatermarks: os.Getenv("REMOVE_WATERMARKS") == "true",
		Strategy:         StrategyFixedFraction,
		CropFraction:     0.15,
		RasterDPI:        200,
		PixelDPI:         300,
	}

	if s, err := ParseStrategy(os.Getenv("WATERMARK_STRATEGY")); err == nil {
		cfg.Strategy = s
	}
	if v, err := strconv.ParseFloat(os.Getenv("CROP_FRACTION"), 64); err == nil && v > 0 && v < 1 {
		cfg.CropFraction = v
	}
	if v, err := strconv.Atoi(os.Getenv("MONITORING_TIME")); err == nil && v > 0 {
		cfg.MonitoringTime = time.Duration(v) * time.Second
	}

	return cfg
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

type JobStatus string

const (
	JobRunning JobStatus = "running"
	JobDone    JobStatus = "done"
	JobFailed  JobStatus = "failed"
)

// Job is one combine run recorded in the job store.
type Job struct {
	ID          uuid.UUID `json:"id"`
	Status      JobStatus `json:"status"`
	SourceDir   string    `json:"source_dir"`
	OutputPath  string    `json:"output_path,omitempty"`
	Pages       int       `json:"pages"`
	FilesTotal  int       `json:"files_total"`
	FilesFailed int       `json:"files_failed"`
	Warnings    []string  `json:"warnings,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	FinishedAt  time.Time `json:"finished_at,omitempty"`
}

// ErrNoInput aborts a run before any processing: the source directory
// holds no PDF files and no output is produced.
var ErrNoInput = errors.New("no pdf files found in source directory")

// RenderError means a page (or the whole file, when Page is 0) could not
// be decoded into a raster image. Downgraded to a warning by the assembler.
type RenderError struct {
	Path string
	Page int
	Err  error
}

func (e *RenderError) Error() string {
	if e.Page > 0 {
		return fmt.Sprintf("render %s page %d: %v", e.Path, e.Page, e.Err)
	}
	return fmt.Sprintf("render %s: %v", e.Path, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// CropError means a strategy could not produce a valid cropped raster.
// The caller falls back to a cheaper strategy or passes the page through.
type CropError struct {
	Strategy Strategy
	Err      error
}

func (e *CropError) Error() string {
	return fmt.Sprintf("crop strategy %s: %v", e.Strategy, e.Err)
}

func (e *CropError) Unwrap() error { return e.Err }

// EncodeError means a cropped raster could not be turned back into a
// single-page PDF fragment. The page is dropped with a warning.
type EncodeError struct {
	Page int
	Err  error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode page %d: %v", e.Page, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// WriteError means the final output document could not be written. Fatal.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write output %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
