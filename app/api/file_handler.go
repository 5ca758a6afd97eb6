package api

import (
	"path/filepath"
	"strings"

	"pdfcombine/types"

	"github.com/gofiber/fiber/v2"
)

type FileHandler struct {
	cfg types.Config
}

func NewFileHandler(cfg types.Config) *FileHandler {
	return &FileHandler{
		cfg: cfg,
	}
}

// HandleUpload stores an uploaded PDF in the source directory, where the
// next combine run (or the watch service) picks it up.
func (h *FileHandler) HandleUpload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return ErrBadRequest()
	}

	name := filepath.Base(fileHeader.Filename)
	if !strings.EqualFold(filepath.Ext(name), ".pdf") {
		return NewError(fiber.StatusBadRequest, "only pdf files are accepted")
	}

	dest := filepath.Join(h.cfg.SourceDir, name)
	if err := c.SaveFile(fileHeader, dest); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"stored": name})
}
