package api

import (
	"pdfcombine/types"

	"github.com/gofiber/fiber/v2"
)

type ConfigHandler struct {
	cfg types.Config
}

func NewConfigHandler(cfg types.Config) *ConfigHandler {
	return &ConfigHandler{
		cfg: cfg,
	}
}

// HandleGetConfig reports the combine defaults a job request may override.
func (h *ConfigHandler) HandleGetConfig(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"source_dir":        h.cfg.SourceDir,
		"output_dir":        h.cfg.OutputDir,
		"remove_watermarks": h.cfg.RemoveWatermarks,
		"strategy":          h.cfg.Strategy,
		"crop_fraction":     h.cfg.CropFraction,
	})
}
