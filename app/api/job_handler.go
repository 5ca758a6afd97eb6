package api

import (
	"errors"
	"fmt"
	"time"

	"pdfcombine/internal"
	"pdfcombine/store"
	"pdfcombine/types"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type JobHandler struct {
	cfg      types.Config
	jobStore store.JobStorer
	engine   internal.PDFEngine
}

func NewJobHandler(cfg types.Config, s store.JobStorer) *JobHandler {
	return &JobHandler{
		cfg:      cfg,
		jobStore: s,
		engine:   internal.NewEngine(),
	}
}

// HandleCombine runs one combine over the configured source directory.
// Request params override the server defaults; the run is synchronous and
// the finished job record is returned.
func (h *JobHandler) HandleCombine(c *fiber.Ctx) error {
	// An empty body runs with the server defaults.
	var params types.CombineParams
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&params); err != nil {
			return ErrBadRequest()
		}
	}

	if errors := types.Validate(&params); len(errors) > 0 {
		return NewValidationError(errors)
	}

	opts := internal.OptionsFromConfig(h.cfg)
	opts.OutputName = params.OutputName
	opts.RemoveWatermarks = params.RemoveWatermarks
	if params.Strategy != "" {
		opts.Strategy = types.Strategy(params.Strategy)
	}
	if params.CropFraction > 0 {
		opts.CropFraction = params.CropFraction
	}

	job := types.Job{
		ID:        uuid.New(),
		Status:    types.JobRunning,
		SourceDir: opts.SourceDir,
		CreatedAt: time.Now(),
	}

	// Each request gets its own assembler; the run state is per-job.
	res, err := internal.NewAssembler(h.engine).Run(c.Context(), opts)
	job.FinishedAt = time.Now()

	if err != nil {
		job.Status = types.JobFailed
		job.Warnings = append(job.Warnings, err.Error())
		h.saveJob(c, job)

		if errors.Is(err, types.ErrNoInput) {
			return NewError(fiber.StatusNotFound, err.Error())
		}
		return NewError(fiber.StatusInternalServerError, err.Error())
	}

	job.Status = types.JobDone
	job.OutputPath = res.OutputPath
	job.Pages = res.Pages
	job.FilesTotal = res.FilesTotal
	job.FilesFailed = res.FilesFailed
	job.Warnings = res.Warnings
	h.saveJob(c, job)

	return c.JSON(job)
}

func (h *JobHandler) HandleGetJob(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return ErrInvalidID()
	}

	job, err := h.jobStore.GetJobByID(c.Context(), id)
	if err != nil {
		return ErrNotFound(id, "job")
	}
	return c.JSON(job)
}

func (h *JobHandler) HandleListJobs(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)

	jobs, err := h.jobStore.ListJobs(c.Context(), limit)
	if err != nil {
		return err
	}
	return c.JSON(jobs)
}

func (h *JobHandler) saveJob(c *fiber.Ctx, job types.Job) {
	if h.jobStore == nil {
		return
	}
	if err := h.jobStore.SaveJob(c.Context(), job); err != nil {
		fmt.Printf("error saving job %s: %v\n", job.ID, err)
	}
}
