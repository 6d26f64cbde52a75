package imports

import (
	"errors"

	"legacy-importer/core/importer"
	"legacy-importer/core/logger"
	"legacy-importer/core/sqldump"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for import runs.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the import routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/imports")
	group.Get("/", h.HandleListRuns)
	group.Post("/", h.HandleCreateRun)
	group.Get("/:id", h.HandleGetRun)
	group.Post("/:id/next", h.HandleNext)
	group.Get("/:id/report", h.HandleReport)
}

// HandleListRuns lists recent runs.
// @Summary List Import Runs
// @Description List the most recent import runs, newest first.
// @Tags imports
// @Security ApiKeyAuth
// @Produce json
// @Param limit query int false "Maximum number of runs (default 20, max 100)"
// @Success 200 {array} Run "Runs"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /imports [get]
func (h *Handler) HandleListRuns(c *fiber.Ctx) error {
	runs, err := h.service.ListRuns(c.Context(), c.QueryInt("limit", 20))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(runs)
}

// HandleCreateRun starts a run.
// @Summary Create Import Run
// @Description Scan a legacy SQL dump and create a resumable import run for one flow (videos, embeds, users).
// @Tags imports
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param request body CreateRunRequest true "Run parameters"
// @Success 201 {object} Run "Created run"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /imports [post]
func (h *Handler) HandleCreateRun(c *fiber.Ctx) error {
	var req CreateRunRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	run, err := h.service.CreateRun(c.Context(), req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(run)
}

// HandleGetRun returns a run.
// @Summary Get Import Run
// @Description Get the persisted progress of an import run.
// @Tags imports
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} Run "Run"
// @Failure 404 {object} map[string]string "Run not found"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /imports/{id} [get]
func (h *Handler) HandleGetRun(c *fiber.Ctx) error {
	run, err := h.service.GetRun(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(run)
}

// HandleNext processes the next chunk of a run.
// @Summary Process Next Chunk
// @Description Import the next batch of entities of a run and advance its cursor. Poll until done is true.
// @Tags imports
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} StepResponse "Step outcome"
// @Failure 400 {object} map[string]string "Run cannot proceed"
// @Failure 404 {object} map[string]string "Run not found"
// @Failure 409 {object} map[string]string "Concurrent step"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /imports/{id}/next [post]
func (h *Handler) HandleNext(c *fiber.Ctx) error {
	resp, err := h.service.Next(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(resp)
}

// HandleReport returns a dry-run report of a run.
// @Summary Import Run Report
// @Description Project the dump again and report entity counts and, for archive runs, which media files resolve. Nothing is written.
// @Tags imports
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} ReportResponse "Report"
// @Failure 404 {object} map[string]string "Run not found"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /imports/{id}/report [get]
func (h *Handler) HandleReport(c *fiber.Ctx) error {
	resp, err := h.service.Report(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(resp)
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, ErrRunNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, ErrStepConflict):
		status = fiber.StatusConflict
	case errors.Is(err, ErrInvalidKind),
		errors.Is(err, ErrArchiveRequired),
		errors.Is(err, importer.ErrNoAssignee),
		errors.Is(err, sqldump.ErrOpenDump):
		status = fiber.StatusBadRequest
	}

	if status == fiber.StatusInternalServerError {
		logger.WithRayID(h.service.logger, c).Error("Import request failed", zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}
