package handler

import (
	"github.com/labstack/echo/v4"

	"fieldtrack/internal/apperr"
	"fieldtrack/internal/jobs"
)

// JobHandler exposes the scheduled job registry.
type JobHandler struct {
	registry *jobs.Registry
}

// NewJobHandler creates a new job handler.
func NewJobHandler(registry *jobs.Registry) *JobHandler {
	return &JobHandler{registry: registry}
}

// List godoc
// @Summary List scheduled jobs with their state
// @Tags jobs
// @Security BearerAuth
// @Success 200 {object} Response
// @Router /jobs [get]
func (h *JobHandler) List(c echo.Context) error {
	return respondOK(c, h.registry.List())
}

// ToggleRequest flips a job's enabled flag.
type ToggleRequest struct {
	Actif *bool `json:"actif" validate:"required"`
}

// Toggle godoc
// @Summary Enable or disable a scheduled job
// @Tags jobs
// @Security BearerAuth
// @Param request body ToggleRequest true "Enabled flag"
// @Success 200 {object} Response
// @Failure 404 {object} Response
// @Router /jobs/{name} [patch]
func (h *JobHandler) Toggle(c echo.Context) error {
	var req ToggleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	if !h.registry.SetEnabled(c.Param("name"), *req.Actif) {
		return respondError(c, apperr.NotFound(apperr.MsgJobNotFound))
	}
	return respondMessage(c, "Tâche mise à jour")
}

// Run godoc
// @Summary Run a job immediately, regardless of schedule or enabled flag
// @Tags jobs
// @Security BearerAuth
// @Success 200 {object} Response
// @Failure 404 {object} Response
// @Router /jobs/{name}/run [post]
func (h *JobHandler) Run(c echo.Context) error {
	if !h.registry.RunNow(c.Request().Context(), c.Param("name")) {
		return respondError(c, apperr.NotFound(apperr.MsgJobNotFound))
	}
	return respondMessage(c, "Tâche exécutée")
}
