package handler

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"fieldtrack/internal/apperr"
	"fieldtrack/internal/pagination"
	"fieldtrack/internal/service"
)

// WorkerHandler handles worker endpoints.
type WorkerHandler struct {
	workerService service.WorkerService
	sheetService  service.WorkSheetService
}

// NewWorkerHandler creates a new worker handler.
func NewWorkerHandler(workerService service.WorkerService, sheetService service.WorkSheetService) *WorkerHandler {
	return &WorkerHandler{workerService: workerService, sheetService: sheetService}
}

// WorkerRequest is the worker create/update payload.
type WorkerRequest struct {
	Nom                string `json:"nom" validate:"required"`
	Prenom             string `json:"prenom" validate:"required"`
	Email              string `json:"email" validate:"required,email"`
	Telephone          string `json:"telephone"`
	DateEmbauche       string `json:"dateEmbauche" validate:"required"`
	CodeIdentification string `json:"codeIdentification" validate:"required"`
}

func (r *WorkerRequest) toInput() (service.WorkerInput, error) {
	hired, err := time.Parse("2006-01-02", r.DateEmbauche)
	if err != nil {
		return service.WorkerInput{}, apperr.Validation(apperr.MsgValidationFailed,
			map[string]string{"dateEmbauche": "Date invalide (attendu AAAA-MM-JJ)"})
	}
	return service.WorkerInput{
		Nom:                r.Nom,
		Prenom:             r.Prenom,
		Email:              r.Email,
		Telephone:          r.Telephone,
		DateEmbauche:       hired,
		CodeIdentification: r.CodeIdentification,
	}, nil
}

func parseIDParam(c echo.Context, name, notFoundMsg string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apperr.NotFound(notFoundMsg)
	}
	return id, nil
}

// Create godoc
// @Summary Create a worker
// @Tags workers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body WorkerRequest true "Worker data"
// @Success 201 {object} Response
// @Failure 409 {object} Response
// @Router /workers [post]
func (h *WorkerHandler) Create(c echo.Context) error {
	var req WorkerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	in, err := req.toInput()
	if err != nil {
		return respondError(c, err)
	}

	worker, err := h.workerService.Create(c.Request().Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return respondCreated(c, "Monteur créé", worker)
}

// Update godoc
// @Summary Update a worker
// @Tags workers
// @Security BearerAuth
// @Router /workers/{id} [put]
func (h *WorkerHandler) Update(c echo.Context) error {
	id, err := parseIDParam(c, "id", apperr.MsgWorkerNotFound)
	if err != nil {
		return respondError(c, err)
	}
	var req WorkerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	in, err := req.toInput()
	if err != nil {
		return respondError(c, err)
	}

	worker, err := h.workerService.Update(c.Request().Context(), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, worker)
}

// SetActiveRequest toggles the active flag.
type SetActiveRequest struct {
	Actif *bool `json:"actif" validate:"required"`
}

// SetActive godoc
// @Summary Activate or deactivate a worker
// @Tags workers
// @Security BearerAuth
// @Router /workers/{id}/actif [patch]
func (h *WorkerHandler) SetActive(c echo.Context) error {
	id, err := parseIDParam(c, "id", apperr.MsgWorkerNotFound)
	if err != nil {
		return respondError(c, err)
	}
	var req SetActiveRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	worker, err := h.workerService.SetActive(c.Request().Context(), id, *req.Actif)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, worker)
}

// Delete godoc
// @Summary Delete a worker
// @Tags workers
// @Security BearerAuth
// @Router /workers/{id} [delete]
func (h *WorkerHandler) Delete(c echo.Context) error {
	id, err := parseIDParam(c, "id", apperr.MsgWorkerNotFound)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.workerService.Delete(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return respondMessage(c, "Monteur supprimé")
}

// Get godoc
// @Summary Get a worker
// @Tags workers
// @Security BearerAuth
// @Router /workers/{id} [get]
func (h *WorkerHandler) Get(c echo.Context) error {
	id, err := parseIDParam(c, "id", apperr.MsgWorkerNotFound)
	if err != nil {
		return respondError(c, err)
	}
	worker, err := h.workerService.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, worker)
}

// List godoc
// @Summary List workers
// @Tags workers
// @Security BearerAuth
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param actif query bool false "Only active workers"
// @Router /workers [get]
func (h *WorkerHandler) List(c echo.Context) error {
	page, limit, offset := pagination.Params(c.QueryParam("page"), c.QueryParam("limit"))
	actifOnly := c.QueryParam("actif") == "true"

	workers, meta, err := h.workerService.List(c.Request().Context(), actifOnly, page, limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return respondPage(c, workers, meta)
}

// Stats godoc
// @Summary Monthly stats for a worker
// @Tags workers
// @Security BearerAuth
// @Param mois query int false "Month (1-12), defaults to current"
// @Param annee query int false "Year, defaults to current"
// @Router /workers/{id}/stats [get]
func (h *WorkerHandler) Stats(c echo.Context) error {
	id, err := parseIDParam(c, "id", apperr.MsgWorkerNotFound)
	if err != nil {
		return respondError(c, err)
	}
	month := atoiOrZero(c.QueryParam("mois"))
	year := atoiOrZero(c.QueryParam("annee"))

	stats, err := h.sheetService.WorkerStats(c.Request().Context(), CurrentIdentity(c), id, month, year)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, stats)
}
