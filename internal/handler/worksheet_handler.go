package handler

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"fieldtrack/internal/apperr"
	"fieldtrack/internal/model"
	"fieldtrack/internal/pagination"
	"fieldtrack/internal/repository"
	"fieldtrack/internal/service"
)

// WorkSheetHandler handles work-sheet endpoints.
type WorkSheetHandler struct {
	sheetService service.WorkSheetService
}

// NewWorkSheetHandler creates a new work-sheet handler.
func NewWorkSheetHandler(sheetService service.WorkSheetService) *WorkSheetHandler {
	return &WorkSheetHandler{sheetService: sheetService}
}

// CreateSheetRequest is the work-sheet creation payload.
type CreateSheetRequest struct {
	MonteurID   string `json:"monteurId"`
	ChantierID  string `json:"chantierId" validate:"required"`
	DateTravail string `json:"dateTravail" validate:"required"`
	HeureDebut  string `json:"heureDebut" validate:"required"`
	HeureFin    string `json:"heureFin" validate:"required"`
	Description string `json:"description"`
}

// UpdateSheetRequest is the partial edit payload; absent fields stay unchanged.
type UpdateSheetRequest struct {
	ChantierID  *string `json:"chantierId"`
	DateTravail *string `json:"dateTravail"`
	HeureDebut  *string `json:"heureDebut"`
	HeureFin    *string `json:"heureFin"`
	Description *string `json:"description"`
}

func parseDate(value, field string) (time.Time, error) {
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, apperr.Validation(apperr.MsgValidationFailed,
			map[string]string{field: "Date invalide (attendu AAAA-MM-JJ)"})
	}
	return parsed, nil
}

// Create godoc
// @Summary Create a work sheet (BROUILLON)
// @Tags worksheets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateSheetRequest true "Work sheet data"
// @Success 201 {object} Response
// @Failure 400 {object} Response
// @Failure 404 {object} Response
// @Router /worksheets [post]
func (h *WorkSheetHandler) Create(c echo.Context) error {
	var req CreateSheetRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	in := service.CreateSheetInput{
		HeureDebut:  req.HeureDebut,
		HeureFin:    req.HeureFin,
		Description: req.Description,
	}

	// monteurId is optional for MONTEUR callers: the service forces their own.
	if req.MonteurID != "" {
		workerID, err := uuid.Parse(req.MonteurID)
		if err != nil {
			return respondError(c, apperr.NotFound(apperr.MsgWorkerNotFound))
		}
		in.WorkerID = workerID
	}
	siteID, err := uuid.Parse(req.ChantierID)
	if err != nil {
		return respondError(c, apperr.NotFound(apperr.MsgSiteNotFound))
	}
	in.SiteID = siteID

	date, err := parseDate(req.DateTravail, "dateTravail")
	if err != nil {
		return respondError(c, err)
	}
	in.DateTravail = date

	sheet, err := h.sheetService.Create(c.Request().Context(), CurrentIdentity(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return respondCreated(c, "Feuille de travail créée", sheet)
}

// Update godoc
// @Summary Edit a work sheet (not allowed once VALIDE)
// @Tags worksheets
// @Security BearerAuth
// @Router /worksheets/{id} [put]
func (h *WorkSheetHandler) Update(c echo.Context) error {
	id, err := parseIDParam(c, "id", apperr.MsgSheetNotFound)
	if err != nil {
		return respondError(c, err)
	}
	var req UpdateSheetRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	in := service.UpdateSheetInput{
		HeureDebut:  req.HeureDebut,
		HeureFin:    req.HeureFin,
		Description: req.Description,
	}
	if req.ChantierID != nil {
		siteID, err := uuid.Parse(*req.ChantierID)
		if err != nil {
			return respondError(c, apperr.NotFound(apperr.MsgSiteNotFound))
		}
		in.SiteID = &siteID
	}
	if req.DateTravail != nil {
		date, err := parseDate(*req.DateTravail, "dateTravail")
		if err != nil {
			return respondError(c, err)
		}
		in.DateTravail = &date
	}

	sheet, err := h.sheetService.Update(c.Request().Context(), CurrentIdentity(c), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, sheet)
}

// Delete godoc
// @Summary Delete a work sheet (not allowed once VALIDE)
// @Tags worksheets
// @Security BearerAuth
// @Router /worksheets/{id} [delete]
func (h *WorkSheetHandler) Delete(c echo.Context) error {
	id, err := parseIDParam(c, "id", apperr.MsgSheetNotFound)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.sheetService.Delete(c.Request().Context(), CurrentIdentity(c), id); err != nil {
		return respondError(c, err)
	}
	return respondMessage(c, "Feuille de travail supprimée")
}

// Get godoc
// @Summary Get a work sheet with expenses and attachments
// @Tags worksheets
// @Security BearerAuth
// @Router /worksheets/{id} [get]
func (h *WorkSheetHandler) Get(c echo.Context) error {
	id, err := parseIDParam(c, "id", apperr.MsgSheetNotFound)
	if err != nil {
		return respondError(c, err)
	}
	sheet, err := h.sheetService.Get(c.Request().Context(), CurrentIdentity(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, sheet)
}

// List godoc
// @Summary List work sheets visible to the caller
// @Description MONTEUR callers only ever see their own sheets, whatever filters they send.
// @Tags worksheets
// @Security BearerAuth
// @Param statut query string false "BROUILLON, SOUMIS, VALIDE or REJETE"
// @Param monteurId query string false "Worker id (ignored for MONTEUR callers)"
// @Param chantierId query string false "Site id"
// @Param dateDebut query string false "Start of date range (AAAA-MM-JJ)"
// @Param dateFin query string false "End of date range (AAAA-MM-JJ)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Router /worksheets [get]
func (h *WorkSheetHandler) List(c echo.Context) error {
	filter := repository.SheetFilter{}

	if v := c.QueryParam("statut"); v != "" {
		status := model.SheetStatus(v)
		if !status.Valid() {
			return respondError(c, apperr.Validation(apperr.MsgValidationFailed,
				map[string]string{"statut": "Statut inconnu"}))
		}
		filter.Statut = &status
	}
	if v := c.QueryParam("monteurId"); v != "" {
		workerID, err := uuid.Parse(v)
		if err != nil {
			return respondError(c, apperr.NotFound(apperr.MsgWorkerNotFound))
		}
		filter.WorkerID = &workerID
	}
	if v := c.QueryParam("chantierId"); v != "" {
		siteID, err := uuid.Parse(v)
		if err != nil {
			return respondError(c, apperr.NotFound(apperr.MsgSiteNotFound))
		}
		filter.SiteID = &siteID
	}
	if v := c.QueryParam("dateDebut"); v != "" {
		from, err := parseDate(v, "dateDebut")
		if err != nil {
			return respondError(c, err)
		}
		filter.DateFrom = &from
	}
	if v := c.QueryParam("dateFin"); v != "" {
		to, err := parseDate(v, "dateFin")
		if err != nil {
			return respondError(c, err)
		}
		filter.DateTo = &to
	}

	page, limit, offset := pagination.Params(c.QueryParam("page"), c.QueryParam("limit"))
	sheets, meta, err := h.sheetService.List(c.Request().Context(), CurrentIdentity(c), filter, page, limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return respondPage(c, sheets, meta)
}

// Submit godoc
// @Summary Submit a BROUILLON work sheet for validation
// @Tags worksheets
// @Security BearerAuth
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Router /worksheets/{id}/submit [post]
func (h *WorkSheetHandler) Submit(c echo.Context) error {
	id, err := parseIDParam(c, "id", apperr.MsgSheetNotFound)
	if err != nil {
		return respondError(c, err)
	}
	sheet, err := h.sheetService.Submit(c.Request().Context(), CurrentIdentity(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, sheet)
}

// Validate godoc
// @Summary Approve a SOUMIS work sheet
// @Tags worksheets
// @Security BearerAuth
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Failure 403 {object} Response
// @Router /worksheets/{id}/validate [post]
func (h *WorkSheetHandler) Validate(c echo.Context) error {
	id, err := parseIDParam(c, "id", apperr.MsgSheetNotFound)
	if err != nil {
		return respondError(c, err)
	}
	sheet, err := h.sheetService.Validate(c.Request().Context(), CurrentIdentity(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, sheet)
}

// RejectRequest carries the optional rejection reason.
type RejectRequest struct {
	Motif string `json:"motif"`
}

// Reject godoc
// @Summary Reject a SOUMIS work sheet
// @Tags worksheets
// @Security BearerAuth
// @Param request body RejectRequest false "Rejection reason"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Failure 403 {object} Response
// @Router /worksheets/{id}/reject [post]
func (h *WorkSheetHandler) Reject(c echo.Context) error {
	id, err := parseIDParam(c, "id", apperr.MsgSheetNotFound)
	if err != nil {
		return respondError(c, err)
	}
	var req RejectRequest
	_ = c.Bind(&req) // body is optional

	sheet, err := h.sheetService.Reject(c.Request().Context(), CurrentIdentity(c), id, req.Motif)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, sheet)
}

// ExpenseRequest is the expense creation payload.
type ExpenseRequest struct {
	Categorie      string  `json:"categorie" validate:"required"`
	Montant        string  `json:"montant" validate:"required"`
	Description    string  `json:"description"`
	JustificatifID *string `json:"justificatifId"`
}

// AddExpense godoc
// @Summary Add an expense to a work sheet (not allowed once VALIDE)
// @Tags worksheets
// @Security BearerAuth
// @Param request body ExpenseRequest true "Expense data"
// @Success 201 {object} Response
// @Failure 403 {object} Response
// @Router /worksheets/{id}/frais [post]
func (h *WorkSheetHandler) AddExpense(c echo.Context) error {
	id, err := parseIDParam(c, "id", apperr.MsgSheetNotFound)
	if err != nil {
		return respondError(c, err)
	}
	var req ExpenseRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	amount, err := decimal.NewFromString(req.Montant)
	if err != nil {
		return respondError(c, apperr.Validation(apperr.MsgValidationFailed,
			map[string]string{"montant": "Montant invalide"}))
	}

	in := service.ExpenseInput{
		Categorie:   model.ExpenseCategory(req.Categorie),
		Montant:     amount,
		Description: req.Description,
	}
	if req.JustificatifID != nil {
		justificatifID, err := uuid.Parse(*req.JustificatifID)
		if err != nil {
			return respondError(c, apperr.NotFound(apperr.MsgAttachmentNotFound))
		}
		in.JustificatifID = &justificatifID
	}

	expense, err := h.sheetService.AddExpense(c.Request().Context(), CurrentIdentity(c), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return respondCreated(c, "Frais ajouté", expense)
}

// ListExpenses godoc
// @Summary List the expenses of a work sheet
// @Tags worksheets
// @Security BearerAuth
// @Success 200 {object} Response
// @Failure 404 {object} Response
// @Router /worksheets/{id}/frais [get]
func (h *WorkSheetHandler) ListExpenses(c echo.Context) error {
	id, err := parseIDParam(c, "id", apperr.MsgSheetNotFound)
	if err != nil {
		return respondError(c, err)
	}
	expenses, err := h.sheetService.ListExpenses(c.Request().Context(), CurrentIdentity(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, expenses)
}

// DeleteExpense godoc
// @Summary Remove an expense from a work sheet (not allowed once VALIDE)
// @Tags worksheets
// @Security BearerAuth
// @Success 200 {object} Response
// @Failure 403 {object} Response
// @Router /worksheets/{id}/frais/{fraisId} [delete]
func (h *WorkSheetHandler) DeleteExpense(c echo.Context) error {
	id, err := parseIDParam(c, "id", apperr.MsgSheetNotFound)
	if err != nil {
		return respondError(c, err)
	}
	expenseID, err := parseIDParam(c, "fraisId", apperr.MsgExpenseNotFound)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.sheetService.DeleteExpense(c.Request().Context(), CurrentIdentity(c), id, expenseID); err != nil {
		return respondError(c, err)
	}
	return respondMessage(c, "Frais supprimé")
}
