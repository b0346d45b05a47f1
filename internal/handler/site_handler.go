package handler

import (
	"time"

	"github.com/labstack/echo/v4"

	"fieldtrack/internal/apperr"
	"fieldtrack/internal/pagination"
	"fieldtrack/internal/service"
)

// SiteHandler handles site endpoints.
type SiteHandler struct {
	siteService  service.SiteService
	sheetService service.WorkSheetService
}

// NewSiteHandler creates a new site handler.
func NewSiteHandler(siteService service.SiteService, sheetService service.WorkSheetService) *SiteHandler {
	return &SiteHandler{siteService: siteService, sheetService: sheetService}
}

// SiteRequest is the site create/update payload.
type SiteRequest struct {
	Nom         string `json:"nom" validate:"required"`
	Adresse     string `json:"adresse" validate:"required"`
	Client      string `json:"client" validate:"required"`
	Reference   string `json:"reference" validate:"required"`
	DateDebut   string `json:"dateDebut" validate:"required"`
	DateFin     string `json:"dateFin"`
	Description string `json:"description"`
}

func (r *SiteRequest) toInput() (service.SiteInput, error) {
	start, err := time.Parse("2006-01-02", r.DateDebut)
	if err != nil {
		return service.SiteInput{}, apperr.Validation(apperr.MsgValidationFailed,
			map[string]string{"dateDebut": "Date invalide (attendu AAAA-MM-JJ)"})
	}
	var end *time.Time
	if r.DateFin != "" {
		parsed, err := time.Parse("2006-01-02", r.DateFin)
		if err != nil {
			return service.SiteInput{}, apperr.Validation(apperr.MsgValidationFailed,
				map[string]string{"dateFin": "Date invalide (attendu AAAA-MM-JJ)"})
		}
		end = &parsed
	}
	return service.SiteInput{
		Nom:         r.Nom,
		Adresse:     r.Adresse,
		Client:      r.Client,
		Reference:   r.Reference,
		DateDebut:   start,
		DateFin:     end,
		Description: r.Description,
	}, nil
}

// Create godoc
// @Summary Create a site
// @Tags sites
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SiteRequest true "Site data"
// @Success 201 {object} Response
// @Failure 409 {object} Response
// @Router /sites [post]
func (h *SiteHandler) Create(c echo.Context) error {
	var req SiteRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	in, err := req.toInput()
	if err != nil {
		return respondError(c, err)
	}

	site, err := h.siteService.Create(c.Request().Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return respondCreated(c, "Chantier créé", site)
}

// Update godoc
// @Summary Update a site
// @Tags sites
// @Security BearerAuth
// @Router /sites/{id} [put]
func (h *SiteHandler) Update(c echo.Context) error {
	id, err := parseIDParam(c, "id", apperr.MsgSiteNotFound)
	if err != nil {
		return respondError(c, err)
	}
	var req SiteRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	in, err := req.toInput()
	if err != nil {
		return respondError(c, err)
	}

	site, err := h.siteService.Update(c.Request().Context(), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, site)
}

// SetActive godoc
// @Summary Activate or deactivate a site
// @Tags sites
// @Security BearerAuth
// @Router /sites/{id}/actif [patch]
func (h *SiteHandler) SetActive(c echo.Context) error {
	id, err := parseIDParam(c, "id", apperr.MsgSiteNotFound)
	if err != nil {
		return respondError(c, err)
	}
	var req SetActiveRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	site, err := h.siteService.SetActive(c.Request().Context(), id, *req.Actif)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, site)
}

// Delete godoc
// @Summary Delete a site
// @Tags sites
// @Security BearerAuth
// @Router /sites/{id} [delete]
func (h *SiteHandler) Delete(c echo.Context) error {
	id, err := parseIDParam(c, "id", apperr.MsgSiteNotFound)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.siteService.Delete(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return respondMessage(c, "Chantier supprimé")
}

// Get godoc
// @Summary Get a site
// @Tags sites
// @Security BearerAuth
// @Router /sites/{id} [get]
func (h *SiteHandler) Get(c echo.Context) error {
	id, err := parseIDParam(c, "id", apperr.MsgSiteNotFound)
	if err != nil {
		return respondError(c, err)
	}
	site, err := h.siteService.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, site)
}

// List godoc
// @Summary List sites
// @Tags sites
// @Security BearerAuth
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param actif query bool false "Only active sites"
// @Router /sites [get]
func (h *SiteHandler) List(c echo.Context) error {
	page, limit, offset := pagination.Params(c.QueryParam("page"), c.QueryParam("limit"))
	actifOnly := c.QueryParam("actif") == "true"

	sites, meta, err := h.siteService.List(c.Request().Context(), actifOnly, page, limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return respondPage(c, sites, meta)
}

// Stats godoc
// @Summary Aggregated stats for a site
// @Tags sites
// @Security BearerAuth
// @Router /sites/{id}/stats [get]
func (h *SiteHandler) Stats(c echo.Context) error {
	id, err := parseIDParam(c, "id", apperr.MsgSiteNotFound)
	if err != nil {
		return respondError(c, err)
	}
	stats, err := h.sheetService.SiteStats(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, stats)
}
