package handler

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"fieldtrack/internal/apperr"
	"fieldtrack/internal/pagination"
	"fieldtrack/internal/service"
)

// FileHandler handles attachment endpoints.
type FileHandler struct {
	attachmentService service.AttachmentService
}

// NewFileHandler creates a new file handler.
func NewFileHandler(attachmentService service.AttachmentService) *FileHandler {
	return &FileHandler{attachmentService: attachmentService}
}

func optionalSheetID(c echo.Context) (*uuid.UUID, error) {
	v := c.FormValue("feuilleId")
	if v == "" {
		return nil, nil
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return nil, apperr.NotFound(apperr.MsgSheetNotFound)
	}
	return &id, nil
}

// Upload godoc
// @Summary Upload a file, optionally linked to a work sheet
// @Tags files
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param fichier formData file true "File"
// @Param description formData string false "Description"
// @Param feuilleId formData string false "Work sheet id"
// @Success 201 {object} Response
// @Router /files [post]
func (h *FileHandler) Upload(c echo.Context) error {
	file, err := c.FormFile("fichier")
	if err != nil {
		return respondError(c, apperr.Validation(apperr.MsgValidationFailed,
			map[string]string{"fichier": "Fichier manquant"}))
	}
	sheetID, err := optionalSheetID(c)
	if err != nil {
		return respondError(c, err)
	}

	attachment, err := h.attachmentService.Upload(c.Request().Context(), file, c.FormValue("description"), sheetID)
	if err != nil {
		return respondError(c, err)
	}
	return respondCreated(c, "Fichier enregistré", attachment)
}

// UploadMultiple godoc
// @Summary Upload several files at once
// @Tags files
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param fichiers formData file true "Files"
// @Param feuilleId formData string false "Work sheet id"
// @Success 201 {object} Response
// @Router /files/multiple [post]
func (h *FileHandler) UploadMultiple(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil || len(form.File["fichiers"]) == 0 {
		return respondError(c, apperr.Validation(apperr.MsgValidationFailed,
			map[string]string{"fichiers": "Fichiers manquants"}))
	}
	sheetID, err := optionalSheetID(c)
	if err != nil {
		return respondError(c, err)
	}

	attachments, err := h.attachmentService.UploadMultiple(c.Request().Context(), form.File["fichiers"], sheetID)
	if err != nil {
		return respondError(c, err)
	}
	return respondCreated(c, "Fichiers enregistrés", attachments)
}

// Get godoc
// @Summary Get a file's metadata with a fresh URL
// @Tags files
// @Security BearerAuth
// @Router /files/{id} [get]
func (h *FileHandler) Get(c echo.Context) error {
	id, err := parseIDParam(c, "id", apperr.MsgAttachmentNotFound)
	if err != nil {
		return respondError(c, err)
	}
	attachment, err := h.attachmentService.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, attachment)
}

// List godoc
// @Summary List files
// @Tags files
// @Security BearerAuth
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Router /files [get]
func (h *FileHandler) List(c echo.Context) error {
	page, limit, offset := pagination.Params(c.QueryParam("page"), c.QueryParam("limit"))
	attachments, meta, err := h.attachmentService.List(c.Request().Context(), page, limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return respondPage(c, attachments, meta)
}

// Delete godoc
// @Summary Delete a file from storage and its metadata
// @Tags files
// @Security BearerAuth
// @Router /files/{id} [delete]
func (h *FileHandler) Delete(c echo.Context) error {
	id, err := parseIDParam(c, "id", apperr.MsgAttachmentNotFound)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.attachmentService.Delete(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return respondMessage(c, "Fichier supprimé")
}

// AttachRequest links a standalone file to a work sheet.
type AttachRequest struct {
	FeuilleID string `json:"feuilleId" validate:"required"`
}

// Attach godoc
// @Summary Link a standalone file to a work sheet
// @Tags files
// @Security BearerAuth
// @Param request body AttachRequest true "Work sheet id"
// @Router /files/{id}/attach [patch]
func (h *FileHandler) Attach(c echo.Context) error {
	id, err := parseIDParam(c, "id", apperr.MsgAttachmentNotFound)
	if err != nil {
		return respondError(c, err)
	}
	var req AttachRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	sheetID, err := uuid.Parse(req.FeuilleID)
	if err != nil {
		return respondError(c, apperr.NotFound(apperr.MsgSheetNotFound))
	}

	attachment, err := h.attachmentService.Attach(c.Request().Context(), id, sheetID)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, attachment)
}

// Detach godoc
// @Summary Unlink a file from its work sheet
// @Tags files
// @Security BearerAuth
// @Router /files/{id}/detach [patch]
func (h *FileHandler) Detach(c echo.Context) error {
	id, err := parseIDParam(c, "id", apperr.MsgAttachmentNotFound)
	if err != nil {
		return respondError(c, err)
	}
	attachment, err := h.attachmentService.Detach(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, attachment)
}
