package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"fieldtrack/internal/apperr"
	"fieldtrack/internal/pagination"
	"fieldtrack/internal/service"
)

// Response is the shared envelope of every API response.
type Response struct {
	Success    bool              `json:"success"`
	Message    string            `json:"message,omitempty"`
	Data       interface{}       `json:"data,omitempty"`
	Errors     map[string]string `json:"errors,omitempty"`
	Pagination *pagination.Meta  `json:"pagination,omitempty"`
}

func respondOK(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

func respondMessage(c echo.Context, message string) error {
	return c.JSON(http.StatusOK, Response{Success: true, Message: message})
}

func respondCreated(c echo.Context, message string, data interface{}) error {
	return c.JSON(http.StatusCreated, Response{Success: true, Message: message, Data: data})
}

func respondPage(c echo.Context, data interface{}, meta *pagination.Meta) error {
	return c.JSON(http.StatusOK, Response{Success: true, Data: data, Pagination: meta})
}

// respondError translates an application error into the envelope. Unexpected
// errors are logged with context and reported as a generic 500.
func respondError(c echo.Context, err error) error {
	appErr := apperr.From(err)
	if appErr.Kind == apperr.KindInternal {
		log.Error().Err(err).Str("path", c.Path()).Str("method", c.Request().Method).Msg("handler: internal error")
	}
	return c.JSON(appErr.StatusCode(), Response{
		Success: false,
		Message: appErr.Message,
		Errors:  appErr.Fields,
	})
}

// bindAndValidate binds the request body and runs schema validation,
// translating failures into the 400 envelope with a per-field error map.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return apperr.Validation(apperr.MsgInvalidBody, nil)
	}
	if err := c.Validate(req); err != nil {
		fields := map[string]string{}
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				fields[fe.Field()] = "Champ invalide ou manquant"
			}
		}
		return apperr.Validation(apperr.MsgValidationFailed, fields)
	}
	return nil
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

const identityKey = "identity"

// SetIdentity stores the authenticated caller on the request context.
func SetIdentity(c echo.Context, id service.Identity) {
	c.Set(identityKey, id)
}

// CurrentIdentity returns the authenticated caller; zero value on public routes.
func CurrentIdentity(c echo.Context) service.Identity {
	id, _ := c.Get(identityKey).(service.Identity)
	return id
}
