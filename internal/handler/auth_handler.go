package handler

import (
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"fieldtrack/internal/auth"
	"fieldtrack/internal/model"
	"fieldtrack/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
	jwtService  *auth.JWTService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService, jwtService *auth.JWTService) *AuthHandler {
	return &AuthHandler{authService: authService, jwtService: jwtService}
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Email      string `json:"email" validate:"required,email"`
	MotDePasse string `json:"motDePasse" validate:"required"`
}

// LoginResponse carries the issued tokens and the authenticated user.
type LoginResponse struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	Utilisateur  *model.User `json:"utilisateur"`
}

// Login godoc
// @Summary Authenticate and get a token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} Response
// @Failure 401 {object} Response
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	pair, user, err := h.authService.Login(c.Request().Context(), req.Email, req.MotDePasse)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, LoginResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		Utilisateur:  user,
	})
}

// RefreshRequest is the token rotation payload.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// Refresh godoc
// @Summary Rotate a refresh token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest true "Refresh token"
// @Success 200 {object} Response
// @Failure 401 {object} Response
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req RefreshRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	pair, err := h.authService.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, pair)
}

// Logout godoc
// @Summary Revoke the current session
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body RefreshRequest true "Refresh token"
// @Success 200 {object} Response
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	var req RefreshRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	accessTokenID := ""
	if token, ok := c.Get("user").(*jwt.Token); ok {
		if claims, ok := token.Claims.(*auth.Claims); ok {
			accessTokenID = claims.ID
		}
	}

	if err := h.authService.Logout(c.Request().Context(), accessTokenID, req.RefreshToken); err != nil {
		return respondError(c, err)
	}
	return respondMessage(c, "Déconnexion réussie")
}

// RegisterRequest is the provisioning payload.
type RegisterRequest struct {
	Email      string     `json:"email" validate:"required,email"`
	MotDePasse string     `json:"motDePasse" validate:"required,min=8"`
	Role       model.Role `json:"role" validate:"required"`
	MonteurID  *uuid.UUID `json:"monteurId,omitempty"`
}

// Register godoc
// @Summary Provision a user account
// @Description Open for the very first account; afterwards restricted to ADMIN.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Account data"
// @Success 201 {object} Response
// @Failure 403 {object} Response
// @Failure 409 {object} Response
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	// The route is public for bootstrap; an Authorization header, when
	// present and valid, identifies the provisioning admin.
	actor := h.optionalIdentity(c)

	user, err := h.authService.Register(c.Request().Context(), actor, req.Email, req.MotDePasse, req.Role, req.MonteurID)
	if err != nil {
		return respondError(c, err)
	}
	return respondCreated(c, "Compte créé", user)
}

func (h *AuthHandler) optionalIdentity(c echo.Context) *service.Identity {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if !strings.HasPrefix(header, "Bearer ") {
		return nil
	}
	claims, err := h.jwtService.ValidateToken(strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		return nil
	}
	return &service.Identity{
		UserID:   claims.UserID,
		Email:    claims.Email,
		Role:     claims.Role,
		WorkerID: claims.WorkerID,
	}
}

// ChangePasswordRequest is the password change payload.
type ChangePasswordRequest struct {
	MotDePasseActuel  string `json:"motDePasseActuel" validate:"required"`
	NouveauMotDePasse string `json:"nouveauMotDePasse" validate:"required,min=8"`
}

// ChangePassword godoc
// @Summary Change the caller's password and revoke all sessions
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ChangePasswordRequest true "Passwords"
// @Success 200 {object} Response
// @Failure 401 {object} Response
// @Router /auth/change-password [post]
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	var req ChangePasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	id := CurrentIdentity(c)
	if err := h.authService.ChangePassword(c.Request().Context(), id, req.MotDePasseActuel, req.NouveauMotDePasse); err != nil {
		return respondError(c, err)
	}
	return respondMessage(c, "Mot de passe modifié")
}

// Me godoc
// @Summary Return the authenticated caller's identity
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response
// @Router /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	id := CurrentIdentity(c)
	return respondOK(c, echo.Map{
		"id":        id.UserID,
		"email":     id.Email,
		"role":      id.Role,
		"monteurId": id.WorkerID,
	})
}
