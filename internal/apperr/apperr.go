package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an application error for HTTP mapping.
type Kind int

const (
	KindValidation Kind = iota
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindConflict
	KindInvalidTransition
	KindInternal
)

// Error is an application error carrying a user-facing message and, for
// validation failures, a per-field error map suitable for form rendering.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	cause   error
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// StatusCode maps the error kind to an HTTP status.
func (e *Error) StatusCode() int {
	switch e.Kind {
	case KindValidation, KindInvalidTransition:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Validation builds a 400 error with a field-error map.
func Validation(message string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

// Unauthorized builds a 401 error.
func Unauthorized(message string) *Error {
	return &Error{Kind: KindAuthentication, Message: message}
}

// Forbidden builds a 403 error.
func Forbidden(message string) *Error {
	return &Error{Kind: KindAuthorization, Message: message}
}

// NotFound builds a 404 error.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Conflict builds a 409 error.
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// InvalidTransition builds a 400 error for a state machine precondition failure.
func InvalidTransition(message string) *Error {
	return &Error{Kind: KindInvalidTransition, Message: message}
}

// Internal wraps an unexpected error behind a generic message.
func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Message: MsgInternal, cause: cause}
}

// From extracts an *Error from err, wrapping unexpected errors as internal.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

// User-facing messages (French locale).
const (
	MsgInternal           = "Une erreur interne est survenue"
	MsgInvalidCredentials = "Email ou mot de passe incorrect"
	MsgInvalidToken       = "Token invalide ou expiré"
	MsgAccessDenied       = "Accès refusé"
	MsgInvalidBody        = "Requête invalide"
	MsgValidationFailed   = "Certains champs sont invalides"

	MsgEmailTaken     = "Cet email est déjà utilisé"
	MsgCodeTaken      = "Ce code d'identification est déjà utilisé"
	MsgReferenceTaken = "Cette référence de chantier est déjà utilisée"

	MsgUserNotFound       = "Utilisateur non trouvé"
	MsgWorkerNotFound     = "Monteur non trouvé"
	MsgSiteNotFound       = "Chantier non trouvé"
	MsgSheetNotFound      = "Feuille de travail non trouvée"
	MsgExpenseNotFound    = "Frais non trouvé"
	MsgAttachmentNotFound = "Fichier non trouvé"
	MsgJobNotFound        = "Tâche planifiée non trouvée"

	MsgEndBeforeStart = "L'heure de fin doit être après l'heure de début"
	MsgBadTimeFormat  = "Format d'heure invalide (attendu HH:MM)"
	MsgSheetFinalized = "Cette feuille de travail est validée et ne peut plus être modifiée"

	MsgSubmitNotDraft    = "Seule une feuille en brouillon peut être soumise"
	MsgValidateNotSubmit = "Seule une feuille soumise peut être validée"
	MsgRejectNotSubmit   = "Seule une feuille soumise peut être rejetée"
)
