package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taxdesk/taxdesk/internal/auth"
	clientdomain "github.com/taxdesk/taxdesk/internal/client/domain"
	documentdomain "github.com/taxdesk/taxdesk/internal/document/domain"
	magiclinkdomain "github.com/taxdesk/taxdesk/internal/magiclink/domain"
	messagedomain "github.com/taxdesk/taxdesk/internal/message/domain"
	organizationdomain "github.com/taxdesk/taxdesk/internal/organization/domain"
	taxcasedomain "github.com/taxdesk/taxdesk/internal/taxcase/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type          string            `json:"type"`
	Message       string            `json:"message"`
	Errors        []ValidationError `json:"errors,omitempty"`
	CurrentStatus string            `json:"current_status,omitempty"`
	ValidStatuses []string          `json:"valid_statuses,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
	ErrTooManyReqs    = errors.New("too_many_requests")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{Field: field, Code: code, Message: message},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	// Rejected status transitions carry the corrective choices so the UI
	// can re-render valid options.
	var transitionErr *taxcasedomain.InvalidTransitionError
	if errors.As(err, &transitionErr) {
		valid := make([]string, 0, len(transitionErr.Allowed))
		for _, st := range transitionErr.Allowed {
			valid = append(valid, string(st))
		}
		return http.StatusUnprocessableEntity, errorPayload{
			Type:          "invalid_transition",
			Message:       transitionErr.Error(),
			CurrentStatus: string(transitionErr.Current),
			ValidStatuses: valid,
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrInactiveStaff):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden),
		errors.Is(err, organizationdomain.ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case errors.Is(err, clientdomain.ErrDuplicateAssignment):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "staff member is already assigned to this client",
		}
	case errors.Is(err, ErrTooManyReqs):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many requests",
		}
	case isPortalTokenError(err):
		// Handled with per-code bodies on the portal routes; reaching here
		// means a staff route surfaced one.
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "invalid_link",
			Message: err.Error(),
		}
	case errors.Is(err, documentdomain.ErrCollisionCeiling):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "could not find a free storage key for that name",
		}
	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: err.Error(),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isPortalTokenError(err error) bool {
	switch {
	case errors.Is(err, magiclinkdomain.ErrInvalidToken),
		errors.Is(err, magiclinkdomain.ErrLinkDeactivated),
		errors.Is(err, magiclinkdomain.ErrExpiredToken),
		errors.Is(err, magiclinkdomain.ErrFormLocked):
		return true
	default:
		return false
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, organizationdomain.ErrInvalidName),
		errors.Is(err, organizationdomain.ErrInvalidEmail),
		errors.Is(err, organizationdomain.ErrInvalidRole),
		errors.Is(err, organizationdomain.ErrInvalidOrganization),
		errors.Is(err, clientdomain.ErrInvalidName),
		errors.Is(err, clientdomain.ErrInvalidOrganization),
		errors.Is(err, clientdomain.ErrInvalidID),
		errors.Is(err, taxcasedomain.ErrInvalidOrganization),
		errors.Is(err, taxcasedomain.ErrInvalidClient),
		errors.Is(err, taxcasedomain.ErrInvalidTaxYear),
		errors.Is(err, taxcasedomain.ErrInvalidStatus),
		errors.Is(err, taxcasedomain.ErrInvalidID),
		errors.Is(err, magiclinkdomain.ErrInvalidType),
		errors.Is(err, magiclinkdomain.ErrInvalidCase),
		errors.Is(err, magiclinkdomain.ErrNotAFormLink),
		errors.Is(err, documentdomain.ErrInvalidCase),
		errors.Is(err, documentdomain.ErrInvalidName),
		errors.Is(err, documentdomain.ErrInvalidCategory),
		errors.Is(err, messagedomain.ErrInvalidCase),
		errors.Is(err, messagedomain.ErrEmptyBody):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, organizationdomain.ErrNotFound),
		errors.Is(err, organizationdomain.ErrStaffNotFound),
		errors.Is(err, clientdomain.ErrNotFound),
		errors.Is(err, clientdomain.ErrAssignmentNotFound),
		errors.Is(err, taxcasedomain.ErrNotFound),
		errors.Is(err, magiclinkdomain.ErrLinkNotFound),
		errors.Is(err, magiclinkdomain.ErrFormNotFound),
		errors.Is(err, documentdomain.ErrNotFound),
		errors.Is(err, messagedomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}
