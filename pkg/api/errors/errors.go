// Package errors maps service errors onto sanitized JSON responses. The
// real error goes to the log; the client sees a stable code and a safe
// message.
package errors

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dmaldonado/nestdesk/pkg/domain"
	"github.com/dmaldonado/nestdesk/pkg/models"
)

// Respond picks the response from the error's domain code. Unknown errors
// become a generic 500.
func Respond(c echo.Context, err error) error {
	switch {
	case domain.IsNotFound(err):
		return NotFound(c, err)
	case domain.IsValidation(err):
		return Validation(c, err)
	case domain.IsUnauthorized(err):
		return Unauthorized(c)
	case domain.IsForbidden(err):
		return Forbidden(c, err)
	case domain.IsConflict(err):
		return Conflict(c, err)
	case domain.IsBadRequest(err):
		return BadRequest(c, err)
	default:
		return Internal(c, err)
	}
}

// Validation rejects bad input without echoing it back.
func Validation(c echo.Context, err error) error {
	log.Printf("[VALIDATION ERROR] Path: %s, Error: %v", c.Request().URL.Path, err)

	message := "Invalid request data. Please check your input and try again."
	if domainMsg := domainMessage(err); domainMsg != "" {
		message = domainMsg
	}
	return c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   "validation_error",
		Message: message,
	})
}

// BadRequest covers well-formed requests that cannot be served.
func BadRequest(c echo.Context, err error) error {
	message := "The request cannot be processed."
	if domainMsg := domainMessage(err); domainMsg != "" {
		message = domainMsg
	}
	return c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   "bad_request",
		Message: message,
	})
}

// Internal hides everything behind a generic 500.
func Internal(c echo.Context, err error) error {
	log.Printf("[INTERNAL ERROR] Path: %s, Error: %v", c.Request().URL.Path, err)

	return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred. Please try again later.",
	})
}

// Unauthorized rejects an unauthenticated caller.
func Unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
		Error:   "unauthorized",
		Message: "You are not authorized to access this resource.",
	})
}

// Forbidden rejects an authenticated caller without permission.
func Forbidden(c echo.Context, err error) error {
	message := "You do not have permission to perform this action."
	if domainMsg := domainMessage(err); domainMsg != "" {
		message = domainMsg
	}
	return c.JSON(http.StatusForbidden, models.ErrorResponse{
		Error:   "forbidden",
		Message: message,
	})
}

// NotFound reports a missing resource.
func NotFound(c echo.Context, err error) error {
	message := "The requested resource was not found."
	if domainMsg := domainMessage(err); domainMsg != "" {
		message = domainMsg
	}
	return c.JSON(http.StatusNotFound, models.ErrorResponse{
		Error:   "not_found",
		Message: message,
	})
}

// Conflict reports a state conflict; domain messages are safe to expose.
func Conflict(c echo.Context, err error) error {
	message := "The request conflicts with the current state."
	if domainMsg := domainMessage(err); domainMsg != "" {
		message = domainMsg
	}
	return c.JSON(http.StatusConflict, models.ErrorResponse{
		Error:   "conflict",
		Message: message,
	})
}

func domainMessage(err error) string {
	return domain.Message(err)
}
