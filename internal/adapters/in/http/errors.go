package http

import (
	"errors"
	"net/http"

	"patternfactory/internal/core/domain/model/order"
	"patternfactory/internal/core/ports"
	"patternfactory/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// Error is the body of every failed request.
type Error struct {
	ErrorKind        string `json:"error_kind"`
	CurrentState     string `json:"current_state,omitempty"`
	AttemptedTrigger string `json:"attempted_trigger,omitempty"`
	Message          string `json:"message"`
}

// writeError maps err onto a status code and a structured body. Unknown
// errors become a 500 without leaking their text.
func writeError(c echo.Context, trigger order.Trigger, err error) error {
	status, kind := classify(err)
	body := Error{
		ErrorKind:        kind,
		AttemptedTrigger: string(trigger),
		Message:          err.Error(),
	}
	if current, ok := order.CurrentState(err); ok {
		body.CurrentState = current.String()
	}
	if status == http.StatusInternalServerError {
		body.Message = "internal error"
		c.Logger().Error(err)
	}
	return c.JSON(status, body)
}

func classify(err error) (int, string) {
	if kind := order.ErrorKind(err); kind != "" {
		switch kind {
		case "invalid_payload":
			return http.StatusUnprocessableEntity, kind
		case "unknown_state":
			return http.StatusUnprocessableEntity, kind
		default:
			return http.StatusConflict, kind
		}
	}

	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, errs.ErrVersionIsInvalid):
		return http.StatusConflict, "stale_write"
	case errors.Is(err, ports.ErrOrderAlreadyExists):
		return http.StatusConflict, "already_exists"
	case errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return http.StatusUnprocessableEntity, "invalid_value"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
