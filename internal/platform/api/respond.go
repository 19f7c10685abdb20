package api

import (
	"errors"

	"github.com/labstack/echo/v4"
)

// Envelope is the uniform response body: {success, data, message}.
type Envelope struct {
	Success bool              `json:"success"`
	Data    interface{}       `json:"data,omitempty"`
	Message string            `json:"message,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// OK writes a success envelope with the given payload.
func OK(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, Envelope{Success: true, Data: data})
}

// Fail classifies err and writes a failure envelope. Validation errors
// include their per-field messages so clients can render inline errors.
func Fail(c echo.Context, err error) error {
	env := Envelope{Success: false, Message: userMessage(err)}
	var e *Error
	if errors.As(err, &e) && e.Kind == KindValidation {
		env.Fields = e.Fields
	}
	return c.JSON(HTTPStatus(err), env)
}

func userMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	if err != nil {
		return err.Error()
	}
	return "request failed"
}
