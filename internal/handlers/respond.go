package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/finance-tracker/backend/internal/auth"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = time.RFC3339
)

var (
	errInvalidPayload = errors.New("invalid payload")
	errValidation     = errors.New("validation failed")
	errInvalidDate    = errors.New("date must be in YYYY-MM-DD format")
)

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": message})
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
}

func conflict(c echo.Context, message string) error {
	return c.JSON(http.StatusConflict, map[string]string{"error": message})
}

func notFound(c echo.Context, message string) error {
	return c.JSON(http.StatusNotFound, map[string]string{"error": message})
}

func forbidden(c echo.Context) error {
	return c.JSON(http.StatusForbidden, map[string]string{"error": "access denied"})
}

func serverError(c echo.Context) error {
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}

// bindAndValidate разбирает тело запроса и проверяет теги validate.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return errInvalidPayload
	}
	if err := c.Validate(req); err != nil {
		return errValidation
	}
	return nil
}

func currentUserID(c echo.Context) (uuid.UUID, bool) {
	return auth.UserIDFromContext(c)
}

// parseDay разбирает дату YYYY-MM-DD. Допускается полная метка времени,
// от которой берется календарный день.
func parseDay(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if len(value) < len(dateLayout) {
		return time.Time{}, errInvalidDate
	}

	day, err := time.Parse(dateLayout, value[:len(dateLayout)])
	if err != nil {
		return time.Time{}, errInvalidDate
	}
	return day, nil
}
