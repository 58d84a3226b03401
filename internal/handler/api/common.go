package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Sammk21/medusa-v2/internal/models"
	"github.com/Sammk21/medusa-v2/internal/payment"
)

// Response helpers for the {status, msg, obj} envelope.
func successResponse(c echo.Context, msg string, obj interface{}) error {
	return c.JSON(http.StatusOK, models.APIResponse{
		Status: true,
		Msg:    msg,
		Obj:    obj,
	})
}

func errorResponse(c echo.Context, code int, msg string, obj interface{}) error {
	return c.JSON(code, models.APIResponse{
		Status: false,
		Msg:    msg,
		Obj:    obj,
	})
}

// paymentErrorResponse maps a reconciler error onto an HTTP status.
func paymentErrorResponse(c echo.Context, err error) error {
	perr := payment.GetError(err)
	if perr == nil {
		return errorResponse(c, http.StatusInternalServerError, "Internal error", nil)
	}
	return errorResponse(c, statusForKind(perr.Kind), perr.Message, perr)
}

func statusForKind(kind payment.ErrorKind) int {
	switch kind {
	case payment.KindInvalidAmount:
		return http.StatusBadRequest
	case payment.KindInvalidState:
		return http.StatusConflict
	case payment.KindSignatureInvalid:
		return http.StatusUnauthorized
	case payment.KindGateway:
		return http.StatusBadGateway
	case payment.KindNotSupported:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func paginatedResponse(data interface{}, total int64, page, limit int) models.PaginatedResponse {
	return models.PaginatedResponse{
		Data:       data,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}
}

func totalPages(total int64, limit int) int {
	if limit <= 0 {
		limit = 50
	}
	pages := int(total) / limit
	if int(total)%limit != 0 {
		pages++
	}
	if pages == 0 {
		pages = 1
	}
	return pages
}

// bindAndValidate decodes the JSON body into req and runs its validate tags.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return errors.New("invalid request body")
	}
	return c.Validate(req)
}

// outcomeKind labels an operation result for metrics.
func outcomeKind(err error) string {
	if err == nil {
		return "ok"
	}
	if kind := payment.KindOf(err); kind != "" {
		return string(kind)
	}
	return "internal"
}
