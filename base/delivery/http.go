package delivery

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/goauction/domain"
	"github.com/x-xyz/goauction/domain/auction"
	"github.com/x-xyz/goauction/service/query"
)

type JsonResponseStatus string

const (
	JsonResponseStatusSuccess JsonResponseStatus = "success"
	JsonResponseStatusFail    JsonResponseStatus = "fail"
)

type JsonResponse struct {
	Data   interface{}        `json:"data"`
	Status JsonResponseStatus `json:"status"`
}

var kindStatus = map[auction.Kind]int{
	auction.KindValidation:        http.StatusBadRequest,
	auction.KindNotFound:          http.StatusNotFound,
	auction.KindStateConflict:     http.StatusConflict,
	auction.KindSystemUnavailable: http.StatusServiceUnavailable,
	auction.KindStorageFailure:    http.StatusInternalServerError,
}

// StatusOf maps an error to its http status. Unclassified errors keep
// fallback unless they wrap a known sentinel.
func StatusOf(err error, fallback int) int {
	var e *auction.Error
	if errors.As(err, &e) {
		return kindStatus[e.Kind]
	}
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, query.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrBadParamInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUnavailable):
		return http.StatusServiceUnavailable
	}
	return fallback
}

func MakeJsonResp(c echo.Context, status int, data interface{}) error {
	if err, ok := data.(error); ok {
		status = StatusOf(err, status)
		var e *auction.Error
		if errors.As(err, &e) {
			data = e.Payload()
		} else {
			data = err.Error()
		}
	}

	if status >= 400 {
		return c.JSON(status, JsonResponse{data, JsonResponseStatusFail})
	}

	if status >= 200 && status < 300 {
		return c.JSON(status, JsonResponse{data, JsonResponseStatusSuccess})
	}

	return c.JSON(status, data)
}
