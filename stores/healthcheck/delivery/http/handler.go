package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/base/delivery"
	hcdomain "github.com/x-xyz/goauction/domain/healthcheck"
)

type handler struct {
	hc hcdomain.HealthCheckUsecase
}

// New mounts GET /health. An unhealthy report is still rendered, with 503.
func New(e *echo.Echo, hc hcdomain.HealthCheckUsecase) {
	h := &handler{hc: hc}
	e.GET("/health", h.check)
}

func (h *handler) check(c echo.Context) error {
	report := h.hc.Check(c.Get("ctx").(ctx.Ctx))
	status := http.StatusOK
	if !report.Healthy {
		status = http.StatusServiceUnavailable
	}
	return delivery.MakeJsonResp(c, status, report)
}
