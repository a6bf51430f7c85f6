package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/base/delivery"
	"github.com/x-xyz/goauction/domain/auction"
	"github.com/x-xyz/goauction/middleware"
)

type handler struct {
	auction auction.UseCase
}

func New(e *echo.Echo, au auction.UseCase, mw *middleware.GoMiddleware) {
	h := &handler{au}
	gs := e.Group("/system")
	gs.GET("/status", h.getStatus)
	gs.GET("/categories", h.getCategoryCounts)
	gs.GET("/maintenance", h.getMaintenance)
	gs.PUT("/maintenance", h.setMaintenance, mw.AdminOnly())
}

type maintenanceReq struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

type maintenanceResp struct {
	Enabled bool `json:"enabled"`
}

func (h *handler) getStatus(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	return delivery.MakeJsonResp(c, http.StatusOK, h.auction.Status(ctx))
}

func (h *handler) getCategoryCounts(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	return delivery.MakeJsonResp(c, http.StatusOK, h.auction.GetCategoryCounts(ctx))
}

func (h *handler) getMaintenance(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	return delivery.MakeJsonResp(c, http.StatusOK, maintenanceResp{h.auction.IsMaintenance(ctx)})
}

func (h *handler) setMaintenance(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	p := &maintenanceReq{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, auction.NewValidationError(nil, "enabled is required"))
	}

	h.auction.SetMaintenance(ctx, *p.Enabled)
	return delivery.MakeJsonResp(c, http.StatusOK, maintenanceResp{*p.Enabled})
}
