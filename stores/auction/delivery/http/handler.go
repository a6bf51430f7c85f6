package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/base/delivery"
	"github.com/x-xyz/goauction/domain/auction"
	"github.com/x-xyz/goauction/middleware"
	"github.com/x-xyz/goauction/service/cache"
)

const defaultEndingSoonWindow = time.Hour

type handler struct {
	auction auction.UseCase
}

// New registers the auction routes. queryCache is optional and fronts the
// search and ending-soon listings.
func New(e *echo.Echo, au auction.UseCase, mw *middleware.GoMiddleware, queryCache cache.Service) {
	h := &handler{au}

	cached := []echo.MiddlewareFunc{}
	if queryCache != nil {
		cached = append(cached, middleware.CacheHttp(queryCache))
	}

	gs := e.Group("/auctions")

	gs.GET("", h.getActive)

	gs.POST("", h.create)

	gs.GET("/search", h.search, cached...)

	gs.GET("/ending-soon", h.getEndingSoon, cached...)

	gs.GET("/category/:category", h.getByCategory)

	g := gs.Group("/:id")

	g.GET("", h.get)

	g.GET("/result", h.getResult)

	g.POST("/bids", h.submitBid)

	g.GET("/bids", h.getBids)

	g.GET("/bids/highest", h.getHighestBid)

	g.GET("/bids/minimum", h.getMinimumNextBid)

	g.GET("/bids/count", h.getBidCount)

	g.POST("/activate", h.activate, mw.AdminOnly())

	g.POST("/close", h.close, mw.AdminOnly())

	g.POST("/cancel", h.cancel, mw.AdminOnly())

	e.GET("/bidders/:bidderId/bids", h.getBidsByBidder)
}

type createReq struct {
	Title         string           `json:"title" validate:"required"`
	Description   string           `json:"description"`
	Category      string           `json:"category" validate:"required"`
	StartingPrice decimal.Decimal  `json:"startingPrice" validate:"decimal_gt0"`
	ReservePrice  *decimal.Decimal `json:"reservePrice" validate:"omitempty,decimal_gte0"`
	BidIncrement  *decimal.Decimal `json:"bidIncrement" validate:"omitempty,decimal_gt0"`
	StartTime     time.Time        `json:"startTime" validate:"required"`
	EndTime       time.Time        `json:"endTime" validate:"required"`
	SellerId      string           `json:"sellerId" validate:"required"`
}

// bidReq is checked by the engine so its rejections keep their order
type bidReq struct {
	BidderId string          `json:"bidderId"`
	Amount   decimal.Decimal `json:"amount"`
}

type searchReq struct {
	Keyword  string `query:"q"`
	Category string `query:"category"`
	Limit    int    `query:"limit"`
}

type pageReq struct {
	Offset int `query:"offset"`
	Limit  int `query:"limit"`
}

type bidsResp struct {
	Bids  []*auction.Bid `json:"bids"`
	Total int            `json:"total"`
}

func (h *handler) getActive(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	res, err := h.auction.GetActive(ctx)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	p := &createReq{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, auction.NewValidationError(nil, "%s", err.Error()))
	}

	res, err := h.auction.Create(ctx, auction.CreateParams{
		Title:         p.Title,
		Description:   p.Description,
		Category:      p.Category,
		StartingPrice: p.StartingPrice,
		ReservePrice:  p.ReservePrice,
		BidIncrement:  p.BidIncrement,
		StartTime:     p.StartTime,
		EndTime:       p.EndTime,
		SellerId:      p.SellerId,
	})
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusCreated, res)
}

func (h *handler) search(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	p := &searchReq{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}

	res, err := h.auction.Search(ctx, p.Keyword, p.Category, p.Limit)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) getEndingSoon(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	within := defaultEndingSoonWindow
	if s := c.QueryParam("within"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid within")
		}
		within = d
	}

	res, err := h.auction.GetEndingSoon(ctx, within)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) getByCategory(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	res, err := h.auction.GetByCategory(ctx, c.Param("category"))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) get(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	res, err := h.auction.FindOne(ctx, c.Param("id"))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) getResult(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	res, err := h.auction.GetSaleResult(ctx, c.Param("id"))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) submitBid(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	p := &bidReq{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}

	res, err := h.auction.SubmitBid(ctx, c.Param("id"), p.BidderId, p.Amount, c.RealIP())
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusCreated, res)
}

func (h *handler) getBids(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	p := &pageReq{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}

	bids, total, err := h.auction.GetBids(ctx, c.Param("id"), p.Offset, p.Limit)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, bidsResp{Bids: bids, Total: total})
}

func (h *handler) getHighestBid(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	res, err := h.auction.GetHighestBid(ctx, c.Param("id"))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	// null data when nobody has bid yet
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) getMinimumNextBid(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	res, err := h.auction.GetMinimumNextBid(ctx, c.Param("id"))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, map[string]string{
		"minimumBid": res.StringFixed(2),
	})
}

func (h *handler) getBidCount(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	return delivery.MakeJsonResp(c, http.StatusOK, map[string]int64{
		"count": h.auction.GetBidCount(ctx, c.Param("id")),
	})
}

func (h *handler) activate(c echo.Context) error {
	return h.transit(c, h.auction.Activate)
}

func (h *handler) close(c echo.Context) error {
	return h.transit(c, h.auction.Close)
}

func (h *handler) cancel(c echo.Context) error {
	return h.transit(c, h.auction.Cancel)
}

func (h *handler) transit(c echo.Context, fn func(ctx.Ctx, string) (*auction.Auction, error)) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	res, err := fn(ctx, c.Param("id"))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) getBidsByBidder(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	res, err := h.auction.GetBidsByBidder(ctx, c.Param("bidderId"))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}
