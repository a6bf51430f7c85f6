package middleware

import (
	"crypto/subtle"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/base/delivery"
	"github.com/x-xyz/goauction/base/log"
	"github.com/x-xyz/goauction/base/metrics"
	"github.com/x-xyz/goauction/domain"
)

// HeaderAdminToken carries the static token of administrative requests
const HeaderAdminToken = "X-Admin-Token"

// GoMiddleware represent the data-struct for middleware
type GoMiddleware struct {
	adminToken string
}

// InitMiddleware initialize the middleware
func InitMiddleware(adminToken string) *GoMiddleware {
	return &GoMiddleware{adminToken: adminToken}
}

// CORS will handle the CORS middleware
func (m *GoMiddleware) CORS(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set("Access-Control-Allow-Origin", "*")
		return next(c)
	}
}

// AddContext puts a ctx.Ctx carrying the request id under "ctx"
func (m *GoMiddleware) AddContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			cont := ctx.WithValue(ctx.From(c.Request().Context()), "requestID", c.Response().Header().Get(echo.HeaderXRequestID))
			c.Set("ctx", cont)
			return next(c)
		}
	}
}

// ResponseLogger logs one line per request. Server errors are logged at
// error level with the handler error attached.
func (m *GoMiddleware) ResponseLogger() echo.MiddlewareFunc {
	met := metrics.New("http")
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			timer := met.BumpTime("request.time", "method", c.Request().Method, "route", c.Path())
			handlerErr := next(c)
			if handlerErr != nil {
				c.Error(handlerErr)
			}

			req, res := c.Request(), c.Response()
			class := strconv.Itoa(res.Status/100) + "xx"
			met.BumpSum("request.count", 1, "route", c.Path(), "status", class)
			timer.End()

			logger := c.Get("ctx").(ctx.Ctx).WithFields(log.Fields{
				"ms":         float64(time.Since(start).Microseconds()) / 1000,
				"httpStatus": res.Status,
				"httpMethod": req.Method,
				"route":      c.Path(),
				"uri":        req.URL.RequestURI(),
				"remoteIP":   c.RealIP(),
				"size":       res.Size,
				"userAgent":  req.UserAgent(),
			})
			switch {
			case res.Status >= http.StatusInternalServerError:
				logger.WithField("nextErr", handlerErr).Error("response")
			case res.Status >= http.StatusBadRequest:
				logger.WithField("nextErr", handlerErr).Warn("response")
			default:
				logger.Info("response")
			}
			return nil
		}
	}
}

// AdminOnly rejects requests without the configured admin token. With no
// token configured every administrative request is rejected.
func (m *GoMiddleware) AdminOnly() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			got := c.Request().Header.Get(HeaderAdminToken)
			if m.adminToken == "" || subtle.ConstantTimeCompare([]byte(got), []byte(m.adminToken)) != 1 {
				return delivery.MakeJsonResp(c, http.StatusUnauthorized, domain.ErrUnauthorized)
			}
			return next(c)
		}
	}
}
