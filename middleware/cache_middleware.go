package middleware

import (
	"bufio"
	"bytes"
	"hash/fnv"
	"net"
	"net/http"
	"sort"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/base/log"
	"github.com/x-xyz/goauction/domain/keys"
	"github.com/x-xyz/goauction/service/cache"
)

const (
	HeaderXCache = "X-Cache"

	// responses above this size are served but never cached
	maxCachedBody = 1 << 20
)

// cachedResponse is what the cache keeps for one url
type cachedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"contentType"`
	Body        []byte `json:"body"`
}

// captureWriter tees the body into buf until it outgrows maxCachedBody
type captureWriter struct {
	http.ResponseWriter
	status   int
	buf      bytes.Buffer
	overflow bool
}

func (w *captureWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *captureWriter) Write(b []byte) (int, error) {
	if !w.overflow {
		if w.buf.Len()+len(b) > maxCachedBody {
			w.overflow = true
			w.buf.Reset()
		} else {
			w.buf.Write(b)
		}
	}
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) Flush() {
	w.ResponseWriter.(http.Flusher).Flush()
}

func (w *captureWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return w.ResponseWriter.(http.Hijacker).Hijack()
}

// requestKey digests the path and the query with its keys and values sorted
func requestKey(r *http.Request) string {
	params := r.URL.Query()
	for _, values := range params {
		sort.Strings(values)
	}
	h := fnv.New64a()
	h.Write([]byte(r.URL.Path))
	h.Write([]byte{'?'})
	h.Write([]byte(params.Encode()))
	return keys.HttpResponse(r.Method, strconv.FormatUint(h.Sum64(), 36))
}

// CacheHttp serves successful GET responses from cacheService for as long as
// its ttl. Responses carry X-Cache HIT or MISS.
func CacheHttp(cacheService cache.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodGet {
				return next(c)
			}
			ctx := c.Get("ctx").(ctx.Ctx)
			key := requestKey(c.Request())

			hit := cachedResponse{}
			if err := cacheService.Get(ctx, key, &hit); err == nil {
				c.Response().Header().Set(HeaderXCache, "HIT")
				return c.Blob(hit.Status, hit.ContentType, hit.Body)
			} else if err != cache.ErrNotFound {
				ctx.WithFields(log.Fields{"err": err, "key": key}).Warn("cacheService.Get failed")
			}

			c.Response().Header().Set(HeaderXCache, "MISS")
			w := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK}
			c.Response().Writer = w
			if err := next(c); err != nil {
				c.Error(err)
			}

			if w.status >= http.StatusBadRequest || w.overflow {
				return nil
			}
			miss := cachedResponse{
				Status:      w.status,
				ContentType: w.Header().Get(echo.HeaderContentType),
				Body:        w.buf.Bytes(),
			}
			if err := cacheService.Set(ctx, key, miss); err != nil {
				ctx.WithFields(log.Fields{"err": err, "key": key}).Warn("cacheService.Set failed")
			}
			return nil
		}
	}
}
