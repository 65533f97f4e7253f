package middleware

import (
	"github.com/labstack/echo/v4"
)

// hopByHopHeaders are headers that should not be forwarded by proxies.
var hopByHopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"TE",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// ResponseHeaders returns an Echo middleware that stamps the contract headers
// onto every response: open CORS, no client-side caching of envelopes, and
// nosniff. Headers are set before the handler runs because echo commits them
// on the first body write.
func ResponseHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			for _, h := range hopByHopHeaders {
				c.Request().Header.Del(h)
			}

			header := c.Response().Header()
			header.Set(echo.HeaderAccessControlAllowOrigin, "*")
			header.Set("Cache-Control", "no-cache, no-store, must-revalidate")
			header.Set("X-Content-Type-Options", "nosniff")

			return next(c)
		}
	}
}
