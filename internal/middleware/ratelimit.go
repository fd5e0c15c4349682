package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/Ronald-silva/sistema-gest-o-automotiva/internal/config"
)

// RateLimit applies a fixed-window counter per client IP and route,
// backed by Redis so the limit holds across instances. It protects the
// register/login endpoints from credential stuffing. With no Redis
// client the middleware passes everything through; losing the limiter
// is preferable to refusing logins.
func RateLimit(rdb *redis.Client, cfg config.RateLimitConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if rdb == nil || !cfg.Enabled {
				return next(c)
			}
			window := time.Now().Unix() / int64(cfg.Window.Seconds())
			key := fmt.Sprintf("%s:%s:%s:%d", cfg.Prefix, c.RealIP(), c.Path(), window)

			ctx, cancel := context.WithTimeout(c.Request().Context(), 500*time.Millisecond)
			defer cancel()

			n, err := rdb.Incr(ctx, key).Result()
			if err != nil {
				return next(c) // degrade open on Redis trouble
			}
			if n == 1 {
				rdb.Expire(ctx, key, cfg.Window)
			}
			if n > int64(cfg.Limit) {
				return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "too many requests"})
			}
			return next(c)
		}
	}
}
