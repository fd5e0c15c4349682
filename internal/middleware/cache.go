package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/binary"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/Ronald-silva/sistema-gest-o-automotiva/internal/config"
)

// captureWriter captures the response body and status while forwarding
// everything to the client, so a successful response can be stored in
// Redis after the handler ran.
type captureWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
	size   int64
	limit  int64
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	if cw.size+int64(len(b)) <= cw.limit {
		cw.buf.Write(b)
	}
	cw.size += int64(len(b))
	return cw.ResponseWriter.Write(b)
}

// cacheKey hashes route and raw query under the configured prefix.
func cacheKey(prefix string, c echo.Context) string {
	sum := sha1.Sum([]byte(c.Path() + "?" + c.Request().URL.RawQuery))
	return fmt.Sprintf("%s:%x", prefix, sum)
}

// encodeEntry packs [4 bytes status][body]; decodeEntry reverses it.
func encodeEntry(status int, body []byte) []byte {
	out := make([]byte, 4+len(body))
	binary.BigEndian.PutUint32(out[0:4], uint32(status))
	copy(out[4:], body)
	return out
}

func decodeEntry(raw []byte) (int, []byte, bool) {
	if len(raw) < 4 {
		return 0, nil, false
	}
	return int(binary.BigEndian.Uint32(raw[0:4])), raw[4:], true
}

// ResponseCache caches successful GET responses of the public vehicle
// catalog in Redis. Any cache failure falls through to the handler, and
// a nil client disables the middleware entirely.
func ResponseCache(rdb *redis.Client, cfg config.CacheConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if rdb == nil || !cfg.Enabled || c.Request().Method != http.MethodGet {
				return next(c)
			}
			key := cacheKey(cfg.Prefix, c)
			getCtx, cancel := context.WithTimeout(c.Request().Context(), 500*time.Millisecond)
			defer cancel()

			if raw, err := rdb.Get(getCtx, key).Bytes(); err == nil {
				if status, body, ok := decodeEntry(raw); ok {
					c.Response().Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
					c.Response().Header().Set("X-Cache", "HIT")
					return c.Blob(status, echo.MIMEApplicationJSON, body)
				}
			}

			cw := &captureWriter{
				ResponseWriter: c.Response().Writer,
				status:         http.StatusOK,
				limit:          int64(cfg.MaxBodyBytes),
			}
			c.Response().Writer = cw
			if err := next(c); err != nil {
				return err
			}
			// Only cache bounded 200s; errors and oversized bodies skip
			// the store.
			if cw.status == http.StatusOK && cw.size <= cw.limit {
				setCtx, cancelSet := context.WithTimeout(context.Background(), 500*time.Millisecond)
				rdb.Set(setCtx, key, encodeEntry(cw.status, cw.buf.Bytes()), cfg.TTL)
				cancelSet()
			}
			return nil
		}
	}
}
