// Response helpers shared by all endpoints: the error envelope, success
// writers and weak ETags for cached views.

package handlers

import (
	"encoding/json"
	"hash/fnv"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/rental-console/internal/http/middleware"
)

// ErrorResponse is the error envelope of every endpoint. RequestID echoes
// X-Request-ID so a client report can be matched with the server logs.
type ErrorResponse struct {
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	Code      string `json:"code" example:"session_not_found"`
	Message   string `json:"message" example:"session not found"`
}

// fail aborts with the envelope. 5xx are logged with the request logger.
func fail(c *gin.Context, status int, code, msg string) {
	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   msg,
	})
}

// Fail is fail for the router's fallbacks.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

func ok(c *gin.Context, status int, body any) { c.JSON(status, body) }

func noContent(c *gin.Context) { c.Status(http.StatusNoContent) }

// weakETag derives a weak validator from the cache key, the time the data
// was stored and the data itself. The data is hashed because optimistic
// edits change it without a new fetch.
func weakETag(key string, storedAt time.Time, data any) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	_, _ = h.Write([]byte(strconv.FormatInt(storedAt.UnixMilli(), 10)))
	if b, err := json.Marshal(data); err == nil {
		_, _ = h.Write(b)
	}
	return `W/"` + strconv.FormatUint(h.Sum64(), 36) + `"`
}

// notModified sets ETag and reports whether If-None-Match already matches,
// in which case 304 has been written.
func notModified(c *gin.Context, etag string) bool {
	c.Header("ETag", etag)
	if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
		c.Status(http.StatusNotModified)
		return true
	}
	return false
}
