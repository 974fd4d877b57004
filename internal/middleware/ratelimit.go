package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// rateLimitScript is a sliding-window counter: drop entries outside the
// window, count what is left, admit and record the request only while
// under the limit. Runs as one atomic unit.
// KEYS[1]=window key, ARGV: now, window start, window seconds, member, limit.
var rateLimitScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local windowStart = tonumber(ARGV[2])
local windowSec = tonumber(ARGV[3])
local member = ARGV[4]

redis.call('ZREMRANGEBYSCORE', key, '0', windowStart)

local count = redis.call('ZCARD', key)
if count < tonumber(ARGV[5]) then
	redis.call('ZADD', key, now, member)
	redis.call('EXPIRE', key, windowSec)
	return count + 1
end
return -1
`)

// RateLimit limits order submissions per user (per IP when the body
// carries no user id). Redis failures fail open: the request proceeds.
func RateLimit(rdb *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := limitKey(c)

		now := time.Now().Unix()
		windowSec := int64(window.Seconds())
		member := fmt.Sprintf("%d-%d", now, time.Now().UnixNano())

		res, err := rateLimitScript.Run(c.Request.Context(), rdb, []string{key},
			now, now-windowSec, windowSec, member, limit).Int()
		if err != nil {
			c.Next()
			return
		}

		if res < 0 {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code": 429,
				"msg":  "too many requests",
			})
			return
		}
		c.Next()
	}
}

func limitKey(c *gin.Context) string {
	if userID := extractUserID(c); userID > 0 {
		return fmt.Sprintf("mall:rate:order:user:%d", userID)
	}
	return fmt.Sprintf("mall:rate:order:ip:%s", c.ClientIP())
}

// extractUserID peeks user_id out of the JSON body without consuming it.
func extractUserID(c *gin.Context) int64 {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return 0
	}
	c.Request.Body = io.NopCloser(bytes.NewBuffer(body))

	var req struct {
		UserID int64 `json:"user_id"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return 0
	}
	return req.UserID
}
