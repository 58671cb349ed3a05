package middleware

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"valuate_backend/internal/util"
	"valuate_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// ResponseCache caches successful GET responses in redis, keyed by user and
// request path. Writes to cached resources must call Invalidate with the
// matching prefix.
type ResponseCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewResponseCache(client *redis.Client, ttl time.Duration) *ResponseCache {
	return &ResponseCache{Client: client, TTL: ttl}
}

type cachedWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *cachedWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (c *ResponseCache) key(ctx *gin.Context) string {
	userID := "anon"
	if claims := util.GetUserFromContext(ctx); claims != nil {
		userID = strconv.FormatUint(uint64(claims.UserID), 10)
	}
	return "cache:" + userID + ":" + ctx.Request.URL.RequestURI()
}

// Middleware serves GET requests from redis when a fresh copy exists and
// stores 200 responses on miss. A dead redis degrades to pass-through.
func (c *ResponseCache) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if c == nil || c.Client == nil || ctx.Request.Method != http.MethodGet {
			ctx.Next()
			return
		}

		key := c.key(ctx)
		cached, err := c.Client.Get(ctx.Request.Context(), key).Bytes()
		if err == nil {
			ctx.Data(http.StatusOK, "application/json; charset=utf-8", cached)
			ctx.Abort()
			return
		}
		if err != redis.Nil {
			logger.Log.Warn("response cache read failed", zap.Error(err))
			ctx.Next()
			return
		}

		writer := &cachedWriter{ResponseWriter: ctx.Writer, body: &bytes.Buffer{}}
		ctx.Writer = writer
		ctx.Next()

		if ctx.Writer.Status() == http.StatusOK {
			if err := c.Client.Set(ctx.Request.Context(), key, writer.body.Bytes(), c.TTL).Err(); err != nil {
				logger.Log.Warn("response cache write failed", zap.Error(err))
			}
		}
	}
}

// Invalidate drops every cached response whose key matches the prefix, for
// all users.
func (c *ResponseCache) Invalidate(ctx *gin.Context, pathPrefix string) {
	if c == nil || c.Client == nil {
		return
	}

	pattern := "cache:*:" + pathPrefix + "*"
	iter := c.Client.Scan(ctx.Request.Context(), 0, pattern, 100).Iterator()
	for iter.Next(ctx.Request.Context()) {
		if err := c.Client.Del(ctx.Request.Context(), iter.Val()).Err(); err != nil {
			logger.Log.Warn("response cache invalidation failed", zap.Error(err))
			return
		}
	}
	if err := iter.Err(); err != nil {
		logger.Log.Warn("response cache scan failed", zap.Error(err))
	}
}
