package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/azaliaz/bookstore/internal/logger"
)

const requestIDHeader = "X-Request-ID"

func requestLogger() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		log := logger.Get()
		start := time.Now()

		reqID := ctx.GetHeader(requestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		ctx.Set("request_id", reqID)
		ctx.Header(requestIDHeader, reqID)

		ctx.Next()

		log.Info().
			Str("request_id", reqID).
			Str("method", ctx.Request.Method).
			Str("path", ctx.Request.URL.Path).
			Int("status", ctx.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("client_ip", ctx.ClientIP()).
			Msg("request")
	}
}

// rateLimit throttles each client IP on the credential endpoints.
func (s *Server) rateLimit() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !s.limiter.Allow(ctx.ClientIP()) {
			log := logger.Get()
			log.Warn().Str("client_ip", ctx.ClientIP()).Msg("rate limit exceeded")
			ctx.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			return
		}
		ctx.Next()
	}
}
