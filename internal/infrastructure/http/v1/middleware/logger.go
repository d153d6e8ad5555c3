package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	appctx "giftworks/internal/core/context"
	"giftworks/internal/infrastructure/storage/postgres"
	"giftworks/pkg/logger"
)

// Logger middleware logs HTTP requests with timing and status. When a request
// log repository is provided, each request is also persisted for the operator
// log console; persistence is best-effort and never fails the request.
func Logger(log *logger.Logger, reqLogs *postgres.RequestLogRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		ctx := c.Request.Context()

		log.WithContext(ctx).Infow("http request",
			"method", c.Request.Method,
			"path", path,
			"query", query,
			"status", status,
			"latency_ms", latency.Milliseconds(),
			"client_ip", c.ClientIP(),
			"user_agent", c.Request.UserAgent(),
			"error", c.Errors.ByType(gin.ErrorTypePrivate).String(),
		)

		if reqLogs == nil {
			return
		}

		rec := &postgres.RequestLog{
			Timestamp:  start.UTC(),
			Method:     c.Request.Method,
			Path:       path,
			Status:     status,
			DurationMS: latency.Milliseconds(),
			TraceID:    c.GetString("trace_id"),
			ClientIP:   c.ClientIP(),
		}
		if actor := appctx.GetActor(ctx); actor != nil {
			rec.UserID = &actor.UserID
			rec.UserEmail = actor.Email
		}

		// Detached context: the request may already be cancelled.
		writeCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := reqLogs.Insert(writeCtx, rec); err != nil {
			log.WithContext(ctx).Warnw("request log write failed", "error", err)
		}
	}
}
