// Package logger builds the zap logger the whole portal shares and the
// gin middleware that logs each request once, after it finished.
package logger

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/greenfield-academy/portal/pkg/config"
	"github.com/greenfield-academy/portal/pkg/middleware/requestid"
)

// New builds a logger for the configured environment: structured json
// in production, a human-readable console encoder everywhere else
// unless the config says otherwise.
func New(cfg *config.Config) (*zap.Logger, error) {
	var base zap.Config
	if cfg.Env == config.EnvProduction {
		base = zap.NewProductionConfig()
	} else {
		base = zap.NewDevelopmentConfig()
	}

	if cfg.Log.Format != "" {
		base.Encoding = cfg.Log.Format
	}
	base.Level = zap.NewAtomicLevelAt(parseLevel(cfg.Log.Level))
	base.EncoderConfig.TimeKey = "timestamp"
	base.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return base.Build()
}

func parseLevel(raw string) zapcore.Level {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil || raw == "" {
		return zapcore.InfoLevel
	}
	return level
}

// GinMiddleware logs one line per request. Server faults log at error
// level and client errors at warn so they stand out of the access log.
func GinMiddleware(l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		}
		if id := requestid.Value(c); id != "" {
			fields = append(fields, zap.String("request_id", id))
		}

		switch {
		case status >= 500:
			l.Error("http_request", fields...)
		case status >= 400:
			l.Warn("http_request", fields...)
		default:
			l.Info("http_request", fields...)
		}
	}
}
