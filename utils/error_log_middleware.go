package utils

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type errorLogWriter struct {
	gin.ResponseWriter
	gc  *gin.Context
	log zerolog.Logger
}

func (w errorLogWriter) Write(b []byte) (int, error) {
	status := w.gc.Writer.Status()
	if status >= 400 {
		w.log.Debug().Int("status", status).Bytes("body", b).Msg("error response")
	}
	return w.ResponseWriter.Write(b)
}

// ErrorLogMiddleware doesn't work with GZIP
func ErrorLogMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		blw := &errorLogWriter{gc: c, ResponseWriter: c.Writer, log: log}
		c.Writer = blw
		c.Next()
	}
}

// RequestLogMiddleware logs one line per request, with the level raised for
// client and server errors
func RequestLogMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := log.Info()
		if status >= 500 {
			event = log.Error()
		} else if status >= 400 {
			event = log.Warn()
		}
		event.
			Str("client_ip", c.ClientIP()).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("query", c.Request.URL.RawQuery).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg(c.Errors.ByType(gin.ErrorTypePrivate).String())
	}
}
