package daemon

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// requestLogger emits one logrus entry per API request. Successful requests
// log at debug because status pollers hit /snapshot at the station's poll
// rate and would otherwise flood the journal.
func requestLogger(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Handlers can rewrite the URL, so capture the route up front.
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		began := time.Now()
		c.Next()

		status := c.Writer.Status()
		bytes := c.Writer.Size()
		if bytes < 0 {
			bytes = 0
		}

		entry := logger.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"route":    route,
			"status":   status,
			"bytes":    bytes,
			"duration": time.Since(began).Round(time.Microsecond).String(),
		})

		switch {
		case len(c.Errors) > 0:
			entry.Error(c.Errors.ByType(gin.ErrorTypePrivate).String())
		case status >= http.StatusInternalServerError:
			entry.Error("request failed")
		case status >= http.StatusBadRequest:
			entry.Warn("request rejected")
		default:
			entry.Debug("request served")
		}
	}
}
