package httptransport

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/k-code-yt/cashpay-ipn/internal/metrics"
)

func NewRouter(callbackPath string, h *NotificationHandler, m *metrics.Metrics, gatherer prometheus.Gatherer) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(prometheusMiddleware(m))

	r.GET(callbackPath, h.Handle)
	r.POST(callbackPath, h.Handle)
	r.GET("/health", healthHandler)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	return r
}

func prometheusMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		m.ObserveHTTP(c.Request.Method, endpoint, c.Writer.Status(), time.Since(start))
		logrus.WithFields(logrus.Fields{
			"METHOD": c.Request.Method,
			"PATH":   endpoint,
			"STATUS": c.Writer.Status(),
		}).Debug("HTTP")
	}
}

func healthHandler(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "alloc": m.Alloc, "sys": m.Sys, "num_gc": m.NumGC})
}
