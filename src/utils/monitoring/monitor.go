package monitoring

import (
	"github.com/hashhedge/workflow/src/utils/monitoring/report"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

type Monitor interface {
	GetReport() *report.Report
	GetPrometheusCollector() prometheus.Collector
	IsOK() bool

	// Gin handlers
	OnGetState(c *gin.Context)
	OnGetHealth(c *gin.Context)
}
