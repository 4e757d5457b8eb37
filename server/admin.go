// Package server is the read-only admin/observability HTTP surface
// described in SPEC_FULL.md §C. It never accepts put/get; those stay on
// the datagram bus per spec.md §4.1. It only exposes a replica's current
// status, its applied key-value state, and its Prometheus metrics.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"raftkv/raft"
)

// node is the subset of *raft.Node the admin surface depends on.
type node interface {
	Status() raft.Status
	Dump() map[string]string
}

// Admin serves GET /status, GET /dump and GET /metrics for one replica.
type Admin struct {
	engine *gin.Engine
	node   node
}

// New builds the admin server, registering metrics with registry.
func New(n node, metrics *raft.Metrics, registry *prometheus.Registry) *Admin {
	gin.SetMode(gin.ReleaseMode)
	a := &Admin{engine: gin.New(), node: n}

	for _, c := range metrics.Collectors() {
		registry.MustRegister(c)
	}

	a.engine.Use(gin.Recovery())
	a.engine.GET("/status", a.handleStatus)
	a.engine.GET("/dump", a.handleDump)
	a.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	return a
}

// Run starts the HTTP server on addr. It blocks until the server stops.
func (a *Admin) Run(addr string) error {
	return a.engine.Run(addr)
}

func (a *Admin) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, a.node.Status())
}

func (a *Admin) handleDump(c *gin.Context) {
	c.JSON(http.StatusOK, a.node.Dump())
}
