// Package server exposes the transpiler over HTTP.
package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/geo/r3"
	"go.viam.com/rdk/logging"

	"github.com/Moult/stone-drone-robots/internal/edgeloop"
	"github.com/Moult/stone-drone-robots/internal/krl"
	"github.com/Moult/stone-drone-robots/internal/mesh"
	"github.com/Moult/stone-drone-robots/internal/pose"
)

// Defaults fill request fields the client leaves out.
type Defaults struct {
	UnitScale      float64
	OrthoTolerance float64
}

// Request is the body of both POST endpoints.
type Request struct {
	Mesh        *mesh.Mesh `json:"mesh" binding:"required"`
	StartA      *int       `json:"start_a" binding:"required"`
	StartB      *int       `json:"start_b" binding:"required"`
	StartEdgeA  *mesh.Edge `json:"start_edge_a"`
	StartEdgeB  *mesh.Edge `json:"start_edge_b"`
	LateralAxis *r3.Vector `json:"lateral_axis"`
	UnitScale   float64    `json:"unit_scale"`
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
}

// TraceResponse is returned by POST /v1/poses.
type TraceResponse struct {
	Poses   []pose.Pose   `json:"poses"`
	Samples []pose.Sample `json:"samples"`
}

// Server handles transpile requests. It holds no per-request state.
type Server struct {
	logger   logging.Logger
	defaults Defaults
}

// New returns a Server. Zero defaults mean unit scale 1 and no
// orthogonality check.
func New(logger logging.Logger, defaults Defaults) *Server {
	return &Server{logger: logger, defaults: defaults}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.accessLog)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	v1 := r.Group("/v1")
	{
		v1.POST("/programs", s.program)
		v1.POST("/poses", s.poses)
	}
	return r
}

func (s *Server) accessLog(c *gin.Context) {
	start := time.Now()
	c.Next()
	s.logger.Debugf("%s %s %d %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
}

func (s *Server) program(c *gin.Context) {
	samples, ok := s.trace(c)
	if !ok {
		return
	}
	poses := posesOf(samples)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(krl.Program(poses)))
}

func (s *Server) poses(c *gin.Context) {
	samples, ok := s.trace(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, TraceResponse{Poses: posesOf(samples), Samples: samples})
}

// trace binds the request and runs it. On failure it has already written
// the error response.
func (s *Server) trace(c *gin.Context) ([]pose.Sample, bool) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return nil, false
	}

	samples, err := s.run(req)
	if err != nil {
		status := statusOf(err)
		if status >= http.StatusInternalServerError {
			s.logger.Errorf("%s: %v", c.Request.URL.Path, err)
		}
		c.JSON(status, ErrorResponse{Error: err.Error()})
		return nil, false
	}
	return samples, true
}

func (s *Server) run(req Request) ([]pose.Sample, error) {
	if err := req.Mesh.Validate(); err != nil {
		return nil, err
	}
	pair, err := edgeloop.Pair(req.Mesh,
		edgeloop.Start{Vertex: *req.StartA, Edge: req.StartEdgeA},
		edgeloop.Start{Vertex: *req.StartB, Edge: req.StartEdgeB})
	if err != nil {
		return nil, err
	}

	opts := pose.Options{
		UnitScale:      s.defaults.UnitScale,
		OrthoTolerance: s.defaults.OrthoTolerance,
	}
	if req.UnitScale > 0 {
		opts.UnitScale = req.UnitScale
	}
	if req.LateralAxis != nil {
		axis := req.LateralAxis.Normalize()
		opts.LateralAxis = &axis
	}
	return pose.Trace(pair, opts)
}

// domainErrors are caller mistakes in the submitted geometry.
var domainErrors = []error{
	edgeloop.ErrDisconnectedLoop,
	edgeloop.ErrBranchedLoop,
	edgeloop.ErrStartNotOnEdge,
	pose.ErrLengthMismatch,
	pose.ErrTooFewVertices,
	pose.ErrDegenerateFrame,
	mesh.ErrEdgeIndex,
	mesh.ErrSelfLoop,
	mesh.ErrVertexIndex,
	mesh.ErrNoEdges,
	mesh.ErrMissingNormals,
}

func statusOf(err error) int {
	for _, target := range domainErrors {
		if errors.Is(err, target) {
			return http.StatusUnprocessableEntity
		}
	}
	return http.StatusInternalServerError
}

func posesOf(samples []pose.Sample) []pose.Pose {
	poses := make([]pose.Pose, len(samples))
	for i, s := range samples {
		poses[i] = s.Pose
	}
	return poses
}
