package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.viam.com/rdk/logging"

	"github.com/Moult/stone-drone-robots/internal/krl"
	"github.com/Moult/stone-drone-robots/internal/pose"
)

// ribbon is two straight rails of three vertices, edges listed out of order.
const ribbon = `{
  "vertices": [
    {"position": {"x": 0, "y": 0, "z": 0}, "normal": {"x": 0, "y": 0, "z": 1}},
    {"position": {"x": 1, "y": 0, "z": 0}, "normal": {"x": 0, "y": 0, "z": 1}},
    {"position": {"x": 2, "y": 0, "z": 0}, "normal": {"x": 0, "y": 0, "z": 1}},
    {"position": {"x": 0, "y": 1, "z": 0}, "normal": {"x": 0, "y": 0, "z": 1}},
    {"position": {"x": 1, "y": 1, "z": 0}, "normal": {"x": 0, "y": 0, "z": 1}},
    {"position": {"x": 2, "y": 1, "z": 0}, "normal": {"x": 0, "y": 0, "z": 1}}
  ],
  "edges": [[2, 1], [3, 4], [1, 0], [4, 5]]
}`

func init() {
	gin.SetMode(gin.TestMode)
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func newServer(t *testing.T) *Server {
	return New(logging.NewTestLogger(t), Defaults{UnitScale: 1, OrthoTolerance: 1e-6})
}

func TestHealthz(t *testing.T) {
	w := do(t, newServer(t), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestPrograms(t *testing.T) {
	w := do(t, newServer(t), http.MethodPost, "/v1/programs",
		`{"mesh": `+ribbon+`, "start_a": 0, "start_b": 3}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	assert.Equal(t, krl.Program([]pose.Pose{{}, {Z: 1}}), w.Body.String())
}

func TestPrograms_UnitScaleAndStartEdge(t *testing.T) {
	w := do(t, newServer(t), http.MethodPost, "/v1/programs",
		`{"mesh": `+ribbon+`, "start_a": 0, "start_b": 3, "start_edge_a": [1, 0], "unit_scale": 1000}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, krl.Program([]pose.Pose{{Y: 500}, {Y: 500, Z: 1000}}), w.Body.String())
}

func TestPoses(t *testing.T) {
	w := do(t, newServer(t), http.MethodPost, "/v1/poses",
		`{"mesh": `+ribbon+`, "start_a": 0, "start_b": 3, "lateral_axis": {"x": 2, "y": 0, "z": 0}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got TraceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, []pose.Pose{{}, {Z: 1}}, got.Poses)
	require.Len(t, got.Samples, 2)
	assert.Equal(t, 1.0, got.Samples[1].Frame.X.X)
}

func TestStatusMapping(t *testing.T) {
	for name, tc := range map[string]struct {
		body string
		want int
	}{
		"malformed json":  {`{"mesh": `, http.StatusBadRequest},
		"missing start":   {`{"mesh": ` + ribbon + `, "start_a": 0}`, http.StatusBadRequest},
		"length mismatch": {`{"mesh": {"vertices": [{}, {}, {}, {}, {}], "edges": [[0,1],[1,2],[3,4]]}, "start_a": 0, "start_b": 3}`, http.StatusUnprocessableEntity},
		"start off edge":  {`{"mesh": ` + ribbon + `, "start_a": 0, "start_b": 3, "start_edge_a": [4, 5]}`, http.StatusUnprocessableEntity},
		"bad edge index":  {`{"mesh": {"vertices": [{}], "edges": [[0, 7]]}, "start_a": 0, "start_b": 0}`, http.StatusUnprocessableEntity},
		"degenerate":      {`{"mesh": ` + ribbon + `, "start_a": 0, "start_b": 3, "lateral_axis": {"x": 0, "y": 0, "z": 0}}`, http.StatusUnprocessableEntity},
		"branched":        {`{"mesh": {"vertices": [{}, {}, {}, {}, {}], "edges": [[0,1],[1,2],[2,0],[0,3],[3,4]]}, "start_a": 1, "start_b": 3}`, http.StatusUnprocessableEntity},
	} {
		w := do(t, newServer(t), http.MethodPost, "/v1/programs", tc.body)
		assert.Equal(t, tc.want, w.Code, "%s: %s", name, w.Body.String())

		var e ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e), name)
		assert.NotEmpty(t, e.Error, name)
	}
}
