package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang/geo/r3"
	"go.viam.com/rdk/logging"

	"github.com/Moult/stone-drone-robots/internal/cad"
	"github.com/Moult/stone-drone-robots/internal/config"
	"github.com/Moult/stone-drone-robots/internal/edgeloop"
	"github.com/Moult/stone-drone-robots/internal/krl"
	"github.com/Moult/stone-drone-robots/internal/mesh"
	"github.com/Moult/stone-drone-robots/internal/pose"
	"github.com/Moult/stone-drone-robots/internal/preview"
)

// ErrNotStarted marks jobs skipped because the run was cancelled.
var ErrNotStarted = errors.New("job not started")

// Result holds the outcome of one job.
type Result struct {
	Name     string        `json:"name"`
	Mesh     string        `json:"mesh"`
	Poses    int           `json:"poses"`
	Program  string        `json:"program,omitempty"`
	Preview  string        `json:"preview,omitempty"`
	DXF      string        `json:"dxf,omitempty"`
	Success  bool          `json:"success"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// progressInterval is how often Run logs throughput.
var progressInterval = 2 * time.Second

// Run transpiles jobs on cfg.Workers goroutines. Results are indexed like
// jobs. Cancelling ctx stops dispatch; jobs already running finish.
func Run(ctx context.Context, cfg *config.Config, jobs []config.Job, logger logging.Logger) []Result {
	total := len(jobs)
	results := make([]Result, total)
	var processed atomic.Int64

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(progressInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if p := processed.Load(); p > 0 {
					rate := float64(p) / time.Since(start).Seconds()
					logger.Infof("[%d/%d] %.1f jobs/sec", p, total, rate)
				}
			}
		}
	}()

	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	// Worker pool
	jobChan := make(chan int, workers*2)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobChan {
				results[idx] = processJob(cfg, jobs[idx], logger)
				processed.Add(1)
			}
		}()
	}

	// Send work until cancelled
	sent := 0
send:
	for i := range jobs {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break send
		case jobChan <- i:
			sent++
		}
	}
	close(jobChan)

	wg.Wait()
	close(done)

	for i := sent; i < total; i++ {
		results[i] = Result{
			Name:  jobs[i].Name,
			Mesh:  jobs[i].Mesh,
			Error: fmt.Errorf("%w: %v", ErrNotStarted, context.Cause(ctx)).Error(),
		}
	}
	return results
}

func processJob(cfg *config.Config, job config.Job, logger logging.Logger) Result {
	start := time.Now()
	res := Result{Name: job.Name, Mesh: job.Mesh}
	fail := func(err error) Result {
		res.Error = err.Error()
		res.Duration = time.Since(start)
		logger.Warnf("%s: %v", job.Name, err)
		return res
	}

	if job.StartA == nil || job.StartB == nil {
		return fail(fmt.Errorf("start_a and start_b are required: %w", config.ErrInvalid))
	}

	m, err := mesh.ReadPLY(job.Mesh)
	if err != nil {
		return fail(err)
	}
	logger.Debugf("%s: %d vertices, %d edges", job.Name, len(m.Vertices), len(m.Edges))

	pair, err := edgeloop.Pair(m, edgeloop.Start{Vertex: *job.StartA}, edgeloop.Start{Vertex: *job.StartB})
	if err != nil {
		return fail(err)
	}

	axis, err := lateralAxis(cfg, job)
	if err != nil {
		return fail(err)
	}

	samples, err := pose.Trace(pair, pose.Options{
		LateralAxis:    axis,
		UnitScale:      cfg.UnitScale,
		OrthoTolerance: cfg.OrthoTolerance,
	})
	if err != nil {
		return fail(err)
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fail(err)
	}
	base := filepath.Join(cfg.OutputDir, job.Name)

	// Side outputs first so a failure there leaves no program behind.
	if cfg.Preview.Format != "" {
		view, err := preview.ParseView(cfg.Preview.View)
		if err != nil {
			return fail(err)
		}
		img := preview.Render(samples, preview.Options{
			Size:        cfg.Preview.Size,
			Supersample: cfg.Preview.Supersample,
			View:        view,
		})
		res.Preview = base + "." + cfg.Preview.Format
		if err := preview.WriteFile(res.Preview, img); err != nil {
			return fail(err)
		}
	}
	if cfg.ExportDXF {
		res.DXF = base + ".dxf"
		if err := cad.WritePathDXF(res.DXF, samples, 0); err != nil {
			return fail(err)
		}
	}

	poses := make([]pose.Pose, len(samples))
	for i, s := range samples {
		poses[i] = s.Pose
	}
	res.Program = base + ".src"
	if err := writeProgram(res.Program, poses); err != nil {
		res.Program = ""
		return fail(err)
	}

	res.Poses = len(poses)
	res.Success = true
	res.Duration = time.Since(start)
	logger.Infof("%s: %d poses -> %s", job.Name, res.Poses, res.Program)
	return res
}

// lateralAxis picks the job's override axis: its own axis, then its
// reference drawing, then the shared axis, then the shared drawing. Nil
// means none is configured.
func lateralAxis(cfg *config.Config, job config.Job) (*r3.Vector, error) {
	fromSlice := func(a []float64) *r3.Vector {
		v := r3.Vector{X: a[0], Y: a[1], Z: a[2]}.Normalize()
		return &v
	}
	fromDXF := func(path string) (*r3.Vector, error) {
		v, err := cad.ReadAxisFile(path, cfg.ReferenceLayer)
		if err != nil {
			return nil, err
		}
		return &v, nil
	}

	switch {
	case len(job.LateralAxis) == 3:
		return fromSlice(job.LateralAxis), nil
	case job.ReferenceDXF != "":
		return fromDXF(job.ReferenceDXF)
	case len(cfg.LateralAxis) == 3:
		return fromSlice(cfg.LateralAxis), nil
	case cfg.ReferenceDXF != "":
		return fromDXF(cfg.ReferenceDXF)
	}
	return nil, nil
}

// writeProgram writes to a temporary file and renames it into place, so
// path holds either a whole program or nothing.
func writeProgram(path string, poses []pose.Pose) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("batch: create %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if err := krl.WriteProgram(tmp, poses); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("batch: close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("batch: rename %s: %w", path, err)
	}
	return nil
}
