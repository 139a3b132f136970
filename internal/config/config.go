package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid config")

// Defaults applied by Resolve.
const (
	DefaultUnitScale      = 1.0
	DefaultOrthoTolerance = 1e-6
	DefaultPreviewSize    = 512
	DefaultSupersample    = 4
	DefaultPreviewView    = "top"
	DefaultReferenceLayer = "Target"
)

// Config holds the jobs to transpile and their shared settings.
type Config struct {
	// Paths
	BaseDir      string `mapstructure:"base_dir"`
	OutputDir    string `mapstructure:"output_dir"`
	ReferenceDXF string `mapstructure:"reference_dxf"`

	ReferenceLayer string    `mapstructure:"reference_layer"`
	LateralAxis    []float64 `mapstructure:"lateral_axis"`

	// UnitScale multiplies mesh units into millimetres.
	UnitScale float64 `mapstructure:"unit_scale"`
	// OrthoTolerance bounds the frame orthonormality check. Negative disables it.
	OrthoTolerance float64 `mapstructure:"ortho_tolerance"`

	Preview   Preview `mapstructure:"preview"`
	ExportDXF bool    `mapstructure:"export_dxf"`
	Workers   int     `mapstructure:"workers"`

	Jobs []Job `mapstructure:"jobs"`
}

// Preview configures the optional raster preview. An empty Format
// disables it.
type Preview struct {
	Format      string `mapstructure:"format"`
	Size        int    `mapstructure:"size"`
	Supersample int    `mapstructure:"supersample"`
	View        string `mapstructure:"view"`
}

// Job is one mesh and its two rail start vertices.
type Job struct {
	Name         string    `mapstructure:"name"`
	Mesh         string    `mapstructure:"mesh"`
	StartA       *int      `mapstructure:"start_a"`
	StartB       *int      `mapstructure:"start_b"`
	ReferenceDXF string    `mapstructure:"reference_dxf"`
	LateralAxis  []float64 `mapstructure:"lateral_axis"`
}

// Load reads a JSON, YAML or TOML config file, chosen by extension.
// Fields not set in the file keep their zero values. BaseDir defaults to
// the file's directory.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	defer f.Close()

	cfg, err := Decode(f, strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."))
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if cfg.BaseDir == "" {
		cfg.BaseDir = filepath.Dir(path)
	}
	return cfg, nil
}

// Decode reads a config document in the given format: json, yaml, yml or
// toml. Unknown keys are an error.
func Decode(r io.Reader, format string) (Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Config{}, err
	}

	raw := map[string]any{}
	switch format {
	case "json":
		err = json.Unmarshal(data, &raw)
	case "yaml", "yml":
		err = yaml.Unmarshal(data, &raw)
	case "toml":
		err = toml.Unmarshal(data, &raw)
	default:
		return Config{}, fmt.Errorf("unsupported config format %q", format)
	}
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return Config{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
// Zero values leave the file's setting alone. StartA and StartB use -1
// for unset.
type Flags struct {
	OutputDir      string
	Mesh           string
	Name           string
	StartA         int
	StartB         int
	Reference      string
	ReferenceLayer string
	LateralAxis    string
	UnitScale      float64
	Preview        string
	DXF            bool
	Workers        int
}

// Resolve applies flag overrides, resolves relative paths against BaseDir
// and fills defaults. A --mesh flag replaces the file's jobs with a single
// job built from the flags.
func (c *Config) Resolve(flags Flags) error {
	// CLI flags override config file
	if flags.OutputDir != "" {
		c.OutputDir = cwdAbs(flags.OutputDir)
	}
	if flags.Reference != "" {
		c.ReferenceDXF = cwdAbs(flags.Reference)
	}
	if flags.ReferenceLayer != "" {
		c.ReferenceLayer = flags.ReferenceLayer
	}
	if flags.LateralAxis != "" {
		axis, err := ParseAxis(flags.LateralAxis)
		if err != nil {
			return err
		}
		c.LateralAxis = axis
	}
	if flags.UnitScale > 0 {
		c.UnitScale = flags.UnitScale
	}
	if flags.Preview != "" {
		c.Preview.Format = strings.ToLower(flags.Preview)
	}
	if flags.DXF {
		c.ExportDXF = true
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.Mesh != "" {
		job := Job{Name: flags.Name, Mesh: cwdAbs(flags.Mesh)}
		if flags.StartA >= 0 {
			job.StartA = intPtr(flags.StartA)
		}
		if flags.StartB >= 0 {
			job.StartB = intPtr(flags.StartB)
		}
		c.Jobs = []Job{job}
	}

	// Resolve relative paths against base dir
	c.OutputDir = c.abs(c.OutputDir)
	c.ReferenceDXF = c.abs(c.ReferenceDXF)
	for i := range c.Jobs {
		j := &c.Jobs[i]
		j.Mesh = c.abs(j.Mesh)
		j.ReferenceDXF = c.abs(j.ReferenceDXF)
		if j.Name == "" && j.Mesh != "" {
			j.Name = strings.TrimSuffix(filepath.Base(j.Mesh), filepath.Ext(j.Mesh))
		}
	}

	// Defaults
	if c.OutputDir == "" {
		c.OutputDir = "."
	}
	if c.ReferenceLayer == "" {
		c.ReferenceLayer = DefaultReferenceLayer
	}
	if c.UnitScale <= 0 {
		c.UnitScale = DefaultUnitScale
	}
	if c.OrthoTolerance == 0 {
		c.OrthoTolerance = DefaultOrthoTolerance
	}
	if c.Preview.Size <= 0 {
		c.Preview.Size = DefaultPreviewSize
	}
	if c.Preview.Supersample <= 0 {
		c.Preview.Supersample = DefaultSupersample
	}
	if c.Preview.View == "" {
		c.Preview.View = DefaultPreviewView
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	return nil
}

// Validate reports the first problem that would make a job unrunnable.
func (c *Config) Validate() error {
	if len(c.Jobs) == 0 {
		return fmt.Errorf("config: no jobs: %w", ErrInvalid)
	}
	if err := checkAxis(c.LateralAxis); err != nil {
		return fmt.Errorf("config: lateral_axis: %w", err)
	}
	switch c.Preview.Format {
	case "", "webp", "tga", "png":
	default:
		return fmt.Errorf("config: preview format %q: %w", c.Preview.Format, ErrInvalid)
	}
	switch c.Preview.View {
	case "top", "front", "side":
	default:
		return fmt.Errorf("config: preview view %q: %w", c.Preview.View, ErrInvalid)
	}

	names := map[string]bool{}
	for i, j := range c.Jobs {
		switch {
		case j.Mesh == "":
			return fmt.Errorf("config: job %d: no mesh: %w", i, ErrInvalid)
		case j.StartA == nil || j.StartB == nil:
			return fmt.Errorf("config: job %d (%s): start_a and start_b are required: %w", i, j.Name, ErrInvalid)
		case *j.StartA < 0 || *j.StartB < 0:
			return fmt.Errorf("config: job %d (%s): negative start vertex: %w", i, j.Name, ErrInvalid)
		case names[j.Name]:
			return fmt.Errorf("config: job %d: duplicate name %q: %w", i, j.Name, ErrInvalid)
		}
		if err := checkAxis(j.LateralAxis); err != nil {
			return fmt.Errorf("config: job %d (%s) lateral_axis: %w", i, j.Name, err)
		}
		names[j.Name] = true
	}
	return nil
}

// ParseAxis reads "x,y,z".
func ParseAxis(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return nil, fmt.Errorf("config: axis %q: want x,y,z: %w", s, ErrInvalid)
	}
	axis := make([]float64, 3)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("config: axis %q: %w", s, err)
		}
		axis[i] = v
	}
	return axis, checkAxis(axis)
}

func checkAxis(axis []float64) error {
	if len(axis) == 0 {
		return nil
	}
	if len(axis) != 3 {
		return fmt.Errorf("%d components: %w", len(axis), ErrInvalid)
	}
	var sq float64
	for _, v := range axis {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("non-finite component: %w", ErrInvalid)
		}
		sq += v * v
	}
	if sq == 0 {
		return fmt.Errorf("zero vector: %w", ErrInvalid)
	}
	return nil
}

func (c *Config) abs(p string) string {
	if p == "" || filepath.IsAbs(p) || c.BaseDir == "" {
		return p
	}
	return filepath.Join(c.BaseDir, p)
}

// cwdAbs anchors flag paths at the working directory rather than BaseDir.
func cwdAbs(p string) string {
	if a, err := filepath.Abs(p); err == nil {
		return a
	}
	return p
}

func intPtr(v int) *int { return &v }
