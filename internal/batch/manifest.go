package batch

import (
	"encoding/json"
	"os"
)

// Manifest summarises a run.
type Manifest struct {
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
	Jobs      []Result `json:"jobs"`
}

// NewManifest counts outcomes in results.
func NewManifest(results []Result) Manifest {
	m := Manifest{Jobs: results}
	for _, r := range results {
		if r.Success {
			m.Succeeded++
		} else {
			m.Failed++
		}
	}
	return m
}

// WriteManifest writes manifest.json to path.
func WriteManifest(path string, results []Result) error {
	data, err := json.MarshalIndent(NewManifest(results), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
