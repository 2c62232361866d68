package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// ClipSpec names one motion source and the clip name it merges under.
type ClipSpec struct {
	Source string `toml:"source"`
	Name   string `toml:"name"`
}

// Job is one unit of batch work: a base character asset plus an ordered clip
// list. Clip order is the track order of the output.
type Job struct {
	ID     string     `toml:"id,omitempty"`
	Base   string     `toml:"base"`
	Output string     `toml:"output,omitempty"`
	Clips  []ClipSpec `toml:"clip,omitempty"`
}

// Worklist is the parsed batch input file.
type Worklist struct {
	Jobs []Job `toml:"job"`
}

// LoadWorklist parses and validates a TOML worklist. Job order and per-job
// clip order are preserved exactly as written.
func LoadWorklist(path string) (*Worklist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read worklist %s: %w", path, err)
	}

	var wl Worklist
	if err := toml.Unmarshal(data, &wl); err != nil {
		return nil, fmt.Errorf("parse worklist %s: %w", path, err)
	}
	if err := wl.Validate(); err != nil {
		return nil, fmt.Errorf("worklist %s: %w", path, err)
	}
	return &wl, nil
}

// Validate checks structural requirements without touching the filesystem;
// missing sources are a per-job runtime concern, not a worklist defect.
func (w *Worklist) Validate() error {
	if len(w.Jobs) == 0 {
		return fmt.Errorf("no jobs defined")
	}
	for i, job := range w.Jobs {
		if strings.TrimSpace(job.Base) == "" {
			return fmt.Errorf("job %d: base is required", i+1)
		}
		seen := make(map[string]struct{}, len(job.Clips))
		for j, clip := range job.Clips {
			if strings.TrimSpace(clip.Source) == "" {
				return fmt.Errorf("job %d clip %d: source is required", i+1, j+1)
			}
			if strings.TrimSpace(clip.Name) == "" {
				return fmt.Errorf("job %d clip %d: name is required", i+1, j+1)
			}
			if _, dup := seen[clip.Name]; dup {
				return fmt.Errorf("job %d: duplicate clip name %q", i+1, clip.Name)
			}
			seen[clip.Name] = struct{}{}
		}
	}
	return nil
}

// OutputPath resolves a job's output file: the explicit output when set,
// otherwise the base file name placed in outputDir.
func (j *Job) OutputPath(outputDir string) string {
	if strings.TrimSpace(j.Output) != "" {
		return j.Output
	}
	return filepath.Join(outputDir, filepath.Base(j.Base))
}
