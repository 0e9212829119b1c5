package engineconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// EngineConfigPath is the path to the viewer config file, relative to the process working directory.
const EngineConfigPath = "config/coinpile.json"

// ViewerPrefs holds viewer-only preferences (overlays, grid, last variant, window size). Persisted across runs.
// Simulation state is never saved.
type ViewerPrefs struct {
	ShowFPS      bool    `json:"show_fps"`
	ShowMemAlloc bool    `json:"show_memalloc"`
	ShowStats    bool    `json:"show_stats"`
	GridVisible  bool    `json:"grid_visible"`
	Variant      string  `json:"variant,omitempty"`
	WindowWidth  int32   `json:"window_width,omitempty"`
	WindowHeight int32   `json:"window_height,omitempty"`
	TiltStep     float32 `json:"tilt_step,omitempty"` // radians per second while an arrow key is held
}

// Default returns default viewer preferences (stats on, grid on, tabletop variant).
func Default() ViewerPrefs {
	return ViewerPrefs{
		ShowFPS:      false,
		ShowMemAlloc: false,
		ShowStats:    true,
		GridVisible:  true,
		Variant:      "tabletop",
		WindowWidth:  1280,
		WindowHeight: 720,
		TiltStep:     0.6,
	}
}

// Load reads viewer preferences from config/coinpile.json. A missing file is not an error.
// An unreadable or malformed file returns Default() together with the error. Load never creates
// a file, and fields left out of the file keep their defaults.
func Load() (ViewerPrefs, error) {
	data, err := os.ReadFile(EngineConfigPath)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Default(), fmt.Errorf("engineconfig: %w", err)
	}
	p := Default()
	if err := json.Unmarshal(data, &p); err != nil {
		return Default(), fmt.Errorf("engineconfig: %s: %w", EngineConfigPath, err)
	}
	return p.sanitized(), nil
}

// Save writes viewer preferences to config/coinpile.json, creating the config directory if needed.
func Save(p ViewerPrefs) error {
	if err := p.Validate(); err != nil {
		return err
	}
	dir := filepath.Dir(EngineConfigPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(p, "", "\t")
	if err != nil {
		return err
	}
	return os.WriteFile(EngineConfigPath, data, 0644)
}

// Validate rejects window sizes and tilt rates that the viewer cannot use.
func (p ViewerPrefs) Validate() error {
	var errs []error
	if p.WindowWidth < 0 || p.WindowHeight < 0 {
		errs = append(errs, fmt.Errorf("engineconfig: window size %dx%d is negative", p.WindowWidth, p.WindowHeight))
	}
	if p.TiltStep < 0 {
		errs = append(errs, fmt.Errorf("engineconfig: tilt_step %g is negative", p.TiltStep))
	}
	return errors.Join(errs...)
}

// sanitized replaces unusable values read from disk with defaults.
func (p ViewerPrefs) sanitized() ViewerPrefs {
	d := Default()
	if p.WindowWidth <= 0 || p.WindowHeight <= 0 {
		p.WindowWidth, p.WindowHeight = d.WindowWidth, d.WindowHeight
	}
	if p.TiltStep <= 0 {
		p.TiltStep = d.TiltStep
	}
	return p
}
