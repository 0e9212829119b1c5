package engineconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingReturnsDefault(t *testing.T) {
	t.Chdir(t.TempDir())
	p, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p != Default() {
		t.Errorf("Load() = %+v, want defaults", p)
	}
	if _, err := os.Stat(EngineConfigPath); !os.IsNotExist(err) {
		t.Error("Load created a config file")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Chdir(t.TempDir())
	want := Default()
	want.ShowFPS = true
	want.GridVisible = false
	want.Variant = "jar"
	want.WindowWidth = 800
	want.WindowHeight = 600
	if err := Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != want {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}
}

func TestLoadPartialAndInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
		want func(*ViewerPrefs)
	}{
		{"partial keeps defaults", `{"variant": "tray"}`, func(p *ViewerPrefs) { p.Variant = "tray" }},
		{"zero window", `{"window_width": 0, "window_height": 10}`, func(*ViewerPrefs) {}},
		{"negative tilt", `{"tilt_step": -1, "show_stats": false}`, func(p *ViewerPrefs) { p.ShowStats = false }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			if err := os.MkdirAll(filepath.Dir(EngineConfigPath), 0755); err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(EngineConfigPath, []byte(tt.data), 0644); err != nil {
				t.Fatal(err)
			}
			want := Default()
			tt.want(&want)
			got, err := Load()
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if got != want {
				t.Errorf("Load() = %+v, want %+v", got, want)
			}
		})
	}
}

func TestLoadMalformed(t *testing.T) {
	tests := []struct {
		name  string
		setup func() error
	}{
		{"bad json", func() error { return os.WriteFile(EngineConfigPath, []byte(`{"variant": `), 0644) }},
		{"wrong type", func() error { return os.WriteFile(EngineConfigPath, []byte(`{"grid_visible": "yes"}`), 0644) }},
		{"directory", func() error { return os.Mkdir(EngineConfigPath, 0755) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			if err := os.MkdirAll(filepath.Dir(EngineConfigPath), 0755); err != nil {
				t.Fatal(err)
			}
			if err := tt.setup(); err != nil {
				t.Fatal(err)
			}
			p, err := Load()
			if err == nil {
				t.Error("Load returned no error")
			}
			if p != Default() {
				t.Errorf("Load() = %+v, want defaults", p)
			}
		})
	}
}

func TestSaveRejectsInvalid(t *testing.T) {
	t.Chdir(t.TempDir())
	p := Default()
	p.WindowWidth = -1
	p.TiltStep = -2
	if err := Save(p); err == nil {
		t.Fatal("Save accepted negative window size")
	}
	if _, err := os.Stat(EngineConfigPath); !os.IsNotExist(err) {
		t.Error("Save wrote an invalid config")
	}
}
