package debug

import (
	"fmt"
	"runtime"

	rl "github.com/gen2brain/raylib-go/raylib"

	"coinpile/internal/sim"
)

const (
	fontSize   = 20
	padding    = 12
	lineHeight = fontSize + 4
	// updateInterval: only refresh FPS/Mem/stats text every N frames to reduce allocations.
	updateInterval = 15
	logLines       = 6
)

// Debug holds runtime overlays: FPS and heap (top-right), simulation stats (top-left) and the
// newest log lines (bottom-left). All overlays are off by default.
type Debug struct {
	ShowFPS      bool
	ShowMemAlloc bool
	ShowStats    bool
	frameCount   uint32
	lastFpsText  string
	lastMemText  string
	lastStats    []string
	lastMemStats runtime.MemStats
}

// New returns a Debug system with all overlays hidden.
func New() *Debug {
	return &Debug{}
}

// SetShowFPS sets whether the FPS counter is drawn (top-right, green).
func (d *Debug) SetShowFPS(show bool) {
	d.ShowFPS = show
}

// SetShowMemAlloc sets whether the memory allocation counter is drawn (top-right, under FPS).
func (d *Debug) SetShowMemAlloc(show bool) {
	d.ShowMemAlloc = show
}

// SetShowStats sets whether simulation stats and the log tail are drawn.
func (d *Debug) SetShowStats(show bool) {
	d.ShowStats = show
}

// Draw renders any enabled overlays. Call after the scene in the draw loop.
// Text is only recomputed every updateInterval frames to limit allocations; log lines are drawn as given.
func (d *Debug) Draw(st sim.Stats, log []string) {
	d.frameCount++
	update := (d.frameCount % updateInterval) == 0
	if (d.ShowFPS && d.lastFpsText == "") || (d.ShowMemAlloc && d.lastMemText == "") || (d.ShowStats && d.lastStats == nil) {
		update = true
	}

	screenW := int32(rl.GetScreenWidth())
	y := int32(padding)

	if d.ShowFPS {
		if update {
			d.lastFpsText = fmt.Sprintf("FPS: %d", rl.GetFPS())
		}
		drawRight(d.lastFpsText, screenW, y)
		y += lineHeight
	}

	if d.ShowMemAlloc {
		if update {
			runtime.ReadMemStats(&d.lastMemStats)
			mb := float64(d.lastMemStats.Alloc) / (1024 * 1024)
			d.lastMemText = fmt.Sprintf("Mem: %.2f MiB", mb)
		}
		drawRight(d.lastMemText, screenW, y)
	}

	if !d.ShowStats {
		return
	}
	if update {
		d.lastStats = st.Lines()
	}
	for i, line := range d.lastStats {
		rl.DrawText(line, padding, padding+int32(i)*lineHeight, fontSize, rl.RayWhite)
	}
	if len(log) > logLines {
		log = log[len(log)-logLines:]
	}
	base := int32(rl.GetScreenHeight()) - padding - int32(len(log))*lineHeight
	for i, line := range log {
		rl.DrawText(line, padding, base+int32(i)*lineHeight, fontSize-4, rl.Gray)
	}
}

func drawRight(text string, screenW, y int32) {
	if text == "" {
		return
	}
	w := rl.MeasureText(text, fontSize)
	rl.DrawText(text, screenW-w-padding, y, fontSize, rl.Green)
}
