package graphics

import rl "github.com/gen2brain/raylib-go/raylib"

// Window describes the viewer window.
type Window struct {
	Title     string
	Width     int32
	Height    int32
	TargetFPS int32
}

// Run starts the window and main loop. Each frame it calls update with the frame delta in seconds
// (input and simulation), then clears the screen and calls draw (scene and overlays).
// The loop ends when the window is closed or ESC is pressed.
func Run(win Window, update func(dt float32), draw func()) {
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(win.Width, win.Height, win.Title)
	defer rl.CloseWindow()

	fps := win.TargetFPS
	if fps <= 0 {
		fps = 60
	}
	rl.SetTargetFPS(fps)

	for !rl.WindowShouldClose() {
		update(rl.GetFrameTime())

		rl.BeginDrawing()
		rl.ClearBackground(rl.NewColor(24, 26, 30, 255))
		draw()
		rl.EndDrawing()
	}
}
