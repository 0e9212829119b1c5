package terminal

import (
	"flag"
	"strings"
	"testing"

	"coinpile/internal/commands"
	"coinpile/internal/logger"
)

func TestSubmit(t *testing.T) {
	log := logger.New("")
	reg := commands.NewRegistry()
	toggled := 0
	reg.Register("toggle", "", flag.NewFlagSet("toggle", flag.ContinueOnError), func() error {
		toggled++
		return nil
	})
	term := New(log, reg)

	term.Submit("toggle")
	term.Submit("   # nothing")
	term.Submit("")
	term.Submit("explode")

	if toggled != 1 {
		t.Errorf("toggle ran %d times, want 1", toggled)
	}
	lines := log.Lines()
	if len(lines) != 3 {
		t.Fatalf("log = %q, want echo, echo, error", lines)
	}
	if !strings.HasSuffix(lines[0], "> toggle") || !strings.HasSuffix(lines[1], "> explode") ||
		!strings.Contains(lines[2], "unknown command: explode") {
		t.Errorf("log = %q", lines)
	}
}

func TestBackspace(t *testing.T) {
	tests := []struct{ in, want string }{
		{"tilt", "til"},
		{"ø", ""},
		{"a€", "a"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := backspace(tt.in); got != tt.want {
			t.Errorf("backspace(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
