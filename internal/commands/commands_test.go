package commands

import (
	"bytes"
	"errors"
	"flag"
	"io"
	"slices"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		line   string
		want   []string
		wantOK bool
	}{
		{"wait -s 1.5", []string{"wait", "-s", "1.5"}, true},
		{"  toggle   ", []string{"toggle"}, true},
		{"tilt -roll 10 # lean right", []string{"tilt", "-roll", "10"}, true},
		{"# only a comment", nil, false},
		{"", nil, false},
		{"   \t", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, ok := Parse(tt.line)
			if ok != tt.wantOK || !slices.Equal(got, tt.want) {
				t.Errorf("Parse(%q) = %q, %v; want %q, %v", tt.line, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

type recorder struct {
	reg   *Registry
	calls []string
	secs  float64
}

func newRecorder() *recorder {
	r := &recorder{reg: NewRegistry()}

	wait := flag.NewFlagSet("wait", flag.ContinueOnError)
	wait.SetOutput(io.Discard)
	s := wait.Float64("s", 1, "seconds")
	r.reg.Register("wait", "-s SECONDS", wait, func() error {
		r.secs += *s
		r.calls = append(r.calls, "wait")
		return nil
	})

	toggle := flag.NewFlagSet("toggle", flag.ContinueOnError)
	r.reg.Register("toggle", "start or stop spawning", toggle, func() error {
		r.calls = append(r.calls, "toggle")
		return nil
	})

	fail := flag.NewFlagSet("fail", flag.ContinueOnError)
	r.reg.Register("fail", "always fails", fail, func() error {
		return errors.New("boom")
	})
	return r
}

func TestExecute(t *testing.T) {
	r := newRecorder()
	if err := r.reg.Execute([]string{"wait", "-s", "2.5"}); err != nil {
		t.Fatal(err)
	}
	// the default comes back on the next call
	if err := r.reg.Execute([]string{"wait"}); err != nil {
		t.Fatal(err)
	}
	if r.secs != 3.5 {
		t.Errorf("waited %v, want 3.5", r.secs)
	}

	if err := r.reg.Execute([]string{"jump"}); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("Execute(jump) = %v, want ErrUnknownCommand", err)
	}
	if err := r.reg.Execute(nil); err == nil {
		t.Error("Execute(nil) = nil")
	}
	if err := r.reg.Execute([]string{"wait", "-s", "soon"}); err == nil || !strings.HasPrefix(err.Error(), "wait:") {
		t.Errorf("Execute with a bad flag = %v", err)
	}
}

func TestRunScript(t *testing.T) {
	r := newRecorder()
	script := `
# pour for a second, pause, pour again
toggle
wait -s 1
toggle
wait -s 0.5  # settle
`
	if err := r.reg.RunScript(strings.NewReader(script)); err != nil {
		t.Fatalf("RunScript: %v", err)
	}
	want := []string{"toggle", "wait", "toggle", "wait"}
	if !slices.Equal(r.calls, want) {
		t.Errorf("calls = %v, want %v", r.calls, want)
	}
	if r.secs != 1.5 {
		t.Errorf("waited %v, want 1.5", r.secs)
	}
}

func TestRunScriptStopsAtFailure(t *testing.T) {
	r := newRecorder()
	err := r.reg.RunScript(strings.NewReader("toggle\n\nfail\ntoggle\n"))
	if err == nil || !strings.Contains(err.Error(), "line 3: boom") {
		t.Fatalf("RunScript = %v, want failure on line 3", err)
	}
	if len(r.calls) != 1 {
		t.Errorf("calls = %v, want only the first toggle", r.calls)
	}
}

func TestHelp(t *testing.T) {
	r := newRecorder()
	var buf bytes.Buffer
	r.reg.Help(&buf)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 || !strings.Contains(lines[1], "toggle") || !strings.Contains(lines[2], "-s SECONDS") {
		t.Errorf("Help() =\n%s", buf.String())
	}
}
