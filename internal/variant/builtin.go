package variant

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"
)

//go:embed variants/*.yaml
var builtinFS embed.FS

// ErrUnknownVariant is returned by Builtin and Open for names that match nothing.
var ErrUnknownVariant = errors.New("variant: unknown variant")

// Names lists the built-in variants in lexical order.
func Names() []string {
	files, _ := fs.Glob(builtinFS, "variants/*.yaml")
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, strings.TrimSuffix(path.Base(f), ".yaml"))
	}
	return names
}

// Builtin decodes the named built-in variant. Every call returns a fresh copy.
func Builtin(name string) (*Variant, error) {
	f, err := builtinFS.Open("variants/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("%w %q (have %s)", ErrUnknownVariant, name, strings.Join(Names(), ", "))
	}
	defer f.Close()
	return Load(f)
}

// Open resolves ref as a YAML file path when it names an existing file, else as a built-in.
func Open(ref string) (*Variant, error) {
	if strings.HasSuffix(ref, ".yaml") || strings.HasSuffix(ref, ".yml") {
		if _, err := os.Stat(ref); err == nil {
			return LoadFile(ref)
		}
	}
	return Builtin(ref)
}
