// Package prelude carries the Elm core modules every program can see
// without an elm-stuff directory: the implicitly imported modules and a
// few that are almost always present.
package prelude

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
)

// Scheme prefixes the URIs of core modules.
const Scheme = "elm-core://"

//go:embed core
var core embed.FS

// Module is one embedded core module.
type Module struct {
	Name   string
	URI    string
	Source []byte
}

// URI returns the URI a core module is installed under.
func URI(module string) string {
	return Scheme + "/" + strings.ReplaceAll(module, ".", "/") + ".elm"
}

// IsCore reports whether uri names a core module.
func IsCore(uri string) bool {
	return strings.HasPrefix(uri, Scheme)
}

// Modules returns every embedded module in path order.
func Modules() ([]Module, error) {
	var out []Module
	err := fs.WalkDir(core, "core", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".elm") {
			return nil
		}
		src, err := core.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		name := strings.ReplaceAll(strings.TrimSuffix(strings.TrimPrefix(path, "core/"), ".elm"), "/", ".")
		out = append(out, Module{Name: name, URI: URI(name), Source: src})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk core modules: %w", err)
	}
	return out, nil
}
