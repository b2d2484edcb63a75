package theme

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const ext = ".theme"

// Loader resolves a theme name against a file path, the built-in themes,
// the user's theme directory and the system one, in that order.
type Loader struct {
	ConfigDir string
	SystemDir string
}

// NewLoader creates a Loader rooted at the usual XDG and /usr/share paths.
func NewLoader() *Loader {
	home, _ := os.UserHomeDir()
	return &Loader{
		ConfigDir: filepath.Join(home, ".config", "magicstudio", "themes"),
		SystemDir: "/usr/share/magicstudio/themes",
	}
}

// Load returns the named theme. An empty name or "default" returns Default.
func (l *Loader) Load(name string) (*Theme, error) {
	if name == "" || strings.EqualFold(name, "default") {
		return Default(), nil
	}
	if t, ok, err := parseFile(nil, name, true); ok || err != nil {
		return t, err
	}

	file := name
	if !strings.HasSuffix(file, ext) {
		file += ext
	}
	sources := []fs.FS{mustSub(EmbeddedThemes, "defaults")}
	for _, dir := range []string{l.ConfigDir, l.SystemDir} {
		if dir != "" {
			sources = append(sources, os.DirFS(dir))
		}
	}
	for _, src := range sources {
		if t, ok, err := parseFile(src, file, false); ok || err != nil {
			if err != nil {
				return nil, fmt.Errorf("theme %q: %w", name, err)
			}
			return t, nil
		}
	}
	return nil, fmt.Errorf("theme '%s' not found", name)
}

// parseFile parses path from fsys, or from the OS when direct is set. ok is
// false when no such file exists.
func parseFile(fsys fs.FS, path string, direct bool) (*Theme, bool, error) {
	var (
		f   fs.File
		err error
	)
	if direct {
		f, err = os.Open(path)
	} else {
		if !fs.ValidPath(path) {
			return nil, false, nil
		}
		f, err = fsys.Open(path)
	}
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, true, err
	}
	defer f.Close()
	if st, err := f.Stat(); err == nil && st.IsDir() {
		return nil, false, nil
	}
	t, err := Parse(f)
	return t, true, err
}

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

// Names lists the built-in theme names.
func Names() []string {
	names := []string{"default"}
	entries, err := EmbeddedThemes.ReadDir("defaults")
	if err != nil {
		return names
	}
	for _, e := range entries {
		if n, ok := strings.CutSuffix(e.Name(), ext); ok {
			names = append(names, n)
		}
	}
	return names
}
