package theme

import (
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseOverridesDefaults(t *testing.T) {
	input := `
# comment
Name: Custom
Accent: #112233
selectiontint: #FACC1540
HintText: black
Unknown: #FFFFFF
`
	th, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if th.Name != "Custom" {
		t.Errorf("name = %q", th.Name)
	}
	if th.Accent != (color.RGBA{0x11, 0x22, 0x33, 0xFF}) {
		t.Errorf("accent = %+v", th.Accent)
	}
	if th.SelectionTint != (color.RGBA{0xFA, 0xCC, 0x15, 0x40}) {
		t.Errorf("tint = %+v", th.SelectionTint)
	}
	if th.HintText != (color.RGBA{0, 0, 0, 0xFF}) {
		t.Errorf("hint text = %+v", th.HintText)
	}
	if th.Background != Default().Background {
		t.Errorf("unset field lost its default")
	}
}

func TestParseRejectsBadColor(t *testing.T) {
	if _, err := Parse(strings.NewReader("Accent: #12345\n")); err == nil {
		t.Fatal("expected error")
	}
	if _, err := Parse(strings.NewReader("Accent: notacolor\n")); err == nil {
		t.Fatal("expected error")
	}
}

func TestHexRoundTrip(t *testing.T) {
	for _, c := range []color.RGBA{{1, 2, 3, 255}, {250, 204, 21, 64}} {
		got, err := ParseColor(Hex(c))
		if err != nil {
			t.Fatalf("ParseColor(%s): %v", Hex(c), err)
		}
		if got != c {
			t.Fatalf("round trip %+v -> %+v", c, got)
		}
	}
}

func TestLoaderEmbedded(t *testing.T) {
	l := &Loader{ConfigDir: t.TempDir(), SystemDir: t.TempDir()}
	th, err := l.Load("dark")
	if err != nil {
		t.Fatalf("load dark: %v", err)
	}
	if th.Name != "Dark" {
		t.Fatalf("name = %q", th.Name)
	}
	if th.SelectionStroke != (color.RGBA{255, 255, 255, 255}) {
		t.Fatalf("stroke = %+v", th.SelectionStroke)
	}
	if def, err := l.Load("default"); err != nil || def.Name != "Default" {
		t.Fatalf("default = %+v, %v", def, err)
	}
	if _, err := l.Load("missing"); err == nil {
		t.Fatal("expected error for unknown theme")
	}
}

func TestNames(t *testing.T) {
	names := Names()
	want := map[string]bool{"default": false, "dark": false, "pink": false}
	for _, n := range names {
		if _, ok := want[n]; ok {
			want[n] = true
		}
	}
	for n, seen := range want {
		if !seen {
			t.Errorf("missing theme %q in %v", n, names)
		}
	}
}

func TestFields(t *testing.T) {
	n := 0
	Default().Fields(func(string, color.RGBA) { n++ })
	if n != 20 {
		t.Fatalf("fields = %d, want 20", n)
	}
}

func TestLoaderSearchOrder(t *testing.T) {
	cfgDir, sysDir := t.TempDir(), t.TempDir()
	write := func(dir, file, name string) string {
		p := filepath.Join(dir, file)
		if err := os.WriteFile(p, []byte("Name: "+name+"\nAccent: #00FF00\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		return p
	}
	write(cfgDir, "mine.theme", "User")
	write(sysDir, "mine.theme", "System")
	write(sysDir, "shared.theme", "Shared")
	direct := write(t.TempDir(), "custom.rc", "Direct")

	l := &Loader{ConfigDir: cfgDir, SystemDir: sysDir}
	tests := []struct {
		name string
		want string
	}{
		{name: "mine", want: "User"},
		{name: "mine.theme", want: "User"},
		{name: "shared", want: "Shared"},
		{name: direct, want: "Direct"},
		{name: "dark", want: "Dark"},
	}
	for _, tc := range tests {
		th, err := l.Load(tc.name)
		if err != nil {
			t.Fatalf("load %q: %v", tc.name, err)
		}
		if th.Name != tc.want {
			t.Fatalf("load %q = %q, want %q", tc.name, th.Name, tc.want)
		}
	}
}
