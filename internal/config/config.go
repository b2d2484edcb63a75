package config

import (
	"fmt"
	"image/color"
	"sort"
	"strings"
	"time"

	"github.com/example/magicstudio/internal/mask"
	"github.com/example/magicstudio/internal/selection"
	"github.com/example/magicstudio/internal/theme"
)

const (
	DefaultModel     = "gemini-2.5-flash-image"
	DefaultAPIKeyEnv = "GEMINI_API_KEY"
	DefaultMaxUpload = 2048
	DefaultTimeout   = 2 * time.Minute
)

// Selection holds lasso tuning.
type Selection struct {
	ClosureThreshold int
	UndoChunk        int
	FillRule         mask.FillRule
	AntiAlias        bool
}

// Generate holds settings for the image generation backend.
type Generate struct {
	Model     string
	APIKeyEnv string
	// MaxUpload bounds the longest side of images sent to the backend; 0
	// disables downscaling.
	MaxUpload int
	Timeout   time.Duration
}

// Notify holds notification settings.
type Notify struct {
	Save     bool
	Copy     bool
	Generate bool
}

// Config holds the application configuration.
type Config struct {
	Theme     string
	SaveDir   string
	Selection Selection
	Generate  Generate
	Notify    Notify
	Themes    map[string]*theme.Theme
}

// New creates a new Config with defaults.
func New() *Config {
	return &Config{
		Theme: "", // Default to empty to allow fallback to Env/Default
		Selection: Selection{
			ClosureThreshold: selection.DefaultClosureThreshold,
			UndoChunk:        selection.DefaultUndoChunk,
			FillRule:         mask.NonZero,
		},
		Generate: Generate{
			Model:     DefaultModel,
			APIKeyEnv: DefaultAPIKeyEnv,
			MaxUpload: DefaultMaxUpload,
			Timeout:   DefaultTimeout,
		},
		Themes: make(map[string]*theme.Theme),
	}
}

// RecorderOptions converts the selection settings into recorder options.
func (c *Config) RecorderOptions() []selection.Option {
	return []selection.Option{
		selection.WithClosureThreshold(c.Selection.ClosureThreshold),
		selection.WithUndoChunk(c.Selection.UndoChunk),
		selection.WithMaskOptions(mask.Options{Rule: c.Selection.FillRule, AntiAlias: c.Selection.AntiAlias}),
	}
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	if c.Theme != "" {
		fmt.Fprintf(&sb, "theme = %s\n", c.Theme)
	}
	if c.SaveDir != "" {
		fmt.Fprintf(&sb, "save_dir = %s\n", c.SaveDir)
	}
	sb.WriteString("\n")

	sb.WriteString("[selection]\n")
	fmt.Fprintf(&sb, "closure_threshold = %d\n", c.Selection.ClosureThreshold)
	fmt.Fprintf(&sb, "undo_chunk = %d\n", c.Selection.UndoChunk)
	fmt.Fprintf(&sb, "fill_rule = %s\n", c.Selection.FillRule)
	fmt.Fprintf(&sb, "antialias = %v\n", c.Selection.AntiAlias)
	sb.WriteString("\n")

	sb.WriteString("[generate]\n")
	fmt.Fprintf(&sb, "model = %s\n", c.Generate.Model)
	fmt.Fprintf(&sb, "api_key_env = %s\n", c.Generate.APIKeyEnv)
	fmt.Fprintf(&sb, "max_upload = %d\n", c.Generate.MaxUpload)
	fmt.Fprintf(&sb, "timeout = %s\n", c.Generate.Timeout)
	sb.WriteString("\n")

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "save = %v\n", c.Notify.Save)
	fmt.Fprintf(&sb, "copy = %v\n", c.Notify.Copy)
	fmt.Fprintf(&sb, "generate = %v\n", c.Notify.Generate)
	sb.WriteString("\n")

	// Sort keys for deterministic output
	var themeNames []string
	for name := range c.Themes {
		themeNames = append(themeNames, name)
	}
	sort.Strings(themeNames)

	for _, name := range themeNames {
		t := c.Themes[name]
		fmt.Fprintf(&sb, "[theme.%s]\n", name)
		fmt.Fprintf(&sb, "Name: %s\n", t.Name)
		t.Fields(func(field string, col color.RGBA) {
			fmt.Fprintf(&sb, "%s: %s\n", field, theme.Hex(col))
		})
		sb.WriteString("\n")
	}

	return sb.String()
}
