package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/example/magicstudio/internal/mask"
	"github.com/example/magicstudio/internal/theme"
)

// Parse reads configuration from an io.Reader.
func Parse(r io.Reader) (*Config, error) {
	cfg := New()
	scanner := bufio.NewScanner(r)

	var currentSection string
	var currentTheme *theme.Theme

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			currentSection = strings.TrimSuffix(strings.TrimPrefix(line, "["), "]")
			currentTheme = nil

			if strings.HasPrefix(currentSection, "theme.") {
				themeName := strings.TrimPrefix(currentSection, "theme.")
				// Start with defaults so missing keys are fine
				currentTheme = theme.Default()
				currentTheme.Name = themeName
				cfg.Themes[themeName] = currentTheme
			}
			continue
		}

		// Key = Value or Key: Value, whichever separator comes first.
		sep := strings.IndexAny(line, "=:")
		if sep < 0 {
			continue
		}
		key := strings.TrimSpace(line[:sep])
		value := strings.TrimSpace(line[sep+1:])
		if len(value) >= 2 && strings.HasPrefix(value, "\"") && strings.HasSuffix(value, "\"") {
			value = value[1 : len(value)-1]
		}

		var err error
		section := strings.ToLower(currentSection)
		switch {
		case currentTheme != nil:
			err = theme.SetField(currentTheme, key, value)
		case section == "":
			err = setRootField(cfg, key, value)
		case section == "selection":
			err = setSelectionField(&cfg.Selection, key, value)
		case section == "generate":
			err = setGenerateField(&cfg.Generate, key, value)
		case section == "notify":
			err = setNotifyField(&cfg.Notify, key, value)
		}
		if err != nil {
			if currentSection == "" {
				return nil, fmt.Errorf("error in root section: %w", err)
			}
			return nil, fmt.Errorf("error in section [%s]: %w", currentSection, err)
		}
	}

	return cfg, scanner.Err()
}

func setRootField(cfg *Config, key, value string) error {
	switch strings.ToLower(key) {
	case "theme":
		cfg.Theme = value
	case "save_dir":
		cfg.SaveDir = value
	}
	return nil
}

func setSelectionField(s *Selection, key, value string) error {
	switch strings.ToLower(key) {
	case "closure_threshold":
		n, err := parseInt(key, value)
		if err != nil {
			return err
		}
		s.ClosureThreshold = n
	case "undo_chunk":
		n, err := parseInt(key, value)
		if err != nil {
			return err
		}
		s.UndoChunk = n
	case "fill_rule":
		rule, err := mask.ParseFillRule(value)
		if err != nil {
			return err
		}
		s.FillRule = rule
	case "antialias":
		b, err := parseBool(key, value)
		if err != nil {
			return err
		}
		s.AntiAlias = b
	}
	return nil
}

func setGenerateField(g *Generate, key, value string) error {
	switch strings.ToLower(key) {
	case "model":
		g.Model = value
	case "api_key_env":
		g.APIKeyEnv = value
	case "max_upload":
		n, err := parseInt(key, value)
		if err != nil {
			return err
		}
		if n < 0 {
			return fmt.Errorf("max_upload must not be negative")
		}
		g.MaxUpload = n
	case "timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for key %s: %w", key, err)
		}
		g.Timeout = d
	}
	return nil
}

func setNotifyField(n *Notify, key, value string) error {
	b, err := parseBool(key, value)
	if err != nil {
		return err
	}
	switch strings.ToLower(key) {
	case "save":
		n.Save = b
	case "copy":
		n.Copy = b
	case "generate":
		n.Generate = b
	}
	return nil
}

func parseBool(key, value string) (bool, error) {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid boolean for key %s: %w", key, err)
	}
	return b, nil
}

func parseInt(key, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer for key %s: %w", key, err)
	}
	return n, nil
}
