package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	charmLog "github.com/charmbracelet/log"
	toml "github.com/pelletier/go-toml/v2"
)

type Config struct {
	Database DatabaseConfig `toml:"database"`
	Logging  LoggingConfig  `toml:"logging"`
	Board    BoardConfig    `toml:"board"`
	Drag     DragConfig     `toml:"drag"`
	Layout   LayoutConfig   `toml:"layout"`
	Keys     KeyConfig      `toml:"keys"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type LoggingConfig struct {
	Level   string        `toml:"level"`
	DevFile DevFileConfig `toml:"dev_file"`
}

// DevFileConfig controls the dev-mode log file sink. An empty Dir resolves to
// .kanboard/log under the workspace root, or the data log dir outside one.
type DevFileConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type BoardConfig struct {
	DefaultID string `toml:"default_id"`
	// File is a JSON or YAML board snapshot opened instead of the database board.
	File string `toml:"file"`
}

type DragConfig struct {
	// ActivationDistance is how many cells the pointer must travel before a press
	// becomes a drag.
	ActivationDistance int `toml:"activation_distance"`
}

type LayoutConfig struct {
	ColumnWidth int `toml:"column_width"`
	CardHeight  int `toml:"card_height"`
	ColumnGap   int `toml:"column_gap"`
}

// KeyConfig rebinds TUI keys. Blank values keep the built-in bindings.
type KeyConfig struct {
	Reload     string `toml:"reload"`
	CancelDrag string `toml:"cancel_drag"`
}

func Default(dbPath string) Config {
	return Config{
		Database: DatabaseConfig{
			Path: dbPath,
		},
		Logging: LoggingConfig{
			Level: "info",
			DevFile: DevFileConfig{
				Enabled: true,
			},
		},
		Drag: DragConfig{
			ActivationDistance: 3,
		},
		Layout: LayoutConfig{
			ColumnWidth: 28,
			CardHeight:  3,
			ColumnGap:   1,
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	c.Database.Path = strings.TrimSpace(c.Database.Path)
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	if _, err := charmLog.ParseLevel(strings.TrimSpace(c.Logging.Level)); err != nil {
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}

	if file := strings.TrimSpace(c.Board.File); file != "" {
		switch strings.ToLower(filepath.Ext(file)) {
		case ".json", ".yaml", ".yml":
		default:
			return fmt.Errorf("invalid board.file: %q must end in .json, .yaml or .yml", c.Board.File)
		}
	}

	if c.Drag.ActivationDistance < 0 {
		return errors.New("drag.activation_distance must be >= 0")
	}

	if c.Layout.ColumnWidth < 8 {
		return fmt.Errorf("layout.column_width must be >= 8, got %d", c.Layout.ColumnWidth)
	}
	if c.Layout.CardHeight < 1 {
		return fmt.Errorf("layout.card_height must be >= 1, got %d", c.Layout.CardHeight)
	}
	if c.Layout.ColumnGap < 0 {
		return fmt.Errorf("layout.column_gap must be >= 0, got %d", c.Layout.ColumnGap)
	}

	return nil
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
