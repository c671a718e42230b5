// Package config loads the TOML configuration, creating a default file on
// first launch.
package config

import (
	"errors"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultTasksFileName  = "tasks-v1.json"
	DefaultDBName         = "tasks.db"
)

type Keymap struct {
	Quit          string `toml:"quit"`
	Add           string `toml:"add"`
	Up            string `toml:"up"`
	Down          string `toml:"down"`
	Toggle        string `toml:"toggle"`
	Delete        string `toml:"delete"`
	Confirm       string `toml:"confirm"`
	Cancel        string `toml:"cancel"`
	Star          string `toml:"star"`
	Archive       string `toml:"archive"`
	ShowArchived  string `toml:"show_archived"`
	Search        string `toml:"search"`
	NextView      string `toml:"next_view"`
	CycleSort     string `toml:"cycle_sort"`
	FlipSort      string `toml:"flip_sort"`
	AddSubtask    string `toml:"add_subtask"`
	ToggleSubtask string `toml:"toggle_subtask"`
	Pomodoro      string `toml:"pomodoro"`
	Export        string `toml:"export"`
	Import        string `toml:"import"`
	ClearAll      string `toml:"clear_all"`
}

// Storage selects a persistence backend: "json" (default) or "sqlite".
type Storage struct {
	Backend string `toml:"backend"`
	Path    string `toml:"path"`
}

// Defaults seed new tasks; the original app read these from its settings
// screen at creation time.
type Defaults struct {
	Priority      string `toml:"priority"`
	Category      string `toml:"category"`
	EstimatedTime int    `toml:"estimated_time"`
}

type Pomodoro struct {
	FocusMinutes int `toml:"focus_minutes"`
	BreakMinutes int `toml:"break_minutes"`
}

type Appearance struct {
	Theme    string `toml:"theme"`
	DarkMode bool   `toml:"dark_mode"`
}

type Config struct {
	Storage     Storage    `toml:"storage"`
	Defaults    Defaults   `toml:"defaults"`
	Pomodoro    Pomodoro   `toml:"pomodoro"`
	Appearance  Appearance `toml:"appearance"`
	DefaultView string     `toml:"default_view"`
	SortBy      string     `toml:"sort_by"`
	SortOrder   string     `toml:"sort_order"`
	Keys        Keymap     `toml:"keys"`
}

// ResolveConfigPath places the config under the user config dir, falling
// back to the working directory when that is unavailable.
func ResolveConfigPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return DefaultConfigFileName
	}
	return filepath.Join(base, "taskflow", DefaultConfigFileName)
}

// LoadOrCreate reads the config at path, writing the defaults first if no
// file exists. Missing fields fall back to defaults.
func LoadOrCreate(path string) (Config, error) {
	dir := filepath.Dir(path)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		cfg := defaultConfig(dir)
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return defaultConfig(dir), err
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return defaultConfig(dir), err
	}
	cfg.fillGaps(dir)
	return cfg, nil
}

func (c *Config) fillGaps(dir string) {
	if c.Storage.Backend == "" {
		c.Storage.Backend = "json"
	}
	if c.Storage.Path == "" {
		c.Storage.Path = defaultStoragePath(dir, c.Storage.Backend)
	}
	if c.Defaults.Priority == "" {
		c.Defaults.Priority = "medium"
	}
	if c.Defaults.Category == "" {
		c.Defaults.Category = "personal"
	}
	if c.Defaults.EstimatedTime <= 0 {
		c.Defaults.EstimatedTime = 30
	}
	if c.Pomodoro.FocusMinutes <= 0 {
		c.Pomodoro.FocusMinutes = 25
	}
	if c.Pomodoro.BreakMinutes <= 0 {
		c.Pomodoro.BreakMinutes = 5
	}
	if c.Appearance.Theme == "" {
		c.Appearance.Theme = "default"
	}
	if c.DefaultView == "" {
		c.DefaultView = "all"
	}
	if c.SortBy == "" {
		c.SortBy = "createdAt"
	}
	if c.SortOrder == "" {
		c.SortOrder = "asc"
	}
	def := defaultConfig(dir).Keys
	fillKey(&c.Keys.Quit, def.Quit)
	fillKey(&c.Keys.Add, def.Add)
	fillKey(&c.Keys.Up, def.Up)
	fillKey(&c.Keys.Down, def.Down)
	fillKey(&c.Keys.Toggle, def.Toggle)
	fillKey(&c.Keys.Delete, def.Delete)
	fillKey(&c.Keys.Confirm, def.Confirm)
	fillKey(&c.Keys.Cancel, def.Cancel)
	fillKey(&c.Keys.Star, def.Star)
	fillKey(&c.Keys.Archive, def.Archive)
	fillKey(&c.Keys.ShowArchived, def.ShowArchived)
	fillKey(&c.Keys.Search, def.Search)
	fillKey(&c.Keys.NextView, def.NextView)
	fillKey(&c.Keys.CycleSort, def.CycleSort)
	fillKey(&c.Keys.FlipSort, def.FlipSort)
	fillKey(&c.Keys.AddSubtask, def.AddSubtask)
	fillKey(&c.Keys.ToggleSubtask, def.ToggleSubtask)
	fillKey(&c.Keys.Pomodoro, def.Pomodoro)
	fillKey(&c.Keys.Export, def.Export)
	fillKey(&c.Keys.Import, def.Import)
	fillKey(&c.Keys.ClearAll, def.ClearAll)
}

func fillKey(key *string, fallback string) {
	if *key == "" {
		*key = fallback
	}
}

func write(path string, cfg Config) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil && !errors.Is(err, os.ErrExist) {
			return err
		}
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultStoragePath(dir, backend string) string {
	name := DefaultTasksFileName
	if backend == "sqlite" {
		name = DefaultDBName
	}
	if dir == "." || dir == "" {
		return name
	}
	return filepath.Join(dir, name)
}

func defaultConfig(dir string) Config {
	return Config{
		Storage: Storage{
			Backend: "json",
			Path:    defaultStoragePath(dir, "json"),
		},
		Defaults: Defaults{
			Priority:      "medium",
			Category:      "personal",
			EstimatedTime: 30,
		},
		Pomodoro: Pomodoro{
			FocusMinutes: 25,
			BreakMinutes: 5,
		},
		Appearance: Appearance{
			Theme:    "default",
			DarkMode: false,
		},
		DefaultView: "all",
		SortBy:      "createdAt",
		SortOrder:   "asc",
		Keys: Keymap{
			Quit:          "q",
			Add:           "a",
			Up:            "k",
			Down:          "j",
			Toggle:        " ",
			Delete:        "d",
			Confirm:       "enter",
			Cancel:        "esc",
			Star:          "s",
			Archive:       "x",
			ShowArchived:  "v",
			Search:        "/",
			NextView:      "tab",
			CycleSort:     "o",
			FlipSort:      "O",
			AddSubtask:    "n",
			ToggleSubtask: "m",
			Pomodoro:      "p",
			Export:        "E",
			Import:        "I",
			ClearAll:      "X",
		},
	}
}
