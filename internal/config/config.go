package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"tasklite/internal/ambient"
	"tasklite/internal/storage"
	"tasklite/internal/task"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "tasklite.db"
	DefaultFileName       = "tasklite.json"
	DefaultAddr           = "127.0.0.1:8080"
	EnvConfigPath         = "TASKLITE_CONFIG"

	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendMemory = "memory"
)

type Keymap struct {
	Quit        string `toml:"quit"`
	Add         string `toml:"add"`
	FocusInput  string `toml:"focus_input"`
	Up          string `toml:"up"`
	Down        string `toml:"down"`
	Toggle      string `toml:"toggle"`
	Delete      string `toml:"delete"`
	Edit        string `toml:"edit"`
	Confirm     string `toml:"confirm"`
	Cancel      string `toml:"cancel"`
	ClearAll    string `toml:"clear_all"`
	Theme       string `toml:"theme"`
	CycleFilter string `toml:"cycle_filter"`
	FilterAll   string `toml:"filter_all"`
	FilterOpen  string `toml:"filter_active"`
	FilterDone  string `toml:"filter_completed"`
}

type Ambient struct {
	Population      int `toml:"population"`
	LifetimeSeconds int `toml:"lifetime_seconds"`
	RespawnSeconds  int `toml:"respawn_seconds"`
}

func (a Ambient) Field() ambient.Config {
	return ambient.Config{
		Population: a.Population,
		Lifetime:   time.Duration(a.LifetimeSeconds) * time.Second,
		Respawn:    time.Duration(a.RespawnSeconds) * time.Second,
	}
}

type Web struct {
	Addr string `toml:"addr"`
}

type Config struct {
	Backend       string  `toml:"backend"`
	DBPath        string  `toml:"db_path"`
	FilePath      string  `toml:"file_path"`
	TasksKey      string  `toml:"tasks_key"`
	ThemeKey      string  `toml:"theme_key"`
	DefaultFilter string  `toml:"default_filter"`
	LogPath       string  `toml:"log_path"`
	Ambient       Ambient `toml:"ambient"`
	Web           Web     `toml:"web"`
	Keys          Keymap  `toml:"keys"`
}

// ResolveConfigPath prefers $TASKLITE_CONFIG, then the user config dir,
// then the working directory.
func ResolveConfigPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return DefaultConfigFileName
	}
	return filepath.Join(dir, "tasklite", DefaultConfigFileName)
}

func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg.resolve(path), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg.resolve(path), nil
}

func (c Config) Validate() error {
	switch c.Backend {
	case BackendSQLite, BackendFile, BackendMemory:
	default:
		return fmt.Errorf("unknown backend %q (want sqlite, file or memory)", c.Backend)
	}
	if !task.Filter(c.DefaultFilter).Valid() {
		return fmt.Errorf("unknown default_filter %q (want all, active or completed)", c.DefaultFilter)
	}
	return nil
}

// OpenKV opens the configured backend.
func (c Config) OpenKV() (storage.KV, error) {
	switch c.Backend {
	case BackendFile:
		return storage.OpenFile(c.FilePath)
	case BackendMemory:
		return storage.NewMemory(), nil
	default:
		return storage.Open(c.DBPath)
	}
}

func (c *Config) fillDefaults() {
	def := defaultConfig()
	if c.Backend == "" {
		c.Backend = def.Backend
	}
	if c.DBPath == "" {
		c.DBPath = def.DBPath
	}
	if c.FilePath == "" {
		c.FilePath = def.FilePath
	}
	if c.TasksKey == "" {
		c.TasksKey = def.TasksKey
	}
	if c.ThemeKey == "" {
		c.ThemeKey = def.ThemeKey
	}
	c.DefaultFilter = strings.ToLower(strings.TrimSpace(c.DefaultFilter))
	if c.DefaultFilter == "" {
		c.DefaultFilter = def.DefaultFilter
	}
	if c.Web.Addr == "" {
		c.Web.Addr = def.Web.Addr
	}
	fillKeys(&c.Keys, def.Keys)
}

func fillKeys(k *Keymap, def Keymap) {
	pairs := []struct {
		dst *string
		src string
	}{
		{&k.Quit, def.Quit},
		{&k.Add, def.Add},
		{&k.FocusInput, def.FocusInput},
		{&k.Up, def.Up},
		{&k.Down, def.Down},
		{&k.Toggle, def.Toggle},
		{&k.Delete, def.Delete},
		{&k.Edit, def.Edit},
		{&k.Confirm, def.Confirm},
		{&k.Cancel, def.Cancel},
		{&k.ClearAll, def.ClearAll},
		{&k.Theme, def.Theme},
		{&k.CycleFilter, def.CycleFilter},
		{&k.FilterAll, def.FilterAll},
		{&k.FilterOpen, def.FilterOpen},
		{&k.FilterDone, def.FilterDone},
	}
	for _, p := range pairs {
		if *p.dst == "" {
			*p.dst = p.src
		}
	}
}

// resolve anchors relative storage and log paths at the config file's directory.
func (c Config) resolve(configPath string) Config {
	dir := filepath.Dir(configPath)
	anchor := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	c.DBPath = anchor(c.DBPath)
	c.FilePath = anchor(c.FilePath)
	c.LogPath = anchor(c.LogPath)
	return c
}

func write(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultConfig() Config {
	return Config{
		Backend:       BackendSQLite,
		DBPath:        DefaultDBName,
		FilePath:      DefaultFileName,
		TasksKey:      storage.DefaultTasksKey,
		ThemeKey:      storage.DefaultThemeKey,
		DefaultFilter: string(task.FilterAll),
		Ambient: Ambient{
			Population:      ambient.DefaultPopulation,
			LifetimeSeconds: int(ambient.DefaultLifetime / time.Second),
			RespawnSeconds:  int(ambient.DefaultRespawn / time.Second),
		},
		Web: Web{Addr: DefaultAddr},
		Keys: Keymap{
			Quit:        "q",
			Add:         "a",
			FocusInput:  "ctrl+k",
			Up:          "k",
			Down:        "j",
			Toggle:      " ",
			Delete:      "d",
			Edit:        "e",
			Confirm:     "enter",
			Cancel:      "esc",
			ClearAll:    "X",
			Theme:       "ctrl+d",
			CycleFilter: "f",
			FilterAll:   "1",
			FilterOpen:  "2",
			FilterDone:  "3",
		},
	}
}
