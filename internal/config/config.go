package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Same-window policies for TrackerConfig.SameWindow
const (
	SameWindowReopen = "reopen" // close and open a fresh session
	SameWindowExtend = "extend" // keep the open session running
)

var validBackends = map[string]bool{
	"auto":     true,
	"yabai":    true,
	"x11":      true,
	"sway":     true,
	"hyprland": true,
}

// Config holds all application configuration
type Config struct {
	// Session store configuration
	Store StoreConfig

	// Window directory configuration
	Directory DirectoryConfig

	// Tracker configuration
	Tracker TrackerConfig

	// Archive database configuration
	Archive ArchiveConfig

	// Logging configuration
	Log LogConfig

	// Daemon configuration
	Daemon DaemonConfig

	// Web server configuration
	Web WebConfig
}

// StoreConfig holds the location and locking of the session document
type StoreConfig struct {
	Dir         string        // Directory holding the data and lock files
	DataFile    string        `split_words:"true"` // Session document file name
	LockFile    string        `split_words:"true"` // Lock file name
	LockTimeout time.Duration `split_words:"true"` // Max wait for the exclusive lock
	LockRetry   time.Duration `split_words:"true"` // Delay between lock attempts
}

// DirectoryConfig holds window directory configuration
type DirectoryConfig struct {
	Backend string        // auto, yabai, x11, sway or hyprland
	Timeout time.Duration // Max time to wait for the window manager
}

// TrackerConfig holds session tracking behavior
type TrackerConfig struct {
	SameWindow string `split_words:"true"` // reopen or extend
}

// ArchiveConfig holds the optional SQLite archive configuration
type ArchiveConfig struct {
	Enabled bool
	Path    string // Empty means use default ~/.config/oculus/oculus.db
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	File   string // Optional log file, in addition to stderr
	Pretty bool   // Human readable console output
}

// DaemonConfig holds daemon process configuration
type DaemonConfig struct {
	PIDFile string `split_words:"true"` // Path to PID file for serve mode
}

// WebConfig holds web server configuration
type WebConfig struct {
	Host string // Host to bind web server to
	Port int    // Port for web server
}

// Default returns a Config with sensible default values
func Default() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Store: StoreConfig{
			Dir:         homeDir,
			DataFile:    ".oculus_sessions.json",
			LockFile:    ".oculus_sessions.lock",
			LockTimeout: 5 * time.Second,
			LockRetry:   25 * time.Millisecond,
		},
		Directory: DirectoryConfig{
			Backend: "auto",
			Timeout: 2 * time.Second,
		},
		Tracker: TrackerConfig{
			SameWindow: SameWindowReopen,
		},
		Archive: ArchiveConfig{
			Enabled: false,
			Path:    "",
		},
		Log: LogConfig{
			Level:  "warn",
			Pretty: true,
		},
		Daemon: DaemonConfig{
			PIDFile: fmt.Sprintf("/tmp/oculus-%d.pid", os.Getuid()),
		},
		Web: WebConfig{
			Host: "localhost",
			Port: defaultWebPort(os.Getuid()),
		},
	}
}

// defaultWebPort derives a per-user port so several users can serve at once
func defaultWebPort(uid int) int {
	if uid < 0 {
		uid = 0
	}
	port := 10000 + uid
	if port > 65535 {
		port = 10000 + uid%10000
	}
	return port
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Store.Dir == "" {
		return fmt.Errorf("store directory cannot be empty")
	}

	if c.Store.DataFile == "" || c.Store.LockFile == "" {
		return fmt.Errorf("store data and lock file names cannot be empty")
	}

	if c.Store.DataFile == c.Store.LockFile {
		return fmt.Errorf("store data file and lock file must differ, both are %q", c.Store.DataFile)
	}

	if c.Store.LockTimeout <= 0 {
		return fmt.Errorf("lock timeout must be positive, got %v", c.Store.LockTimeout)
	}

	if c.Store.LockRetry <= 0 || c.Store.LockRetry > c.Store.LockTimeout {
		return fmt.Errorf("lock retry (%v) must be positive and not exceed the lock timeout (%v)",
			c.Store.LockRetry, c.Store.LockTimeout)
	}

	if !validBackends[c.Directory.Backend] {
		return fmt.Errorf("unknown window directory backend: %s", c.Directory.Backend)
	}

	if c.Directory.Timeout <= 0 {
		return fmt.Errorf("directory timeout must be positive, got %v", c.Directory.Timeout)
	}

	if c.Tracker.SameWindow != SameWindowReopen && c.Tracker.SameWindow != SameWindowExtend {
		return fmt.Errorf("same-window policy must be %q or %q, got %q",
			SameWindowReopen, SameWindowExtend, c.Tracker.SameWindow)
	}

	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.Log.Level, err)
	}

	if c.Web.Port < 1 || c.Web.Port > 65535 {
		return fmt.Errorf("web port must be between 1 and 65535, got %d", c.Web.Port)
	}

	if c.Web.Host == "" {
		return fmt.Errorf("web host cannot be empty")
	}

	if c.Daemon.PIDFile == "" {
		return fmt.Errorf("PID file path cannot be empty")
	}

	return nil
}

// DataPath returns the full path of the session document
func (c *Config) DataPath() string {
	return filepath.Join(c.Store.Dir, c.Store.DataFile)
}

// LockPath returns the full path of the lock file
func (c *Config) LockPath() string {
	return filepath.Join(c.Store.Dir, c.Store.LockFile)
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf(`Configuration:
  Store:
    Data File: %s
    Lock File: %s
    Lock Timeout: %v
  Directory:
    Backend: %s
    Timeout: %v
  Tracker:
    Same Window: %s
  Archive:
    Enabled: %v
    Path: %s
  Log:
    Level: %s
  Daemon:
    PID File: %s
  Web:
    Host: %s
    Port: %d`,
		c.DataPath(),
		c.LockPath(),
		c.Store.LockTimeout,
		c.Directory.Backend,
		c.Directory.Timeout,
		c.Tracker.SameWindow,
		c.Archive.Enabled,
		c.Archive.Path,
		c.Log.Level,
		c.Daemon.PIDFile,
		c.Web.Host,
		c.Web.Port,
	)
}
