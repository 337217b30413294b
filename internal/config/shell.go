package config

import (
	"strconv"
	"strings"
	"time"
)

// ShellConfig holds configuration for the tab shell.
type ShellConfig struct {
	// CDP connection and optional browser launch
	CDPAddress    string
	CDPPort       int
	LaunchBrowser bool
	ProfileDir    string

	// Control API
	BindAddr         string
	PortCandidates   []string
	PortAutoFallback bool

	LogLevel string
	LogFile  string

	// Session and navigation
	MaxTabs         int
	DefaultURL      string
	RefreshTimeout  time.Duration
	SwipeThreshold  float64
	NavigateTimeout time.Duration

	// YAML file with the initial filter settings
	SettingsFile string
}

// LoadShell reads shell configuration from environment variables and an
// optional .env file. Out of range values fall back to their defaults.
func LoadShell() (*ShellConfig, error) {
	loadDotEnv()

	cfg := &ShellConfig{
		CDPAddress:       getEnvOrDefault("CHROMIUM_CDP_ADDRESS", "127.0.0.1"),
		CDPPort:          getEnvIntOrDefault("CHROMIUM_CDP_PORT", 9220),
		LaunchBrowser:    getEnvBoolOrDefault("SHELL_LAUNCH_BROWSER", true),
		ProfileDir:       getEnvOrDefault("SHELL_PROFILE_DIR", "./data/profile"),
		BindAddr:         getEnvOrDefault("SHELL_BIND_ADDR", "127.0.0.1:8190"),
		PortCandidates:   getEnvListOrDefault("SHELL_PORT_CANDIDATES", []string{"127.0.0.1:8191", "127.0.0.1:8192"}),
		PortAutoFallback: getEnvBoolOrDefault("SHELL_PORT_AUTO_FALLBACK", true),
		LogLevel:         strings.ToLower(getEnvOrDefault("SHELL_LOG_LEVEL", "info")),
		LogFile:          getEnvOrDefault("SHELL_LOG_FILE", "logs/tabshell.log"),
		MaxTabs:          getEnvIntOrDefault("SHELL_MAX_TABS", 7),
		DefaultURL:       getEnvOrDefault("SHELL_DEFAULT_URL", "https://www.google.com"),
		RefreshTimeout:   getEnvDurationOrDefault("SHELL_REFRESH_TIMEOUT", time.Second),
		SwipeThreshold:   getEnvFloatOrDefault("SHELL_SWIPE_THRESHOLD", 50),
		NavigateTimeout:  getEnvDurationOrDefault("SHELL_NAVIGATE_TIMEOUT", 30*time.Second),
		SettingsFile:     getEnvOrDefault("SHELL_SETTINGS_FILE", "./config/settings.yaml"),
	}
	if cfg.MaxTabs < 1 {
		cfg.MaxTabs = 7
	}
	if cfg.RefreshTimeout <= 0 {
		cfg.RefreshTimeout = time.Second
	}
	if cfg.SwipeThreshold <= 0 {
		cfg.SwipeThreshold = 50
	}
	if cfg.NavigateTimeout < time.Second {
		cfg.NavigateTimeout = time.Second
	}
	return cfg, nil
}

// CDPURL returns the CDP HTTP endpoint used by the chromedp remote allocator.
func (c *ShellConfig) CDPURL() string {
	return "http://" + c.CDPAddress + ":" + strconv.Itoa(c.CDPPort)
}
