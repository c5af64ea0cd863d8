package startup

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"video-library/internal/logging"
)

const databaseFile = "videos.db"

// Config is the server configuration read from the environment.
type Config struct {
	DatabaseDir        string
	Port               string
	MetricsPort        string
	LogHealthChecks    bool
	MetricsEnabled     bool
	ViewportConfigPath string

	// Derived
	DatabasePath     string
	ViewportDefaults ViewportDefaults
}

// LoadConfig reads the environment, prepares the database directory and
// loads the viewport defaults. It prints the banner and system summary
// first so that configuration errors appear after them.
func LoadConfig() (*Config, error) {
	printBanner()
	logSystemInfo()

	config := &Config{
		DatabaseDir:        getEnv("DATABASE_DIR", "/database"),
		Port:               getEnv("PORT", "8080"),
		MetricsPort:        getEnv("METRICS_PORT", "9090"),
		LogHealthChecks:    getEnvBool("LOG_HEALTH_CHECKS", true),
		MetricsEnabled:     getEnvBool("METRICS_ENABLED", true),
		ViewportConfigPath: getEnv("VIEWPORT_CONFIG", ""),
	}
	config.log()

	logSection("DIRECTORY SETUP")
	dir, err := filepath.Abs(config.DatabaseDir)
	if err != nil {
		return nil, fmt.Errorf("resolve database directory: %w", err)
	}
	config.DatabaseDir = dir
	config.DatabasePath = filepath.Join(dir, databaseFile)
	logKV("Database dir", dir)

	if err := prepareDirectory(dir); err != nil {
		return nil, fmt.Errorf("database directory %s: %w", dir, err)
	}
	logOK("Database directory is writable")

	config.ViewportDefaults = DefaultViewportDefaults()
	if path := config.ViewportConfigPath; path != "" {
		if config.ViewportDefaults, err = LoadViewportDefaults(path); err != nil {
			return nil, fmt.Errorf("viewport config: %w", err)
		}
		logOK("Viewport defaults loaded from " + path)
	}

	logging.Info("")
	logKV("Metrics", onOff(config.MetricsEnabled))
	return config, nil
}

func (c *Config) log() {
	logSection("CONFIGURATION")
	logKV("DATABASE_DIR", c.DatabaseDir)
	logKV("PORT", c.Port)
	logKV("METRICS_PORT", c.MetricsPort)
	logKV("METRICS_ENABLED", c.MetricsEnabled)
	logKV("LOG_HEALTH_CHECKS", c.LogHealthChecks)
	logKV("LOG_LEVEL", logging.GetLevel())
	if c.ViewportConfigPath == "" {
		logKV("VIEWPORT_CONFIG", "(built-in defaults)")
	} else {
		logKV("VIEWPORT_CONFIG", c.ViewportConfigPath)
	}
}

// prepareDirectory creates dir when missing and checks that files can be
// written to it.
func prepareDirectory(dir string) error {
	info, err := os.Stat(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		logging.Debug("  created %s", dir)
	case err != nil:
		return err
	case !info.IsDir():
		return errors.New("not a directory")
	}

	probe, err := os.CreateTemp(dir, ".write-test-*")
	if err != nil {
		return fmt.Errorf("not writable: %w", err)
	}
	name := probe.Name()
	probe.Close()
	if err := os.Remove(name); err != nil {
		logging.Warn("could not remove %s: %v", name, err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		logging.Warn("%s=%q is not a boolean, using %v", key, v, fallback)
		return fallback
	}
	return b
}
