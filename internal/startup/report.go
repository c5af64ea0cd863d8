package startup

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"video-library/internal/logging"
)

const sectionRule = "------------------------------------------------------------"

const banner = `
 _   ___    __                  __    _ __
| | / (_)__/ /__ ___    ___    / /   (_) /  _______ _______ __
| |/ / / _  / -_) _ \  /___/  / /__ / / _ \/ __/ _ '/ __/ // /
|___/_/\_,_/\__/\___/        /____//_/_.__/_/  \_,_/_/  \_, /
                                                       /___/`

// logSection starts a titled block of startup output.
func logSection(format string, args ...interface{}) {
	logging.Info("")
	logging.Info(sectionRule)
	logging.Info(format, args...)
	logging.Info(sectionRule)
}

// logKV logs an aligned "label: value" line.
func logKV(label string, value interface{}) {
	logging.Info("  %-18s %v", label+":", value)
}

func debugKV(label string, value interface{}) {
	logging.Debug("  %-18s %v", label+":", value)
}

func logOK(msg string) {
	logging.Info("  [OK] %s", msg)
}

func onOff(enabled bool) string {
	if enabled {
		return "ENABLED"
	}
	return "DISABLED"
}

func printBanner() {
	fmt.Println(sectionRule + banner + "\n" + sectionRule)
	logKV("Version", Version)
	logKV("Commit", Commit)
	logKV("Build time", BuildTime)
	logKV("Started", time.Now().Format(time.RFC1123))
}

func logSystemInfo() {
	logSection("SYSTEM INFORMATION")
	logKV("Go version", runtime.Version())
	logKV("OS/Arch", runtime.GOOS+"/"+runtime.GOARCH)
	logKV("CPUs", runtime.NumCPU())
	logKV("GOMAXPROCS", runtime.GOMAXPROCS(0))
	if !logging.IsDebugEnabled() {
		return
	}
	debugKV("Goroutines", runtime.NumGoroutine())
	if wd, err := os.Getwd(); err == nil {
		debugKV("Working dir", wd)
	}
	if host, err := os.Hostname(); err == nil {
		debugKV("Hostname", host)
	}
}

// LogDatabaseInit reports how long opening and indexing the library took.
func LogDatabaseInit(duration time.Duration, videos int) {
	logSection("DATABASE INITIALIZATION")
	logOK(fmt.Sprintf("Database initialized in %v", duration))
	logKV("Videos loaded", videos)
}

// LogViewportDefaults logs the parameters new viewports start with.
func LogViewportDefaults(d ViewportDefaults) {
	logSection("VIEWPORT DEFAULTS")
	logKV("Sources", d.Sources)
	grouping := "none"
	if d.Groups.Field != "" {
		grouping = fmt.Sprintf("%s (property=%v, sorting=%s)", d.Groups.Field, d.Groups.IsProperty, d.Groups.Sorting)
	}
	logKV("Grouping", grouping)
	logKV("Sort", strings.Join(d.Sort, " "))
	logKV("Search cond", d.SearchCond)
}

// ServerConfig is what LogServerStarted reports.
type ServerConfig struct {
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	StartupDuration time.Duration
}

// LogServerStarted prints the endpoints once both listeners are up.
func LogServerStarted(config ServerConfig) {
	logSection("SERVER STARTED")
	logKV("Startup time", config.StartupDuration)
	logKV("API", "http://0.0.0.0:"+config.Port+"/api/viewports")
	metrics := onOff(false)
	if config.MetricsEnabled {
		metrics = "http://0.0.0.0:" + config.MetricsPort + "/metrics"
	}
	logKV("Metrics", metrics)
	logging.Info("")
	logging.Info("  Press Ctrl+C to stop")
	logging.Info(sectionRule)
}

// LogShutdownInitiated opens the shutdown section.
func LogShutdownInitiated(signal string) {
	logSection("SHUTDOWN (received %s)", signal)
}

// LogShutdownStep logs the start of a shutdown step at debug level.
func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

// LogShutdownStepComplete logs a finished shutdown step.
func LogShutdownStepComplete(step string) {
	logOK(step)
}

// LogShutdownComplete logs the end of shutdown.
func LogShutdownComplete() {
	logOK("Shutdown complete")
}

// LogFatal logs and exits.
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}
