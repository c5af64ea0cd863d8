package startup

import (
	"runtime"
	"testing"
)

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		value string
		def   bool
		want  bool
	}{
		{"", true, true},
		{"", false, false},
		{"true", false, true},
		{"false", true, false},
		{"1", false, true},
		{"0", true, false},
		{"TRUE", false, true},
		{"yes", true, true},
		{"yes", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("VIDEO_LIBRARY_TEST_BOOL", tt.value)
			if got := getEnvBool("VIDEO_LIBRARY_TEST_BOOL", tt.def); got != tt.want {
				t.Errorf("getEnvBool(%q, %v) = %v, want %v", tt.value, tt.def, got, tt.want)
			}
		})
	}
}

func TestGetBuildInfoOverrides(t *testing.T) {
	oldVersion, oldCommit := Version, Commit
	t.Cleanup(func() { Version, Commit = oldVersion, oldCommit })
	Version, Commit = "1.2.3", "abc123"

	info := GetBuildInfo()
	if info.Version != "1.2.3" || info.Commit != "abc123" {
		t.Errorf("GetBuildInfo() = %+v", info)
	}
	if info.OS != runtime.GOOS || info.Arch != runtime.GOARCH {
		t.Errorf("platform = %s/%s, want %s/%s", info.OS, info.Arch, runtime.GOOS, runtime.GOARCH)
	}
	if info.GoVersion == "" {
		t.Error("GoVersion is empty")
	}
}

func BenchmarkGetEnvBool(b *testing.B) {
	b.Setenv("VIDEO_LIBRARY_BENCH_BOOL", "true")
	for i := 0; i < b.N; i++ {
		_ = getEnvBool("VIDEO_LIBRARY_BENCH_BOOL", false)
	}
}
