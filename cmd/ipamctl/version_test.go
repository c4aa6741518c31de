package main

import (
	"runtime"
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

func TestVersionCommand(t *testing.T) {
	resetFlags()
	t.Cleanup(resetFlags)

	output, err := captureOutput(t, runVersion)
	if err != nil {
		t.Fatalf("runVersion() error = %v", err)
	}
	assertContains(t, output, []string{"ipamctl ", "commit:", "built:", runtime.Version(), "/xhr/smart_search_prefix"})

	jsonOut = true
	output, err = captureOutput(t, runVersion)
	if err != nil {
		t.Fatalf("runVersion() error = %v", err)
	}
	var got VersionOutput
	if err := json.Unmarshal([]byte(output), &got); err != nil {
		t.Fatalf("invalid JSON output: %v\nOutput: %s", err, output)
	}
	if got.GoVersion != runtime.Version() {
		t.Errorf("go_version = %q, want %q", got.GoVersion, runtime.Version())
	}
	if !strings.Contains(got.Platform, runtime.GOOS) {
		t.Errorf("platform = %q", got.Platform)
	}
	if got.Version == "" || got.Commit == "" {
		t.Errorf("version fields should never be empty: %+v", got)
	}
}

func TestVersionPrefersLinkerFlags(t *testing.T) {
	old := version
	version = "v1.2.3"
	t.Cleanup(func() { version = old })

	if got := versionInfo().Version; got != "v1.2.3" {
		t.Errorf("Version = %q, want v1.2.3", got)
	}
}
