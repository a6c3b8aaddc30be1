package cmd

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/substantialcattle5/mde/internal/report"
	"github.com/substantialcattle5/mde/testutil"
)

func TestScanCommandHelp(t *testing.T) {
	rootCmd.SetArgs([]string{"scan", "--help"})

	output := captureOutput(func() {
		_ = rootCmd.Execute()
	})

	// The parsed help flag persists across Execute calls; reset it so later
	// tests actually run the command.
	_ = scanCmd.Flags().Set("help", "false")

	if !strings.Contains(output, "Scan a directory tree for duplicate media files") {
		t.Errorf("Help output should contain main description. Got: %q", output)
	}
	for _, flag := range []string{"--recursive", "--include-hidden", "--media", "--output", "--workers"} {
		if !strings.Contains(output, flag) {
			t.Errorf("Help output should mention %s flag", flag)
		}
	}
}

// emptyConfig writes a config file with no overrides, so command tests never
// read the developer's real ~/.mde.yaml.
func emptyConfig(t *testing.T, dir string) string {
	t.Helper()
	return testutil.CreateTestFile(t, dir, "test-config.yaml", "")
}

func TestScanCommandWritesSidecar(t *testing.T) {
	dir := testutil.TempDir(t, "scan-cmd-test")
	testutil.CreateTestFile(t, dir, "a.mp4", "identical video bytes")
	testutil.CreateTestFile(t, dir, "b.mp4", "identical video bytes")
	testutil.CreateTestFile(t, dir, "unique.mp4", "different bytes")

	rootCmd.SetArgs([]string{"scan", "--quiet", "--config", emptyConfig(t, dir), dir})
	captureOutput(func() {
		if err := rootCmd.Execute(); err != nil {
			t.Errorf("scan failed: %v", err)
		}
	})

	sidecar := report.SidecarPath(dir)
	testutil.AssertFileExists(t, sidecar)

	rpt, err := report.NewFileStore().Load(sidecar)
	if err != nil {
		t.Fatalf("load sidecar: %v", err)
	}
	if len(rpt.Groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(rpt.Groups))
	}
	if rpt.DuplicateCount() != 1 {
		t.Errorf("DuplicateCount = %d, want 1", rpt.DuplicateCount())
	}
	if rpt.TotalFiles != 3 {
		t.Errorf("TotalFiles = %d, want 3", rpt.TotalFiles)
	}
}

func TestScanCommandEmptyDirectory(t *testing.T) {
	dir := testutil.TempDir(t, "scan-empty-test")

	// Flag values persist across Execute calls, so quiet is pinned off.
	rootCmd.SetArgs([]string{"scan", "--quiet=false", "--config", emptyConfig(t, dir), dir})
	output := captureOutput(func() {
		if err := rootCmd.Execute(); err != nil {
			t.Errorf("scan failed: %v", err)
		}
	})

	if !strings.Contains(output, "No media files found") {
		t.Errorf("output should report an empty scan. Got: %q", output)
	}
	testutil.AssertFileNotExists(t, report.SidecarPath(dir))
}

func TestScanCommandMissingPath(t *testing.T) {
	dir := testutil.TempDir(t, "scan-missing-test")

	rootCmd.SetArgs([]string{"scan", "--quiet", "--config", emptyConfig(t, dir), "/no/such/directory"})
	captureOutput(func() {
		if err := rootCmd.Execute(); err == nil {
			t.Error("expected error for missing scan path")
		}
	})
}

func TestScanCommandMissingConfigFile(t *testing.T) {
	dir := testutil.TempDir(t, "scan-config-test")

	rootCmd.SetArgs([]string{"scan", "--quiet", "--config", filepath.Join(dir, "no-config.yaml"), dir})
	captureOutput(func() {
		if err := rootCmd.Execute(); err == nil {
			t.Error("an explicitly requested config file that is missing should fail the scan")
		}
	})
}

func TestScanCommandBadMediaFilter(t *testing.T) {
	dir := testutil.TempDir(t, "scan-media-test")

	rootCmd.SetArgs([]string{"scan", "--quiet", "--config", emptyConfig(t, dir), "--media", "audio", dir})
	captureOutput(func() {
		if err := rootCmd.Execute(); err == nil {
			t.Error("expected error for unknown media filter")
		}
	})

	// Reset so later tests are not stuck with the bad value.
	rootCmd.SetArgs([]string{"scan", "--media", "all", "--quiet", "--config", emptyConfig(t, dir), dir})
	captureOutput(func() { _ = rootCmd.Execute() })
}

// captureOutput redirects stdout and stderr for the duration of fn.
func captureOutput(fn func()) string {
	oldStdout := os.Stdout
	oldStderr := os.Stderr

	r, w, _ := os.Pipe()
	os.Stdout = w
	os.Stderr = w

	outC := make(chan string)
	go func() {
		var buf strings.Builder
		io.Copy(&buf, r)
		outC <- buf.String()
	}()

	fn()

	w.Close()
	os.Stdout = oldStdout
	os.Stderr = oldStderr
	out := <-outC

	return out
}
