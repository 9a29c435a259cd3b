package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	outputDir := filepath.Join(dir, "music")
	logDir := filepath.Join(dir, "logs")
	cfgPath := filepath.Join(dir, "config.toml")
	content := fmt.Sprintf(`[paths]
output_dir = %q
log_dir = %q

[logging]
format = "json"
level = "error"
`, outputDir, logDir)
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return cfgPath
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	output, err := runCommand(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(output, target) {
		t.Fatalf("output should name the target path:\n%s", output)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatal("sample config not written")
	}
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	if _, err := runCommand(t, "config", "init", "--path", target); err != nil {
		t.Fatal(err)
	}
	if _, err := runCommand(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected error without --overwrite")
	}
	if _, err := runCommand(t, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatal(err)
	}
}

func TestCleanupDryRunListsTargets(t *testing.T) {
	cfgPath := writeTestConfig(t)
	folder := t.TempDir()
	for _, name := range []string{"Artist - Song.opus", "Artist - Song.jpg", "vacation.png"} {
		if err := os.WriteFile(filepath.Join(folder, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	output, err := runCommand(t, "--config", cfgPath, "cleanup", folder, "--dry-run", "--all")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(output, "Artist - Song.jpg") || !strings.Contains(output, "vacation.png") {
		t.Fatalf("dry run should list every target:\n%s", output)
	}
	if _, err := os.Stat(filepath.Join(folder, "vacation.png")); err != nil {
		t.Fatal("dry run must not delete anything")
	}
}

func TestCleanupMatchedDeletesOnlyOverlaps(t *testing.T) {
	cfgPath := writeTestConfig(t)
	folder := t.TempDir()
	for _, name := range []string{"Artist - Song.opus", "Artist - Song.jpg", "vacation.png"} {
		if err := os.WriteFile(filepath.Join(folder, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	if _, err := runCommand(t, "--config", cfgPath, "cleanup", folder, "--matched", "--yes"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(folder, "Artist - Song.jpg")); !os.IsNotExist(err) {
		t.Fatal("matched image should be deleted")
	}
	if _, err := os.Stat(filepath.Join(folder, "vacation.png")); err != nil {
		t.Fatal("unmatched image must survive matched-only cleanup")
	}
	if _, err := os.Stat(filepath.Join(folder, "Artist - Song.opus")); err != nil {
		t.Fatal("audio must never be deleted")
	}
}

func TestCleanupRejectsConflictingModes(t *testing.T) {
	cfgPath := writeTestConfig(t)
	if _, err := runCommand(t, "--config", cfgPath, "cleanup", t.TempDir(), "--all", "--matched"); err == nil {
		t.Fatal("expected error for --all with --matched")
	}
}

func TestEmbedRejectsCoverWithoutFile(t *testing.T) {
	cfgPath := writeTestConfig(t)
	if _, err := runCommand(t, "--config", cfgPath, "embed", t.TempDir(), "--cover", "x.jpg"); err == nil {
		t.Fatal("expected error for --cover without --file")
	}
}

func TestFetchHistoryEmptyArchive(t *testing.T) {
	cfgPath := writeTestConfig(t)
	output, err := runCommand(t, "--config", cfgPath, "fetch", "history")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(output, "No archived downloads") {
		t.Fatalf("unexpected output:\n%s", output)
	}
}

func TestConfigShowRendersTOML(t *testing.T) {
	cfgPath := writeTestConfig(t)
	output, err := runCommand(t, "--config", cfgPath, "config", "show")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"[paths]", "[tools]", "[fetch]"} {
		if !strings.Contains(output, want) {
			t.Fatalf("config show missing %q:\n%s", want, output)
		}
	}
}
