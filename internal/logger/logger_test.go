package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestResolveLogFilePathUsesWorkdirLogs(t *testing.T) {
	tmpDir := t.TempDir()
	oldWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("get wd failed: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(oldWD)
	})
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}

	got, err := resolveLogFilePath(Options{})
	if err != nil {
		t.Fatalf("resolve log path failed: %v", err)
	}
	realTmp, err := filepath.EvalSymlinks(tmpDir)
	if err != nil {
		t.Fatalf("eval tmp dir failed: %v", err)
	}
	realDir, err := filepath.EvalSymlinks(filepath.Dir(got))
	if err != nil {
		t.Fatalf("eval log dir failed: %v", err)
	}
	if realDir != filepath.Join(realTmp, defaultLogDirName) {
		t.Fatalf("unexpected log dir: %s", realDir)
	}
	if filepath.Base(got) != defaultLogFilename {
		t.Fatalf("unexpected log filename: %s", filepath.Base(got))
	}
}

func TestReleaseModeWritesJSONFile(t *testing.T) {
	tmpDir := t.TempDir()
	log := New("release", Options{Dir: tmpDir, Filename: "ledger.log"})
	log.Info("transition_committed")
	_ = log.Sync()

	content, err := os.ReadFile(filepath.Join(tmpDir, "ledger.log"))
	if err != nil {
		t.Fatalf("read log file failed: %v", err)
	}
	if !strings.Contains(string(content), `"message":"transition_committed"`) {
		t.Fatalf("expected json line, got=%s", string(content))
	}
}

func TestDebugModeSkipsFile(t *testing.T) {
	tmpDir := t.TempDir()
	log := New(" DEBUG ", Options{Dir: tmpDir, Filename: "debug.log"})
	log.Info("debug_line")
	_ = log.Sync()

	if _, err := os.Stat(filepath.Join(tmpDir, "debug.log")); !os.IsNotExist(err) {
		t.Fatalf("debug mode should not create a log file")
	}
}

func TestZFallsBackBeforeInit(t *testing.T) {
	saved := L
	L = nil
	t.Cleanup(func() { L = saved })

	if Z() == nil {
		t.Fatalf("expected fallback logger")
	}
	if SW("purchase_id", 1) == nil {
		t.Fatalf("expected sugared logger with fields")
	}
}
