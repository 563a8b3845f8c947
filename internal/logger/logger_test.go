package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestResolveLogFilePathCreatesDefaultDir(t *testing.T) {
	tmpDir := t.TempDir()
	oldWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("get wd failed: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(oldWD) })
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}

	got, err := resolveLogFilePath(Options{})
	if err != nil {
		t.Fatalf("resolve default path failed: %v", err)
	}
	if filepath.Base(got) != defaultLogFilename {
		t.Fatalf("filename want %s got %s", defaultLogFilename, filepath.Base(got))
	}
	if filepath.Base(filepath.Dir(got)) != defaultLogDirName {
		t.Fatalf("dir want %s got %s", defaultLogDirName, filepath.Dir(got))
	}
	if _, err := os.Stat(filepath.Dir(got)); err != nil {
		t.Fatalf("log dir should exist: %v", err)
	}
}

func TestResolveLogFilePathHonorsConfiguredDir(t *testing.T) {
	tmpDir := t.TempDir()

	got, err := resolveLogFilePath(Options{Dir: tmpDir, Filename: "mall.log"})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if got != filepath.Join(tmpDir, "mall.log") {
		t.Fatalf("path want %s got %s", filepath.Join(tmpDir, "mall.log"), got)
	}
}

func TestReleaseModeWritesFile(t *testing.T) {
	tmpDir := t.TempDir()
	log := New("release", Options{Dir: tmpDir, Filename: "api.log"})
	log.Info("order_confirmed", zap.String("order_no", "ORD20260901120000000001"))
	_ = log.Sync()

	content, err := os.ReadFile(filepath.Join(tmpDir, "api.log"))
	if err != nil {
		t.Fatalf("read log file failed: %v", err)
	}
	if !strings.Contains(string(content), "order_confirmed") {
		t.Fatalf("log file should contain the event, got %s", content)
	}
	if !strings.Contains(string(content), "ORD20260901120000000001") {
		t.Fatalf("log file should contain the field value, got %s", content)
	}
}

func TestDebugModeStaysOnStdout(t *testing.T) {
	tmpDir := t.TempDir()
	log := New("debug", Options{Dir: tmpDir, Filename: "api.log"})
	log.Info("cache_miss", zap.String("key", "fixmore:product:1"))
	_ = log.Sync()

	if _, err := os.Stat(filepath.Join(tmpDir, "api.log")); !os.IsNotExist(err) {
		t.Fatalf("debug mode must not create a log file")
	}
}
