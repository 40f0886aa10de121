package scanner

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gocda/internal/languages"
	"gocda/internal/logging"
)

// writeFixtureFile 是测试辅助函数，用于在临时目录快速落地测试文件。
func writeFixtureFile(t testing.TB, path string, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir fixture dir failed: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture file failed: %v", err)
	}
}

// newTestService 创建不带排除规则的扫描服务。
func newTestService(t testing.TB, excludes ...string) *Service {
	t.Helper()

	service, err := NewService(languages.NewRegistry(), excludes, logging.Discard())
	if err != nil {
		t.Fatalf("create service failed: %v", err)
	}
	return service
}

// TestScanSingleFile 验证 scan 支持“直接传单文件路径”。
func TestScanSingleFile(t *testing.T) {
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "single.go")

	writeFixtureFile(t, filePath, strings.Join([]string{
		"package main",
		"// top comment",
		"func main() { x := 1 // inline }",
	}, "\n"))

	result, err := newTestService(t).ScanPath(filePath, "")
	if err != nil {
		t.Fatalf("scan single file failed: %v", err)
	}

	if len(result.Files) != 1 {
		t.Fatalf("expected 1 scanned file, got %d", len(result.Files))
	}
	if result.Total.Files != 1 {
		t.Fatalf("expected total.files=1, got %d", result.Total.Files)
	}
	if result.Total.Total != 3 || result.Total.Code != 2 || result.Total.Comment != 2 || result.Total.Blank != 0 {
		t.Fatalf("unexpected total metrics: %+v", result.Total)
	}

	fileMetrics := result.Files[0]
	if fileMetrics.Path != "single.go" {
		t.Fatalf("expected display path single.go, got %s", fileMetrics.Path)
	}
	if fileMetrics.Language != "Go" {
		t.Fatalf("expected language Go, got %s", fileMetrics.Language)
	}
}

// TestScanDirectoryTotalFiles 验证目录扫描时 total.files 与文件数一致。
func TestScanDirectoryTotalFiles(t *testing.T) {
	tempDir := t.TempDir()

	writeFixtureFile(t, filepath.Join(tempDir, "main.swift"), strings.Join([]string{
		"import Foundation",
		"print(1)",
	}, "\n"))
	writeFixtureFile(t, filepath.Join(tempDir, "web", "app.js"), strings.Join([]string{
		"const x = 1; // js comment",
	}, "\n"))
	writeFixtureFile(t, filepath.Join(tempDir, "README.txt"), "not a source file")

	result, err := newTestService(t).ScanPath(tempDir, "")
	if err != nil {
		t.Fatalf("scan directory failed: %v", err)
	}

	if len(result.Files) != 2 {
		t.Fatalf("expected 2 scanned files, got %d", len(result.Files))
	}
	if result.Total.Files != 2 {
		t.Fatalf("expected total.files=2, got %d", result.Total.Files)
	}
	if len(result.Languages) != 2 {
		t.Fatalf("expected 2 language summaries, got %d", len(result.Languages))
	}
}

// TestScanDepthFirstOrder 验证文件按深度优先、目录内字典序排列。
func TestScanDepthFirstOrder(t *testing.T) {
	tempDir := t.TempDir()

	writeFixtureFile(t, filepath.Join(tempDir, "b.swift"), "b()")
	writeFixtureFile(t, filepath.Join(tempDir, "a", "z.swift"), "z()")
	writeFixtureFile(t, filepath.Join(tempDir, "a", "c", "y.swift"), "y()")
	writeFixtureFile(t, filepath.Join(tempDir, "c.swift"), "c()")

	result, err := newTestService(t).ScanPath(tempDir, "swift")
	if err != nil {
		t.Fatalf("scan directory failed: %v", err)
	}

	want := []string{"a/c/y.swift", "a/z.swift", "b.swift", "c.swift"}
	if len(result.Files) != len(want) {
		t.Fatalf("expected %d files, got %d", len(want), len(result.Files))
	}
	for i, path := range want {
		if result.Files[i].Path != path {
			t.Fatalf("file %d: expected %s, got %s", i, path, result.Files[i].Path)
		}
	}
}

// TestScanLanguageFilterAndExcludes 验证语言过滤与 doublestar 排除规则。
func TestScanLanguageFilterAndExcludes(t *testing.T) {
	tempDir := t.TempDir()

	writeFixtureFile(t, filepath.Join(tempDir, "App", "View.swift"), "let v = 1")
	writeFixtureFile(t, filepath.Join(tempDir, "Pods", "Lib", "Lib.swift"), "let l = 1")
	writeFixtureFile(t, filepath.Join(tempDir, "App", "Model.kt"), "val m = 1")

	service := newTestService(t, "Pods/**")

	count, err := service.CountFiles(tempDir, "swift")
	if err != nil {
		t.Fatalf("count files failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 swift file, got %d", count)
	}

	count, err = service.CountFiles(tempDir, "")
	if err != nil {
		t.Fatalf("count files failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 files without filter, got %d", count)
	}
}

// TestScanUnknownLanguage 验证未知语言过滤条件会返回错误。
func TestScanUnknownLanguage(t *testing.T) {
	_, err := newTestService(t).CountFiles(t.TempDir(), "cobol")
	if !errors.Is(err, ErrUnknownLanguage) {
		t.Fatalf("expected ErrUnknownLanguage, got %v", err)
	}
}

// TestInvalidExcludePattern 验证非法排除模式在创建服务时即被拒绝。
func TestInvalidExcludePattern(t *testing.T) {
	if _, err := NewService(languages.NewRegistry(), []string{"[unclosed"}, nil); err == nil {
		t.Fatalf("expected invalid pattern error, got nil")
	}
}

// TestScanUnsupportedSingleFile 验证单文件模式下不支持后缀会返回错误。
func TestScanUnsupportedSingleFile(t *testing.T) {
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "demo.txt")
	writeFixtureFile(t, filePath, "plain text")

	_, err := newTestService(t).ScanPath(filePath, "")
	if err == nil {
		t.Fatalf("expected unsupported extension error, got nil")
	}
	if !strings.Contains(err.Error(), "unsupported file extension") {
		t.Fatalf("unexpected error: %v", err)
	}
}
