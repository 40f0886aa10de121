package duplication

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gocda/internal/languages"
	"gocda/internal/logging"
	"gocda/internal/model"
	"gocda/internal/scanner"
)

// fixture 是一棵带 src/ 与 dest/ 的临时项目目录。
type fixture struct {
	root string
	src  string
	dest string
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	root := t.TempDir()
	f := fixture{root: root, src: filepath.Join(root, "src"), dest: filepath.Join(root, "dest")}
	require.NoError(t, os.MkdirAll(f.src, 0o755))
	require.NoError(t, os.MkdirAll(f.dest, 0o755))
	return f
}

// writeSwift 写入一个含 lines 行代码（中间夹空行）的 Swift 文件并返回路径。
func writeSwift(t *testing.T, dir string, name string, lines int) string {
	t.Helper()

	var builder strings.Builder
	for i := 0; i < lines; i++ {
		fmt.Fprintf(&builder, "let v%d = %d\n\n", i, i)
	}

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(builder.String()), 0o644))
	return path
}

func writeReport(t *testing.T, root string, parts ...string) string {
	t.Helper()

	path := filepath.Join(root, "report.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(parts, "\n")+"\n"), 0o644))
	return path
}

func newTestAnalyzer(t *testing.T, f fixture) *Analyzer {
	t.Helper()

	registry := languages.NewRegistry()
	files, err := scanner.NewService(registry, nil, logging.Discard())
	require.NoError(t, err)

	analyzer, err := NewAnalyzer(Config{
		Root:           f.root,
		SourceDir:      f.src,
		DestinationDir: f.dest,
		Language:       "swift",
	}, scanner.NewCachingCounter(registry, scanner.CountNonBlank, logging.Discard()), files, logging.Discard())
	require.NoError(t, err)
	return analyzer
}

func TestAnalyzeSingleGroup(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	a := writeSwift(t, f.src, "A.swift", 40)
	b := writeSwift(t, f.dest, "B.swift", 60)
	report := writeReport(t, f.root,
		"Found a 12 line (50 tokens) duplication in the following files:",
		"Starting at line 3 of "+a,
		"Starting at line 3 of "+b,
		"",
	)

	result, err := newTestAnalyzer(t, f).AnalyzeReport(report)
	require.NoError(t, err)

	require.Len(t, result.Records, 1)
	record := result.Records[0]
	assert.Equal(t, model.FileLineInfo{Path: a, Lines: 40}, record.Source)
	assert.Equal(t, model.FileLineInfo{Path: b, Lines: 60}, record.PrimaryDestination)
	assert.Equal(t, int64(12), record.DuplicatedLines)
	assert.InDelta(t, 0.30, record.SelfRate(), 1e-9)
	assert.InDelta(t, 0.20, record.DestinationRate(), 1e-9)

	assert.Equal(t, int64(1), result.SourceFiles)
	assert.Equal(t, int64(1), result.DestinationFiles)
	assert.InDelta(t, 0.20, result.TotalDestinationRate, 1e-9)
	assert.InDelta(t, 0.30, result.TotalSelfRate, 1e-9)
}

func TestAnalyzeSharedSourceFile(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	a := writeSwift(t, f.src, "A.swift", 100)
	b := writeSwift(t, f.dest, "B.swift", 50)
	d := writeSwift(t, f.dest, "D.swift", 80)
	writeSwift(t, f.src, "Unrelated.swift", 10)
	report := writeReport(t, f.root,
		"Found a 10 line duplication",
		"Starting at line 1 of "+a,
		"Starting at line 1 of "+b,
		"",
		"Found a 15 line duplication",
		"Starting at line 40 of "+a,
		"Starting at line 2 of "+d,
		"",
	)

	result, err := newTestAnalyzer(t, f).AnalyzeReport(report)
	require.NoError(t, err)

	require.Len(t, result.Records, 1)
	assert.Equal(t, int64(25), result.Records[0].DuplicatedLines)
	assert.Equal(t, b, result.Records[0].PrimaryDestination.Path)
	assert.Equal(t, int64(2), result.SourceFiles)
	assert.Equal(t, int64(2), result.DestinationFiles)
	assert.InDelta(t, 0.25/2, result.TotalSelfRate, 1e-9)
	assert.InDelta(t, 0.5/2, result.TotalDestinationRate, 1e-9)
}

func TestAnalyzeDiscardsGroupTouchingUnrelatedFiles(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	other := filepath.Join(f.root, "other")
	require.NoError(t, os.MkdirAll(other, 0o755))

	a := writeSwift(t, f.src, "A.swift", 40)
	b := writeSwift(t, f.dest, "B.swift", 60)
	e := writeSwift(t, other, "E.swift", 20)
	report := writeReport(t, f.root,
		"Found a 12 line duplication",
		"Starting at line 3 of "+a,
		"Starting at line 3 of "+b,
		"Starting at line 9 of "+e,
		"",
	)

	result, err := newTestAnalyzer(t, f).AnalyzeReport(report)
	require.NoError(t, err)

	assert.Empty(t, result.Records)
	assert.Zero(t, result.TotalSelfRate)
	assert.Zero(t, result.TotalDestinationRate)
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	var parts []string
	for i := 0; i < 20; i++ {
		src := writeSwift(t, f.src, fmt.Sprintf("S%02d.swift", i), 30+i)
		dst := writeSwift(t, f.dest, fmt.Sprintf("D%02d.swift", i%5), 40)
		parts = append(parts,
			fmt.Sprintf("Found a %d line duplication", i+1),
			"Starting at line 1 of "+src,
			"Starting at line 1 of "+dst,
			"",
		)
	}
	report := writeReport(t, f.root, parts...)
	analyzer := newTestAnalyzer(t, f)

	first, err := analyzer.AnalyzeReport(report)
	require.NoError(t, err)
	second, err := analyzer.AnalyzeReport(report)
	require.NoError(t, err)

	assert.Len(t, first.Records, 20)
	assert.Equal(t, first, second)
}

func TestAnalyzeMissingReport(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	_, err := newTestAnalyzer(t, f).AnalyzeReport(filepath.Join(f.root, "missing.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cpd report unreadable")
}

func TestAnalyzeMissingDestinationDirectory(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	require.NoError(t, os.RemoveAll(f.dest))
	report := writeReport(t, f.root, "")

	_, err := newTestAnalyzer(t, f).AnalyzeReport(report)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "count destination files")
}
