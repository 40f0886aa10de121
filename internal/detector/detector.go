// Package detector 负责调用外部的 PMD CPD 重复代码检测器。
// 检测器本身是黑盒：退出码 0 表示没有重复，4 表示发现重复且 stdout 为报告文本，其他退出码都视为失败。
package detector

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gofrs/flock"
)

const (
	// ExitNoDuplicates 是检测器未发现重复时的退出码。
	ExitNoDuplicates = 0
	// ExitDuplicatesFound 是检测器发现重复时的退出码。
	ExitDuplicatesFound = 4

	// DefaultBinary 是检测器可执行文件名。
	DefaultBinary = "pmd"
	// DefaultReportName 是报告在根目录下的文件名。
	DefaultReportName = "report.txt"
	// DefaultMinimumTokens 是默认的最小重复 token 数。
	DefaultMinimumTokens = 50

	installGuide = "https://docs.pmd-code.org/latest/pmd_userdocs_installation.html"
	// lockPrefix 是运行期间持有的锁文件名前缀，锁文件放在系统临时目录，不写入根目录。
	lockPrefix = "gocda-"
)

// DefaultInstallCommand 是检测器缺失时尝试执行的安装命令。
var DefaultInstallCommand = []string{"brew", "install", "pmd"}

var (
	// ErrToolUnavailable 表示检测器不存在且自动安装失败。
	ErrToolUnavailable = errors.New("clone detector unavailable")
	// ErrExecution 表示检测器以非预期退出码结束。
	ErrExecution = errors.New("clone detector exited with an exception")
	// ErrBusy 表示另一个进程正在同一根目录下运行检测。
	ErrBusy = errors.New("another analysis is running in this root")
)

// 以下变量便于测试替换外部进程。
var (
	commandContext = exec.CommandContext
	lookPath       = exec.LookPath
)

// Runner 描述如何定位、安装和执行检测器。
type Runner struct {
	Binary         string
	InstallCommand []string
	AutoInstall    bool
	Logger         *slog.Logger
}

// Request 是一次检测的参数。
type Request struct {
	Root          string
	Language      string
	MinimumTokens int
	// ReportName 为空时使用 DefaultReportName。
	ReportName string
}

// Outcome 是一次检测的结果。
// Duplicates 为 false 时 ReportPath 为空。
type Outcome struct {
	Duplicates bool
	ReportPath string
}

func (r *Runner) binary() string {
	if strings.TrimSpace(r.Binary) == "" {
		return DefaultBinary
	}
	return r.Binary
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

// Ensure 确认检测器可用，必要时尝试自动安装一次。
func (r *Runner) Ensure(ctx context.Context) error {
	binary := r.binary()
	if _, err := lookPath(binary); err == nil {
		return nil
	}

	unavailable := fmt.Errorf("%w: %q not found, please install it manually, see %s", ErrToolUnavailable, binary, installGuide)
	if !r.AutoInstall || len(r.InstallCommand) == 0 {
		return unavailable
	}

	r.logger().Info("installing clone detector", "command", strings.Join(r.InstallCommand, " "))

	cmd := commandContext(ctx, r.InstallCommand[0], r.InstallCommand[1:]...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		r.logger().Debug("install output", "output", string(output))
		return fmt.Errorf("%w (install failed: %v)", unavailable, err)
	}

	if _, err := lookPath(binary); err != nil {
		return unavailable
	}
	return nil
}

// Run 执行检测器。发现重复时把 stdout 写入根目录下的报告文件。
func (r *Runner) Run(ctx context.Context, req Request) (Outcome, error) {
	if strings.TrimSpace(req.Root) == "" {
		return Outcome{}, errors.New("root directory is empty")
	}
	if req.MinimumTokens <= 0 {
		req.MinimumTokens = DefaultMinimumTokens
	}
	reportName := req.ReportName
	if reportName == "" {
		reportName = DefaultReportName
	}

	lock := flock.New(lockPath(req.Root))
	locked, err := lock.TryLock()
	if err != nil {
		return Outcome{}, fmt.Errorf("lock root: %w", err)
	}
	if !locked {
		return Outcome{}, fmt.Errorf("%w: %s", ErrBusy, req.Root)
	}
	defer func() { _ = lock.Unlock() }()

	args := []string{
		"cpd",
		"--minimum-tokens", strconv.Itoa(req.MinimumTokens),
		"-d", req.Root,
		"--language", req.Language,
	}
	r.logger().Debug("running clone detector", "binary", r.binary(), "args", args)

	var stdout, stderr bytes.Buffer
	cmd := commandContext(ctx, r.binary(), args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	code, err := exitCode(cmd.Run())
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: %w", ErrExecution, err)
	}

	switch code {
	case ExitNoDuplicates:
		return Outcome{}, nil
	case ExitDuplicatesFound:
		reportPath := filepath.Join(req.Root, reportName)
		if err := os.WriteFile(reportPath, stdout.Bytes(), 0o644); err != nil {
			return Outcome{}, fmt.Errorf("write report: %w", err)
		}
		r.logger().Info("clone report written",
			"path", reportPath,
			"size", humanize.Bytes(uint64(stdout.Len())),
		)
		return Outcome{Duplicates: true, ReportPath: reportPath}, nil
	default:
		return Outcome{}, fmt.Errorf("%w: exit status %d: %s", ErrExecution, code, strings.TrimSpace(stderr.String()))
	}
}

// exitCode 从 Run 的返回值中取出退出码。
// 进程无法启动等非退出码错误原样返回。
func exitCode(err error) (int, error) {
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, err
}

// lockPath 返回根目录对应的锁文件路径，同一根目录的两次运行得到同一个路径。
func lockPath(root string) string {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	sum := sha256.Sum256([]byte(filepath.Clean(root)))
	return filepath.Join(os.TempDir(), lockPrefix+hex.EncodeToString(sum[:8])+".lock")
}
