package cpd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"gocda/internal/model"
	"gocda/internal/scanner"
)

// ErrReportUnreadable 表示报告文件无法打开或读取。
var ErrReportUnreadable = errors.New("cpd report unreadable")

// ErrInvalidConfig 表示源目录或目标目录无法用于分类。
var ErrInvalidConfig = errors.New("invalid parser config")

// Config 是解析器的分类配置。
type Config struct {
	// SourceDir 是源目录，位置行路径包含该值即视为源文件。
	SourceDir string
	// DestinationDir 是目标目录，只使用最后一级目录名做路径段比较。
	DestinationDir string
}

// Parser 把报告行流还原为 DuplicationGroup 序列。
type Parser struct {
	sourceID           string
	destinationSegment string
	counter            scanner.LineCounter
	logger             *slog.Logger
}

// NewParser 创建解析器。counter 用于查询位置行文件的总行数。
func NewParser(cfg Config, counter scanner.LineCounter, logger *slog.Logger) (*Parser, error) {
	sourceID := cleanSlashPath(cfg.SourceDir)
	if sourceID == "" || sourceID == "." {
		return nil, fmt.Errorf("%w: source directory is empty", ErrInvalidConfig)
	}

	destinationSegment := path.Base(cleanSlashPath(cfg.DestinationDir))
	if destinationSegment == "" || destinationSegment == "." || destinationSegment == "/" {
		return nil, fmt.Errorf("%w: destination directory %q has no final segment", ErrInvalidConfig, cfg.DestinationDir)
	}

	if counter == nil {
		return nil, fmt.Errorf("%w: line counter is nil", ErrInvalidConfig)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Parser{
		sourceID:           sourceID,
		destinationSegment: destinationSegment,
		counter:            counter,
		logger:             logger,
	}, nil
}

func cleanSlashPath(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	return filepath.ToSlash(filepath.Clean(value))
}

// ParseFile 返回报告文件中的分组序列。
// 每次迭代都会重新打开文件，因此序列可以从头重复遍历。
// 文件无法打开时序列只产出一个 ErrReportUnreadable。
func (p *Parser) ParseFile(reportPath string) iter.Seq2[model.DuplicationGroup, error] {
	return func(yield func(model.DuplicationGroup, error) bool) {
		file, err := os.Open(reportPath)
		if err != nil {
			yield(model.DuplicationGroup{}, fmt.Errorf("%w: %w", ErrReportUnreadable, err))
			return
		}
		defer file.Close()

		for group, parseErr := range p.Parse(file) {
			if !yield(group, parseErr) {
				return
			}
		}
	}
}

// Parse 单次遍历 reader，按报告顺序产出已完成且带源文件的分组。
//
// 约束说明：
// - 无法解码（非 UTF-8）的行被跳过，解析继续
// - 读取失败时产出一个错误并结束
// - 输入结束时仍未关闭的分组按遇到空行处理
func (p *Parser) Parse(reader io.Reader) iter.Seq2[model.DuplicationGroup, error] {
	return func(yield func(model.DuplicationGroup, error) bool) {
		machine := &groupMachine{parser: p}
		bufferedReader := bufio.NewReader(reader)
		lineNumber := 0

		for {
			line, err := bufferedReader.ReadString('\n')
			if errors.Is(err, io.EOF) && len(line) == 0 {
				break
			}
			if err != nil && !errors.Is(err, io.EOF) {
				yield(model.DuplicationGroup{}, fmt.Errorf("%w: line %d: %w", ErrReportUnreadable, lineNumber+1, err))
				return
			}
			lineNumber++

			text := strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
			if !utf8.ValidString(text) {
				p.logger.Debug("skip undecodable report line", "line", lineNumber)
			} else if group, done := machine.feed(text); done {
				if !yield(group, nil) {
					return
				}
			}

			if errors.Is(err, io.EOF) {
				break
			}
		}

		if group, done := machine.finish(); done {
			yield(group, nil)
		}
	}
}

// groupState 是解析状态机的状态。
type groupState int

const (
	stateIdle groupState = iota
	stateInGroup
)

// groupMachine 保存一次解析中跨行延续的状态。
type groupMachine struct {
	parser *Parser
	state  groupState
	group  model.DuplicationGroup
}

// feed 处理一行文本，done 为 true 时返回一个已完成的分组。
func (m *groupMachine) feed(line string) (model.DuplicationGroup, bool) {
	if declared, ok := MatchGroupHeader(line); ok {
		if m.state == stateIdle {
			m.group = model.DuplicationGroup{DeclaredLines: declared}
			m.state = stateInGroup
			return model.DuplicationGroup{}, false
		}
		// 分组内再次出现头部只更新声明行数。
		m.group.DeclaredLines = declared
		return model.DuplicationGroup{}, false
	}

	// 空闲状态下的行是代码片段或分隔符，直接忽略。
	if m.state == stateIdle {
		return model.DuplicationGroup{}, false
	}

	if line == "" {
		return m.finish()
	}

	if location, ok := MatchFileLocation(line); ok {
		m.parser.classify(&m.group, location)
	}
	return model.DuplicationGroup{}, false
}

// finish 关闭当前分组并回到空闲状态，只有带源文件的分组会被返回。
func (m *groupMachine) finish() (model.DuplicationGroup, bool) {
	if m.state != stateInGroup {
		return model.DuplicationGroup{}, false
	}

	group := m.group
	m.group = model.DuplicationGroup{}
	m.state = stateIdle

	if !group.HasSource() {
		m.parser.logger.Debug("drop group without source", "declared_lines", group.DeclaredLines)
		return model.DuplicationGroup{}, false
	}
	return group, true
}

// classify 把一次出现归入源文件、目标文件或清空目标列表。
func (p *Parser) classify(group *model.DuplicationGroup, location Location) {
	if location.Path == "" {
		p.logger.Warn("location without usable path, clearing destinations", "start_line", location.StartLine)
		group.ClearDestinations()
		return
	}

	info := model.FileLineInfo{
		Path:  location.Path,
		Lines: p.counter.Lines(location.Path),
	}

	switch {
	case p.isSource(location.Path) && !group.HasSource():
		group.Source = info
	case p.isDestination(location.Path):
		group.AddDestination(info)
	default:
		p.logger.Debug("occurrence outside source and destination, clearing destinations", "path", location.Path)
		group.ClearDestinations()
	}
}

// isSource 判断路径是否包含源目录标识。
func (p *Parser) isSource(filePath string) bool {
	return strings.Contains(filePath, p.sourceID)
}

// isDestination 判断路径的某一级目录名是否等于目标目录名。
// 最后一段是文件名，不参与比较。
func (p *Parser) isDestination(filePath string) bool {
	segments := strings.Split(filePath, "/")
	for _, segment := range segments[:len(segments)-1] {
		if segment == p.destinationSegment {
			return true
		}
	}
	return false
}
