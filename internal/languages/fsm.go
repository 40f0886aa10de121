package languages

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"gocda/internal/model"
)

// Language 是按 Syntax 驱动的通用 FSM 分析器。
// 每次 Analyze 都会创建独立的引擎，Language 本身不保存扫描状态，可被重复使用。
type Language struct {
	name       string
	cpdName    string
	aliases    []string
	extensions []string
	syntax     Syntax
}

// Name 返回语言名称。
func (l *Language) Name() string {
	return l.name
}

// CPDName 返回检测器使用的语言标识。
func (l *Language) CPDName() string {
	return l.cpdName
}

// Extensions 返回该语言的文件后缀。
func (l *Language) Extensions() []string {
	return l.extensions
}

// Analyze 使用该语言的 FSM 对输入流逐行扫描。
func (l *Language) Analyze(reader io.Reader) (model.LineMetrics, error) {
	engine := newFSMEngine(&l.syntax)
	return engine.analyze(reader)
}

// fsmEngine 维护一次扫描过程中跨行延续的状态。
// blockIndex/quoteIndex 为 -1 表示不在块注释/字符串中。
type fsmEngine struct {
	syntax     *Syntax
	blockIndex int
	blockDepth int
	quoteIndex int
}

func newFSMEngine(syntax *Syntax) *fsmEngine {
	return &fsmEngine{
		syntax:     syntax,
		blockIndex: -1,
		quoteIndex: -1,
	}
}

// analyze 采用流式读取逐行解析，避免一次性加载大文件。
func (e *fsmEngine) analyze(reader io.Reader) (model.LineMetrics, error) {
	var metrics model.LineMetrics

	bufferedReader := bufio.NewReader(reader)
	for {
		line, err := bufferedReader.ReadString('\n')
		// EOF 且没有任何剩余字符时，说明已经没有可处理行，直接退出。
		if errors.Is(err, io.EOF) && len(line) == 0 {
			break
		}
		// 非 EOF 错误需要立即返回，避免输出不完整统计结果。
		if err != nil && !errors.Is(err, io.EOF) {
			return metrics, err
		}

		currentLine := normalizeLine(line)
		hasCode, hasComment := e.processLine(currentLine)
		applyLineClassification(&metrics, currentLine, hasCode, hasComment)

		// EOF 但 line 非空代表“最后一行没有换行符”，这行已经处理完，随后退出。
		if errors.Is(err, io.EOF) {
			break
		}
	}

	return metrics, nil
}

// processLine 扫描单行并更新 FSM 状态，返回该行是否包含 code/comment。
func (e *fsmEngine) processLine(line string) (bool, bool) {
	hasCode := false
	hasComment := false

	// 先根据“跨行状态”做初始赋值：
	// - 如果上一个行尾还处于块注释中，本行天然包含 comment；
	// - 如果上一个行尾还在字符串中，本行天然包含 code。
	if e.blockIndex >= 0 {
		hasComment = true
	}
	if e.quoteIndex >= 0 {
		hasCode = true
	}

	// 行首锚定的块注释按整行处理，优先级高于其他词法结构。
	if anchored, done := e.processAnchoredBlock(line); done {
		return false, anchored
	}

	for idx := 0; idx < len(line); {
		rest := line[idx:]

		if e.blockIndex >= 0 {
			hasComment = true
			block := e.syntax.BlockComments[e.blockIndex]
			if block.Nested && strings.HasPrefix(rest, block.Open) {
				e.blockDepth++
				idx += len(block.Open)
				continue
			}
			if strings.HasPrefix(rest, block.Close) {
				e.blockDepth--
				if e.blockDepth <= 0 {
					e.blockIndex = -1
					e.blockDepth = 0
				}
				idx += len(block.Close)
				continue
			}
			idx++
			continue
		}

		if e.quoteIndex >= 0 {
			hasCode = true
			quote := e.syntax.Quotes[e.quoteIndex]
			// 反斜杠吞掉下一个字符，避免误把 \" 当结束引号。
			if quote.Escape && rest[0] == '\\' && len(rest) > 1 {
				idx += 2
				continue
			}
			if strings.HasPrefix(rest, quote.Delimiter) {
				e.quoteIndex = -1
				idx += len(quote.Delimiter)
				continue
			}
			idx++
			continue
		}

		current, size := utf8.DecodeRuneInString(rest)
		if unicode.IsSpace(current) {
			// 空白字符不决定 code/comment，仅推进游标。
			idx += size
			continue
		}

		// 行注释：剩余部分都属于注释。
		for _, marker := range e.syntax.LineComments {
			if strings.HasPrefix(rest, marker) {
				return hasCode, true
			}
		}

		if opened := e.openBlock(rest); opened > 0 {
			hasComment = true
			idx += opened
			continue
		}

		if opened := e.openQuote(rest); opened > 0 {
			hasCode = true
			idx += opened
			continue
		}

		hasCode = true
		idx += size
	}

	return hasCode, hasComment
}

// processAnchoredBlock 处理行首锚定的块注释。
// done 为 true 时表示整行已经按注释处理完毕。
func (e *fsmEngine) processAnchoredBlock(line string) (comment bool, done bool) {
	if e.blockIndex >= 0 {
		block := e.syntax.BlockComments[e.blockIndex]
		if !block.LineAnchored {
			return false, false
		}
		if strings.HasPrefix(line, block.Close) {
			e.blockIndex = -1
			e.blockDepth = 0
		}
		return true, true
	}

	if e.quoteIndex >= 0 {
		return false, false
	}

	for i, block := range e.syntax.BlockComments {
		if block.LineAnchored && strings.HasPrefix(line, block.Open) {
			e.blockIndex = i
			e.blockDepth = 1
			return true, true
		}
	}
	return false, false
}

// openBlock 尝试在当前位置进入块注释，返回消耗的字节数。
func (e *fsmEngine) openBlock(rest string) int {
	for i, block := range e.syntax.BlockComments {
		if block.LineAnchored {
			continue
		}
		if strings.HasPrefix(rest, block.Open) {
			e.blockIndex = i
			e.blockDepth = 1
			return len(block.Open)
		}
	}
	return 0
}

// openQuote 尝试在当前位置进入字符串，返回消耗的字节数。
func (e *fsmEngine) openQuote(rest string) int {
	for i, quote := range e.syntax.Quotes {
		if strings.HasPrefix(rest, quote.Delimiter) {
			e.quoteIndex = i
			return len(quote.Delimiter)
		}
	}
	return 0
}
