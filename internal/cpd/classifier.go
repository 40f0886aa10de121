// Package cpd 解析 PMD CPD 文本报告。
// 报告按行组织：分组头部、若干位置行、空行结束分组，之后是重复的代码片段。
package cpd

import (
	"regexp"
	"strconv"
)

var (
	groupHeaderPattern  = regexp.MustCompile(`^Found a ([1-9]\d*) line`)
	fileLocationPattern = regexp.MustCompile(`Starting at line ([1-9]\d*)(?: column [1-9]\d*)? of (/.+)?`)
)

// Location 是位置行中的起始行号与文件路径。
// Path 可能为空，表示位置行存在但路径不可用。
type Location struct {
	StartLine int64
	Path      string
}

// MatchGroupHeader 识别 "Found a N line ..." 分组头部，返回声明的重复行数。
// 0、前导 0 与非数字都不匹配。
func MatchGroupHeader(line string) (int64, bool) {
	match := groupHeaderPattern.FindStringSubmatch(line)
	if match == nil {
		return 0, false
	}

	lines, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return lines, true
}

// MatchFileLocation 识别 "Starting at line L of /path" 位置行。
// PMD 7 会在行号后追加 "column C"，同样接受。
// 路径捕获可以为空，此时仍然返回匹配成功。
func MatchFileLocation(line string) (Location, bool) {
	match := fileLocationPattern.FindStringSubmatch(line)
	if match == nil {
		return Location{}, false
	}

	start, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		return Location{}, false
	}
	return Location{StartLine: start, Path: match[2]}, true
}
