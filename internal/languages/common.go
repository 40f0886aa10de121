package languages

import (
	"strings"

	"gocda/internal/model"
)

// normalizeLine 去掉行尾的 \n 或 \r\n。
func normalizeLine(line string) string {
	return strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
}

// applyLineClassification 把一行的 FSM 结论计入统计。
//
// 约束说明：
// - 每次调用对应一整行，Total 固定 +1
// - code 与 comment 可以同时成立，分别累计
// - 两者都不成立的行计为 blank（包括只有空白字符的行）
// - NonBlank 只看原始文本，与 FSM 状态无关（块注释内的非空行同样计入）
func applyLineClassification(metrics *model.LineMetrics, line string, hasCode bool, hasComment bool) {
	metrics.Total++
	if strings.TrimSpace(line) != "" {
		metrics.NonBlank++
	}

	switch {
	case hasCode && hasComment:
		metrics.Code++
		metrics.Comment++
	case hasCode:
		metrics.Code++
	case hasComment:
		metrics.Comment++
	default:
		metrics.Blank++
	}
}
