// Package duplication 把解析出的重复分组折叠为按源文件汇总的记录，并计算重复率。
package duplication

import (
	"iter"

	"gocda/internal/model"
)

// Aggregator 按源文件路径折叠 DuplicationGroup。
// 记录保持首次出现的顺序，输出因此是确定的。
type Aggregator struct {
	records []model.AggregatedRecord
	index   map[string]int
}

// NewAggregator 创建空的聚合器。
func NewAggregator() *Aggregator {
	return &Aggregator{index: make(map[string]int)}
}

// Add 折叠一个分组，返回该分组是否被计入。
// 没有源文件或没有目标文件的分组会被忽略。
func (a *Aggregator) Add(group model.DuplicationGroup) bool {
	if !group.HasSource() || len(group.Destinations) == 0 {
		return false
	}

	if position, ok := a.index[group.Source.Path]; ok {
		a.records[position].DuplicatedLines += group.DeclaredLines
		return true
	}

	a.index[group.Source.Path] = len(a.records)
	a.records = append(a.records, model.AggregatedRecord{
		Source:             group.Source,
		PrimaryDestination: group.Destinations[0],
		DuplicatedLines:    group.DeclaredLines,
	})
	return true
}

// Collect 折叠整个分组序列，遇到第一个错误即返回。
func (a *Aggregator) Collect(groups iter.Seq2[model.DuplicationGroup, error]) error {
	for group, err := range groups {
		if err != nil {
			return err
		}
		a.Add(group)
	}
	return nil
}

// Len 返回源文件记录数。
func (a *Aggregator) Len() int {
	return len(a.records)
}

// Records 返回记录副本。
func (a *Aggregator) Records() []model.AggregatedRecord {
	return append([]model.AggregatedRecord(nil), a.records...)
}

// Totals 是整次运行的两个汇总比例。
type Totals struct {
	// DestinationRate 是各记录 DestinationRate 之和除以目标目录文件总数。
	DestinationRate float64
	// SelfRate 是各记录 SelfRate 之和除以源目录文件总数。
	SelfRate float64
}

// Summarize 计算整次运行的汇总比例。
// 没有出现在记录里的文件按 0 计入平均；文件总数为 0 时比例为 0。
func Summarize(records []model.AggregatedRecord, sourceFiles int64, destinationFiles int64) Totals {
	var destinationSum, selfSum float64
	for _, record := range records {
		destinationSum += record.DestinationRate()
		selfSum += record.SelfRate()
	}

	var totals Totals
	if destinationFiles > 0 {
		totals.DestinationRate = destinationSum / float64(destinationFiles)
	}
	if sourceFiles > 0 {
		totals.SelfRate = selfSum / float64(sourceFiles)
	}
	return totals
}
