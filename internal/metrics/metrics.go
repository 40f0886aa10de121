// Package metrics 把一次重复率分析的结果导出为 Prometheus 文本格式，
// 供 node_exporter 的 textfile collector 采集。
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"gocda/internal/model"
)

const namespace = "gocda"

// Exporter 持有一次运行的独立 registry。
type Exporter struct {
	registry *prometheus.Registry

	records          prometheus.Gauge
	duplicatedLines  prometheus.Gauge
	sourceFiles      prometheus.Gauge
	destinationFiles prometheus.Gauge
	totalRate        *prometheus.GaugeVec
	recordRate       *prometheus.GaugeVec
}

// NewExporter 创建 Exporter。每次调用都使用新的 registry，避免重复注册冲突。
func NewExporter() *Exporter {
	registry := prometheus.NewRegistry()

	e := &Exporter{
		registry: registry,
		records: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "records",
			Help:      "Number of source files sharing code with the destination directory.",
		}),
		duplicatedLines: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "duplicated_lines",
			Help:      "Sum of duplicated lines over all records.",
		}),
		sourceFiles: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "source_files",
			Help:      "Number of files of the analyzed language in the source directory.",
		}),
		destinationFiles: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "destination_files",
			Help:      "Number of files of the analyzed language in the destination directory.",
		}),
		totalRate: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "total_rate",
			Help:      "Overall duplication rate between 0 and 1.",
		}, []string{"side"}),
		recordRate: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "record_rate",
			Help:      "Per-source-file duplication rate between 0 and 1.",
		}, []string{"source", "side"}),
	}

	registry.MustRegister(
		e.records,
		e.duplicatedLines,
		e.sourceFiles,
		e.destinationFiles,
		e.totalRate,
		e.recordRate,
	)
	return e
}

// Observe 记录一次分析结果，重复调用会覆盖上一次的值。
func (e *Exporter) Observe(result model.DuplicationResult) {
	e.recordRate.Reset()

	var duplicated int64
	for _, record := range result.Records {
		duplicated += record.DuplicatedLines
		e.recordRate.WithLabelValues(record.Source.Path, "self").Set(record.SelfRate())
		e.recordRate.WithLabelValues(record.Source.Path, "destination").Set(record.DestinationRate())
	}

	e.records.Set(float64(len(result.Records)))
	e.duplicatedLines.Set(float64(duplicated))
	e.sourceFiles.Set(float64(result.SourceFiles))
	e.destinationFiles.Set(float64(result.DestinationFiles))
	e.totalRate.WithLabelValues("self").Set(result.TotalSelfRate)
	e.totalRate.WithLabelValues("destination").Set(result.TotalDestinationRate)
}

// WriteTextfile 把当前指标原子地写入 path。
func (e *Exporter) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, e.registry); err != nil {
		return fmt.Errorf("write metrics file: %w", err)
	}
	return nil
}
