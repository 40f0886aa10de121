// Package report 提供 gocda 的输出能力。
// 支持 table 控制台格式以及 JSON、YAML 两种机器可读格式（含文件导出）。
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format 是输出格式。
type Format string

// 支持的输出格式。
const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat 解析格式名，空字符串视为 table。
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case "", FormatTable:
		return FormatTable, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported format: %s, allowed values: table, json, yaml", name)
	}
}

// FormatForFile 根据导出文件扩展名推断格式，无法推断时返回 fallback。
// table 不是文件格式，此时回退为 JSON。
func FormatForFile(path string, fallback Format) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	}
	if fallback == FormatTable {
		return FormatJSON
	}
	return fallback
}

// Options 控制表格输出。
type Options struct {
	// Color 为 true 时按阈值给比例着色。是否为终端由调用方判断。
	Color bool
}

// marshal 把 document 编码为 JSON 或 YAML。
func marshal(format Format, document any) ([]byte, error) {
	switch format {
	case FormatJSON:
		content, err := json.MarshalIndent(document, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal json: %w", err)
		}
		return append(content, '\n'), nil
	case FormatYAML:
		content, err := yaml.Marshal(document)
		if err != nil {
			return nil, fmt.Errorf("marshal yaml: %w", err)
		}
		return content, nil
	default:
		return nil, fmt.Errorf("format %s is not a data format", format)
	}
}

// PrintData 把 document 按 JSON 或 YAML 输出到任意 writer。
func PrintData(writer io.Writer, format Format, document any) error {
	content, err := marshal(format, document)
	if err != nil {
		return err
	}

	if _, err := writer.Write(content); err != nil {
		return fmt.Errorf("write %s: %w", format, err)
	}
	return nil
}

// WriteFile 将 document 导出到指定路径。
// 如果目录不存在会自动创建。
func WriteFile(path string, format Format, document any) error {
	content, err := marshal(format, document)
	if err != nil {
		return err
	}

	directory := filepath.Dir(path)
	if directory != "." && directory != "" {
		if mkErr := os.MkdirAll(directory, 0o755); mkErr != nil {
			return fmt.Errorf("create output directory: %w", mkErr)
		}
	}

	if writeErr := os.WriteFile(path, content, 0o644); writeErr != nil {
		return fmt.Errorf("write output file: %w", writeErr)
	}
	return nil
}
