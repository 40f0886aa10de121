// Package config 加载 gocda 的配置。
// 优先级从低到高：内置默认值、配置文件（.gocda.yaml）、GOCDA_ 前缀环境变量、命令行参数。
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"gocda/internal/detector"
	"gocda/internal/scanner"
)

const (
	configName      = ".gocda"
	configType      = "yaml"
	envPrefix       = "GOCDA"
	envKeySeparator = "_"
)

// 默认值。
const (
	DefaultLanguage  = "swift"
	DefaultFormat    = "table"
	DefaultCountMode = string(scanner.CountNonBlank)
	DefaultLogLevel  = "info"
)

// ErrInvalidConfig 表示配置校验失败。
var ErrInvalidConfig = errors.New("invalid config")

// Config 是完整配置。
type Config struct {
	Root          string         `mapstructure:"root"`
	Source        string         `mapstructure:"source"`
	Destination   string         `mapstructure:"destination"`
	Language      string         `mapstructure:"language"`
	MinimumTokens int            `mapstructure:"minimum_tokens"`
	CountMode     string         `mapstructure:"count_mode"`
	Format        string         `mapstructure:"format"`
	Output        string         `mapstructure:"output"`
	ReportName    string         `mapstructure:"report_name"`
	MetricsFile   string         `mapstructure:"metrics_file"`
	NoColor       bool           `mapstructure:"no_color"`
	Detector      DetectorConfig `mapstructure:"detector"`
	Scan          ScanConfig     `mapstructure:"scan"`
	Log           LogConfig      `mapstructure:"log"`
}

// DetectorConfig 是外部检测器相关配置。
type DetectorConfig struct {
	Binary         string   `mapstructure:"binary"`
	InstallCommand []string `mapstructure:"install_command"`
	AutoInstall    bool     `mapstructure:"auto_install"`
}

// ScanConfig 是目录扫描相关配置。
type ScanConfig struct {
	Exclude []string `mapstructure:"exclude"`
}

// LogConfig 是日志相关配置。
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load 读取配置文件与环境变量，并把 flags 中出现的参数绑定到同名键上。
// configPath 为空时在当前目录和 $HOME 下查找 .gocda.yaml，找不到不算错误。
// flags 的名字使用中划线，对应键名中的下划线（例如 --minimum-tokens 对应 minimum_tokens）。
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	viperCfg.AutomaticEnv()

	if configPath != "" {
		expanded, err := homedir.Expand(configPath)
		if err != nil {
			return nil, fmt.Errorf("expand config path: %w", err)
		}
		viperCfg.SetConfigFile(expanded)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")

		home, err := homedir.Dir()
		if err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	if readErr := viperCfg.ReadInConfig(); readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	if err := bindFlags(viperCfg, flags); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viperCfg.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// expandPaths 展开路径配置中的 ~ 前缀。
func (c *Config) expandPaths() error {
	for _, value := range []*string{&c.Root, &c.Source, &c.Destination, &c.Output, &c.MetricsFile} {
		expanded, err := homedir.Expand(*value)
		if err != nil {
			return fmt.Errorf("expand path %q: %w", *value, err)
		}
		*value = expanded
	}
	return nil
}

func applyDefaults(viperCfg *viper.Viper) {
	// 路径键没有默认值也要登记，否则 AutomaticEnv 的值不会进入 Unmarshal。
	for _, key := range []string{"root", "source", "destination", "output", "metrics_file"} {
		viperCfg.SetDefault(key, "")
	}

	viperCfg.SetDefault("language", DefaultLanguage)
	viperCfg.SetDefault("minimum_tokens", detector.DefaultMinimumTokens)
	viperCfg.SetDefault("count_mode", DefaultCountMode)
	viperCfg.SetDefault("format", DefaultFormat)
	viperCfg.SetDefault("report_name", detector.DefaultReportName)
	viperCfg.SetDefault("no_color", false)

	viperCfg.SetDefault("detector.binary", detector.DefaultBinary)
	viperCfg.SetDefault("detector.install_command", detector.DefaultInstallCommand)
	viperCfg.SetDefault("detector.auto_install", true)

	viperCfg.SetDefault("scan.exclude", []string{})

	viperCfg.SetDefault("log.level", DefaultLogLevel)
}

// flagKeys 把和默认键名不一致的 flag 映射到配置键。
var flagKeys = map[string]string{
	"exclude":    "scan.exclude",
	"log-level":  "log.level",
	"no-install": "",
	"config":     "",
}

// bindFlags 只绑定用户显式设置过的 flag，未设置的 flag 不覆盖配置文件与环境变量。
func bindFlags(viperCfg *viper.Viper, flags *pflag.FlagSet) error {
	if flags == nil {
		return nil
	}

	var bindErr error
	flags.Visit(func(flag *pflag.Flag) {
		if bindErr != nil {
			return
		}

		key, mapped := flagKeys[flag.Name]
		if !mapped {
			key = strings.ReplaceAll(flag.Name, "-", "_")
		}
		if key == "" {
			return
		}

		if err := viperCfg.BindPFlag(key, flag); err != nil {
			bindErr = fmt.Errorf("bind flag %s: %w", flag.Name, err)
		}
	})
	if bindErr != nil {
		return bindErr
	}

	// --no-install 是 detector.auto_install 的反向开关。
	if flag := flags.Lookup("no-install"); flag != nil && flag.Changed && flag.Value.String() == "true" {
		viperCfg.Set("detector.auto_install", false)
	}
	return nil
}

// Validate 检查配置取值。
func (c *Config) Validate() error {
	if c.MinimumTokens <= 0 {
		return fmt.Errorf("%w: minimum_tokens must be greater than 0, got %d", ErrInvalidConfig, c.MinimumTokens)
	}

	if _, err := scanner.ParseCountMode(c.CountMode); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	switch strings.ToLower(strings.TrimSpace(c.Format)) {
	case "table", "json", "yaml", "yml":
	default:
		return fmt.Errorf("%w: unsupported format %q, allowed values: table, json, yaml", ErrInvalidConfig, c.Format)
	}

	if strings.TrimSpace(c.Language) == "" {
		return fmt.Errorf("%w: language is empty", ErrInvalidConfig)
	}
	return nil
}
