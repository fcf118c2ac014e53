// Package env resolves pavlov configuration from flags, PAVLOV_*
// environment variables and an optional .env file, in that order
// of precedence.
package env

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces every environment variable.
const EnvPrefix = "PAVLOV"

// Configuration keys. A key is also the name of the flag that sets
// it, unless the flag carries a KeyAnnotation.
const (
	KeyLogFormat    = "log-format"
	KeyLogLevel     = "log-level"
	KeyLogFile      = "log-file"
	KeyVerbose      = "verbose"
	KeyConcurrency  = "concurrency"
	KeyMonitorAddr  = "monitor-addr"
	KeyReportFormat = "report-format"
	KeyReportDir    = "report-dir"
	KeyHistoryFile  = "history-file"
	KeyValues       = "values"
	KeyValuesToken  = "values-token"
)

// KeyAnnotation on a flag names the configuration key it sets.
const KeyAnnotation = "pavlov_config_key"

var keys = []string{
	KeyLogFormat,
	KeyLogLevel,
	KeyLogFile,
	KeyVerbose,
	KeyConcurrency,
	KeyMonitorAddr,
	KeyReportFormat,
	KeyReportDir,
	KeyHistoryFile,
	KeyValues,
	KeyValuesToken,
}

var envKeyReplacer = strings.NewReplacer(".", "_", "-", "_")

// EnvName returns the environment variable that sets key.
func EnvName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(envKeyReplacer.Replace(key))
}

func isKey(key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

// Config is the resolved CLI configuration.
type Config struct {
	LogFormat    string `json:"log_format" yaml:"log_format"` // console, json
	LogLevel     string `json:"log_level" yaml:"log_level"`
	LogFile      string `json:"log_file,omitempty" yaml:"log_file,omitempty"`
	Verbose      bool   `json:"verbose" yaml:"verbose"`
	Concurrency  int    `json:"concurrency" yaml:"concurrency"`
	MonitorAddr  string `json:"monitor_addr,omitempty" yaml:"monitor_addr,omitempty"`
	ReportFormat string `json:"report_format" yaml:"report_format"`
	ReportDir    string `json:"report_dir,omitempty" yaml:"report_dir,omitempty"`
	HistoryFile  string `json:"history_file,omitempty" yaml:"history_file,omitempty"`
	Values       string `json:"values,omitempty" yaml:"values,omitempty"`
	ValuesToken  string `json:"-" yaml:"values_token,omitempty"`
}

// DefaultConfig returns the configuration used when nothing is
// set.
func DefaultConfig() Config {
	return Config{
		LogFormat:    "console",
		LogLevel:     "info",
		Concurrency:  4,
		ReportFormat: "json",
	}
}

// NewViper returns a viper that reads PAVLOV_* variables over
// DefaultConfig.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()

	d := DefaultConfig()
	v.SetDefault(KeyLogFormat, d.LogFormat)
	v.SetDefault(KeyLogLevel, d.LogLevel)
	v.SetDefault(KeyVerbose, d.Verbose)
	v.SetDefault(KeyConcurrency, d.Concurrency)
	v.SetDefault(KeyReportFormat, d.ReportFormat)
	return v
}

// BindFlags binds every flag of fs that sets a configuration key.
// Flags that set none are left alone.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	var errs []error
	fs.VisitAll(func(f *pflag.Flag) {
		key := f.Name
		if k := f.Annotations[KeyAnnotation]; len(k) > 0 {
			key = k[0]
		}
		if !isKey(key) {
			return
		}
		if err := v.BindPFlag(key, f); err != nil {
			errs = append(errs, fmt.Errorf("bind flag %s: %w", f.Name, err))
		}
	})
	return errors.Join(errs...)
}

// ReadEnvFile merges the dotenv file at path into v, below the
// environment and flags. A missing file is not an error. It
// returns every variable the file sets, by upper-case name.
func ReadEnvFile(v *viper.Viper, path string) (map[string]string, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("env file %s: %w", path, err)
	}

	file := viper.New()
	file.SetConfigFile(path)
	file.SetConfigType("env")
	if err := file.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read env file %s: %w", path, err)
	}

	vars := make(map[string]string)
	for _, name := range file.AllKeys() {
		vars[strings.ToUpper(name)] = file.GetString(name)
	}

	settings := make(map[string]any)
	for _, key := range keys {
		if s, ok := vars[EnvName(key)]; ok {
			settings[key] = s
		}
	}
	if err := v.MergeConfigMap(settings); err != nil {
		return nil, fmt.Errorf("merge env file %s: %w", path, err)
	}
	return vars, nil
}

// FromViper resolves Config from v. Every malformed value is
// reported under its environment variable.
func FromViper(v *viper.Viper) (Config, error) {
	var errs []error
	str := func(key string) string {
		return cast.ToString(v.Get(key))
	}

	cfg := Config{
		LogFormat:    strings.ToLower(str(KeyLogFormat)),
		LogLevel:     str(KeyLogLevel),
		LogFile:      str(KeyLogFile),
		MonitorAddr:  str(KeyMonitorAddr),
		ReportFormat: str(KeyReportFormat),
		ReportDir:    str(KeyReportDir),
		HistoryFile:  str(KeyHistoryFile),
		Values:       str(KeyValues),
		ValuesToken:  str(KeyValuesToken),
	}

	verbose, err := cast.ToBoolE(v.Get(KeyVerbose))
	if err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", EnvName(KeyVerbose), err))
	}
	cfg.Verbose = verbose

	concurrency, err := cast.ToIntE(v.Get(KeyConcurrency))
	if err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", EnvName(KeyConcurrency), err))
		concurrency = DefaultConfig().Concurrency
	}
	cfg.Concurrency = concurrency

	if err := cfg.Validate(); err != nil {
		errs = append(errs, err)
	}
	return cfg, errors.Join(errs...)
}

// Redacted returns a copy of c safe to print.
func (c Config) Redacted() Config {
	if c.ValuesToken != "" {
		c.ValuesToken = RedactValue(c.ValuesToken)
	}
	c.Values = RedactURL(c.Values)
	return c
}

// Validate checks the enumerated and numeric fields.
func (c Config) Validate() error {
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("%s: unknown log format %q", EnvName(KeyLogFormat), c.LogFormat)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("%s: must be at least 1, got %d", EnvName(KeyConcurrency), c.Concurrency)
	}
	return nil
}
